package main

import (
	"runtime"

	"github.com/urfave/cli/v2"
)

var (
	traceFlag = cli.PathFlag{
		Name:     "trace",
		Aliases:  []string{"t"},
		Usage:    "trace file, JSON or gzip compressed JSON",
		Required: true,
	}
	outputFlag = cli.PathFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "file the trace is written to",
		Required: true,
	}
	compressFlag = cli.BoolFlag{
		Name:  "compress",
		Usage: "gzip compress the written trace",
		Value: true,
	}
	randomnessFlag = cli.StringFlag{
		Name:  "randomness",
		Usage: "RLC scalar as a decimal or 0x prefixed hex number; derived from the trace when unset",
	}
	parallelismFlag = cli.IntFlag{
		Name:  "parallelism",
		Usage: "number of steps assigned concurrently",
		Value: runtime.GOMAXPROCS(0),
	}
	logLevelFlag = cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "level of the logging of the app action (\"CRITICAL\", \"ERROR\", \"WARNING\", \"NOTICE\", \"INFO\", \"DEBUG\")",
		Value:   "INFO",
	}
)
