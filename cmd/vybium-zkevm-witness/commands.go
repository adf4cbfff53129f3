package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/urfave/cli/v2"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/logger"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
	vybiumzkevm "github.com/vybium/vybium-zkevm/pkg/vybium-zkevm"
)

var checkCommand = cli.Command{
	Action: check,
	Name:   "check",
	Usage:  "replays a trace, assigns its witness and verifies every gate and lookup",
	Flags: []cli.Flag{
		&traceFlag,
		&randomnessFlag,
		&parallelismFlag,
		&logLevelFlag,
	},
}

var infoCommand = cli.Command{
	Action: info,
	Name:   "info",
	Usage:  "prints the steps and accesses of a trace",
	Flags: []cli.Flag{
		&traceFlag,
		&logLevelFlag,
	},
}

var convertCommand = cli.Command{
	Action: convert,
	Name:   "convert",
	Usage:  "rewrites a trace, optionally gzip compressed",
	Flags: []cli.Flag{
		&traceFlag,
		&outputFlag,
		&compressFlag,
		&logLevelFlag,
	},
}

func configFromContext(ctx *cli.Context) (*vybiumzkevm.Config, error) {
	cfg := vybiumzkevm.DefaultConfig().WithLogLevel(ctx.String(logLevelFlag.Name))
	if ctx.IsSet(parallelismFlag.Name) {
		cfg.WithParallelism(ctx.Int(parallelismFlag.Name))
	}
	if s := ctx.String(randomnessFlag.Name); s != "" {
		var randomness fr.Element
		if _, err := randomness.SetString(s); err != nil {
			return nil, errors.Wrapf(err, "invalid randomness %q", s)
		}
		cfg.WithRandomness(randomness)
	}
	return cfg, cfg.Validate()
}

func check(ctx *cli.Context) error {
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "vybium-zkevm-witness")

	t, err := vybiumzkevm.ReadTrace(ctx.Path(traceFlag.Name), cfg)
	if err != nil {
		return err
	}
	circuit, err := vybiumzkevm.NewCircuit(cfg)
	if err != nil {
		return err
	}

	result, err := circuit.Run(ctx.Context, t)
	if err != nil {
		for _, failure := range vybiumzkevm.VerifyFailures(err) {
			log.Errorf("%s", failure)
		}
		return err
	}

	hours, minutes, seconds := logger.ParseTime(result.Elapsed)
	log.Noticef("witness of %d steps verified; width %d, degree %d, randomness %s",
		result.Steps, result.Width, result.Degree, result.Randomness.String())
	log.Noticef("elapsed time: %d:%02d:%02d", hours, minutes, seconds)
	return nil
}

func info(ctx *cli.Context) error {
	cfg := vybiumzkevm.DefaultConfig().WithLogLevel(ctx.String(logLevelFlag.Name))
	t, err := vybiumzkevm.ReadTrace(ctx.Path(traceFlag.Name), cfg)
	if err != nil {
		return err
	}

	counts := make(map[step.ExecutionState]int)
	for _, s := range t.Steps {
		if state, ok := step.ForOpcode(s.Opcode); ok {
			counts[state]++
		}
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "steps:      %d\n", len(t.Steps))
	fmt.Fprintf(w, "calls:      %d\n", len(t.Calls))
	fmt.Fprintf(w, "bytecodes:  %d\n", len(t.Bytecodes))
	fmt.Fprintf(w, "operations: %d\n", len(t.Container.ByCounter()))
	for _, state := range step.States() {
		if counts[state] > 0 {
			fmt.Fprintf(w, "  %-10s  %d\n", state, counts[state])
		}
	}
	randomness := trace.DeriveRandomness(t)
	fmt.Fprintf(w, "randomness: %s\n", randomness.String())
	return nil
}

func convert(ctx *cli.Context) error {
	cfg := vybiumzkevm.DefaultConfig().WithLogLevel(ctx.String(logLevelFlag.Name))
	t, err := vybiumzkevm.ReadTrace(ctx.Path(traceFlag.Name), cfg)
	if err != nil {
		return err
	}
	return vybiumzkevm.WriteTrace(ctx.Path(outputFlag.Name), t, ctx.Bool(compressFlag.Name))
}
