package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

// WitnessApp checks recorded EVM executions against the EVM circuit.
var WitnessApp = cli.App{
	Name:     "Vybium zkEVM witness",
	HelpName: "vybium-zkevm-witness",
	Usage:    "assign and verify the EVM circuit witness of recorded traces",
	Commands: []*cli.Command{
		&checkCommand,
		&infoCommand,
		&convertCommand,
	},
}

func main() {
	if err := WitnessApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
