// Package main provides the flywheel command: the API server and an offline
// workflow document builder.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "flywheel",
		Usage:                 "Generate, publish and automate Twitter content",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			ServeCommand(),
			WorkflowCommand(),
		},
	}
}

func main() {
	err := newCommand().Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
