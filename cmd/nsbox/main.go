// Command nsbox starts a program inside a fresh set of kernel
// namespaces and waits for it to exit.
//
//	nsbox start <name> [--] <command> [args...]
//
// Exit codes: 0 on success, 2 when another start of the same container
// is in progress, 1 on any internal failure.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/edlenz/go-nsbox/launcher"
)

func main() {
	app := &cli.App{
		Name:  "nsbox",
		Usage: "run a program in isolated namespaces",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "runtime directory for locks, state and pid records",
				Value: launcher.DefaultRoot,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "zerolog level (trace..disabled)",
				Value: "info",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			startCommand(),
			initCommand(),
		},
	}
	// ExitCoder errors terminate inside Run with their code; anything
	// else is an internal failure.
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(c *cli.Context) error {
	level, err := zerolog.ParseLevel(c.String("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
	return nil
}

func startCommand() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "start a container and wait for it to exit",
		ArgsUsage: "<name> <command> [args...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return cli.Exit("usage: nsbox start <name> <command> [args...]", 1)
			}
			name := c.Args().First()
			argv := c.Args().Slice()[1:]

			l := launcher.New(launcher.Options{
				Root:   c.String("root"),
				Logger: &log.Logger,
			})
			res, err := l.Start(name, argv)
			switch res.Code {
			case launcher.CodeBusy:
				return cli.Exit(fmt.Sprintf("nsbox: %s is busy", name), 2)
			case launcher.CodeInternal:
				return cli.Exit(fmt.Sprintf("nsbox: start %s: %v", name, err), 1)
			}
			return nil
		},
	}
}

// initCommand is the re-exec entry the launcher spawns into the new
// namespaces. Not for direct use.
func initCommand() *cli.Command {
	return &cli.Command{
		Name:            "init",
		Hidden:          true,
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return cli.Exit("nsbox init: missing name or command", 1)
			}
			name := c.Args().First()
			argv := c.Args().Slice()[1:]
			if err := launcher.Init(c.String("root"), name, argv); err != nil {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
