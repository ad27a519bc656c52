package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"binthere/internal"
	"binthere/internal/config"
	"binthere/internal/state"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

// env is what every command needs after the global flags are applied.
type env struct {
	cfg    *config.Config
	store  *state.Store
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	if err := newApp(&env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		code := 1
		var ec cli.ExitCoder
		if errors.As(err, &ec) && ec.ExitCode() != 0 {
			code = ec.ExitCode()
		}
		os.Exit(code)
	}
}

func newApp(e *env) *cli.App {
	return &cli.App{
		Name:      "binthere",
		Usage:     "Scan and safely purge installer files",
		UsageText: "binthere [global options] scan [path] | report | purge",
		Version:   version,
		Reader:    e.stdin,
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML config file (default: <user config dir>/BinThere/config.yaml)",
			},
			&cli.StringFlag{
				Name:  "state-dir",
				Usage: "Directory holding last_scan.json (default: <local data dir>/BinThere)",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(c *cli.Context) error {
			return e.setup(c)
		},
		Commands: []*cli.Command{
			scanCommand(e),
			reportCommand(e),
			purgeCommand(e),
		},
		// errors are printed once, by main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// setup applies config, then global flags on top of it.
func (e *env) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("logfile") {
		cfg.LogFile = c.String("logfile")
	}
	if c.IsSet("state-dir") {
		cfg.StateDir = c.String("state-dir")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Bool("no-color") {
		color.NoColor = true
	}

	internal.InitLogger(cfg.LogFile, cfg.LogLevel)
	logrus.WithField("version", version).Debug("binthere started")

	store, err := state.NewStore(cfg.StateDir)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.store = store
	return nil
}
