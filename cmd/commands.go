package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"binthere/internal"
	"binthere/internal/installed"
	"binthere/internal/prompt"
	"binthere/internal/purge"
	"binthere/internal/report"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	labelBlue  = color.New(color.FgBlue, color.Bold)
	labelGreen = color.New(color.FgGreen, color.Bold)
	labelCyan  = color.New(color.FgCyan, color.Bold)
	labelWarn  = color.New(color.FgYellow, color.Bold)
	warnText   = color.New(color.FgYellow)
)

func scanCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Recursively scan a directory for installer files",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "include-archives",
				Usage: "Include archive installers (.zip, .7z)",
			},
			&cli.BoolFlag{
				Name:  "no-installed-check",
				Usage: "Do not match files against installed programs",
			},
			&cli.StringFlag{
				Name:  "installed-names",
				Usage: "Text file with extra installed program names, one per line",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return cli.Exit("scan takes at most one path", 1)
			}
			root, err := resolveRoot(c.Args().First(), e.cfg.DefaultPath)
			if err != nil {
				return err
			}

			src, err := installedSource(e, c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(e.stdout, "%s %s\n", labelBlue.Sprint("[SCAN] Root:"), root)
			res, err := internal.NewFileScanner().Scan(ctx, internal.ScanOptions{
				Root:            root,
				IncludeArchives: c.Bool("include-archives"),
				Installed:       src,
			})
			if err != nil {
				if ctx.Err() != nil {
					return errors.New("scan cancelled, state not saved")
				}
				return err
			}

			fmt.Fprintf(e.stdout, "%s %d\n", labelGreen.Sprint("[OK] Found installer candidates:"), len(res.Files))
			fmt.Fprintf(e.stdout, "%s %s\n", labelGreen.Sprint("[OK] Total reclaimable:"), labelWarn.Sprint(report.HumanSize(res.TotalSizeBytes())))
			if len(res.Warnings) > 0 {
				labelWarn.Fprintln(e.stdout, "[WARN] Scan encountered non-fatal issues:")
				for _, w := range res.Warnings {
					fmt.Fprintf(e.stdout, "- %s\n", warnText.Sprint(w))
				}
			}

			snap, err := e.store.Save(res)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "%s %s\n", labelCyan.Sprint("[INFO] Saved scan state:"), snap.Path)
			return nil
		},
	}
}

// resolveRoot picks the scan root: argument, then config, then the download folder.
func resolveRoot(arg, configured string) (string, error) {
	root := arg
	if root == "" {
		root = configured
	}
	if root == "" {
		detected, err := internal.DetectScanRoot()
		if err != nil {
			return "", fmt.Errorf("could not determine a default scan path: %w", err)
		}
		root = detected
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	return abs, nil
}

func installedSource(e *env, c *cli.Context) (installed.Source, error) {
	if c.Bool("no-installed-check") || !e.cfg.CheckInstalled {
		return installed.Static(nil), nil
	}
	sources := []installed.Source{installed.System{}}

	file := e.cfg.InstalledNamesFile
	if c.IsSet("installed-names") {
		file = c.String("installed-names")
	}
	if file != "" {
		extra, err := internal.LoadInstalledNames(file)
		if err != nil {
			return nil, fmt.Errorf("installed names: %w", err)
		}
		sources = append(sources, installed.Static(extra))
	}
	return installed.Merge(sources...), nil
}

func reportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Show found files and summary from latest scan",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, json, yaml",
				Value: "text",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "How many of the largest installers to list (default from config)",
			},
		},
		Action: func(c *cli.Context) error {
			format, err := report.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			top := e.cfg.ReportTop
			if c.IsSet("top") {
				top = c.Int("top")
			}
			if top < 0 {
				return cli.Exit("--top must not be negative", 1)
			}

			snap, err := e.store.Load()
			if err != nil {
				return err
			}
			return report.Write(e.stdout, snap, report.Options{Format: format, Top: top})
		},
	}
}

func purgeCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Display or delete files found in latest scan",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Only list what would be deleted (default when --confirm is not set)",
			},
			&cli.BoolFlag{
				Name:  "confirm",
				Usage: "Actually delete files after interactive confirmation",
			},
			&cli.BoolFlag{
				Name:  "select",
				Usage: "Choose which files to delete interactively (e.g. 1,3-5, all, none)",
			},
			&cli.StringFlag{
				Name:  "selection",
				Usage: "Delete only these files, in selection syntax (e.g. 1,3-5)",
			},
		},
		Action: func(c *cli.Context) error {
			opts, err := purgeOptions(c)
			if err != nil {
				return err
			}

			snap, err := e.store.Load()
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"scan_id": snap.ScanID, "files": len(snap.Result.Files)}).Debug("Loaded scan state")

			ex := &purge.Executor{
				Out:    e.stdout,
				Prompt: prompt.New(e.stdin, e.stdout),
			}
			if f, ok := e.stderr.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
				ex.Progress = f
			}

			rep, err := ex.Run(snap.Result, opts)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"outcome":  rep.Outcome,
				"deleted":  rep.DeletedCount,
				"bytes":    rep.DeletedBytes,
				"failures": len(rep.Failures),
			}).Info("Purge finished")
			return nil
		},
	}
}

func purgeOptions(c *cli.Context) (purge.Options, error) {
	if c.Bool("dry-run") && c.Bool("confirm") {
		return purge.Options{}, cli.Exit("--dry-run and --confirm cannot be used together", 2)
	}
	if c.Bool("select") && c.IsSet("selection") {
		return purge.Options{}, cli.Exit("--select and --selection cannot be used together", 2)
	}
	if c.Bool("select") && !c.Bool("confirm") {
		return purge.Options{}, cli.Exit("--select needs --confirm; use --selection to preview a subset", 2)
	}
	if c.IsSet("selection") && c.String("selection") == "" {
		return purge.Options{}, cli.Exit("--selection must not be empty", 2)
	}
	return purge.Options{
		Confirm:   c.Bool("confirm"),
		Select:    c.Bool("select"),
		Selection: c.String("selection"),
	}, nil
}
