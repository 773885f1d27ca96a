package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/commands"
	"github.com/BuzzLyutic/nexustask/internal/config"
	"github.com/BuzzLyutic/nexustask/pkg/logutils"
)

// Populated at build time via -ldflags.
var version = "dev"

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}
	rt := commands.NewRuntime(flags)

	app := &cli.Command{
		Name:      "nexustask",
		Usage:     "Personal task list with optional remote sync",
		UsageText: "nexustask [global options] command [command options]",
		Description: `Tasks are always saved locally. When the remote /todos collection is
reachable, local changes are mirrored to it, and coming back online pulls the
remote collection.

Run 'nexustask' with no arguments to open the interactive task list.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("NEXUSTASK_CONFIG"),
				Value:       config.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "remote-url",
				Usage:       "base URL of the remote /todos collection",
				Destination: &flags.RemoteURL,
			},
			&cli.StringFlag{
				Name:        "store",
				Usage:       "snapshot backend (file, postgres, memory)",
				Destination: &flags.Store,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/nexustask.log)",
				Destination: &flags.LogFile,
			},
			&cli.BoolFlag{
				Name:        "offline",
				Usage:       "never contact the remote",
				Sources:     cli.EnvVars("NEXUSTASK_OFFLINE"),
				Destination: &flags.Offline,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Apply(&cfg)
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}

			// Always log to a file so output does not end up inside the TUI.
			logFile := cfg.Log.File
			if logFile == "" {
				logFile = filepath.Join(cfg.DataDir, "nexustask.log")
			}

			logger, closer, err := logutils.New(cfg.Log.Level, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logCloser = closer

			flags.Config = cfg
			flags.Logger = logger
			logger.Debug("configuration loaded",
				zap.String("data_dir", cfg.DataDir),
				zap.String("store", cfg.Store.Backend),
				zap.String("remote", cfg.Remote.URL),
				zap.Bool("offline", flags.Offline),
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			rt.Close()
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, rt)

	app = commands.NewAddCmd(flags, rt).Register(app)
	app = commands.NewEditCmd(flags, rt).Register(app)
	app = commands.NewDoneCmd(flags, rt).Register(app)
	app = commands.NewUndoCmd(flags, rt).Register(app)
	app = commands.NewRmCmd(flags, rt).Register(app)
	app = commands.NewLsCmd(flags, rt).Register(app)
	app = commands.NewStatsCmd(flags, rt).Register(app)
	app = commands.NewSyncCmd(flags, rt).Register(app)
	app = tuiCmd.Register(app)
	app = commands.NewServeCmd(flags).Register(app)

	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'nexustask --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
