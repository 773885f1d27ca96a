package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/BuzzLyutic/nexustask/internal/render"
)

type StatsCmd struct {
	flags *Flags
	rt    *Runtime

	jsonOutput bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, rt *Runtime) *StatsCmd {
	return &StatsCmd{flags: flags, rt: rt}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show task counts",
		UsageText: "nexustask stats [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.rt.Open(ctx, true); err != nil {
		return err
	}

	st := cmd.rt.App.GetStats()
	out := c.Root().Writer

	if cmd.jsonOutput {
		if err := json.NewEncoder(out).Encode(st); err != nil {
			return fmt.Errorf("encode stats: %w", err)
		}
		return nil
	}

	_, _ = fmt.Fprintln(out, render.Stats(st))
	return nil
}
