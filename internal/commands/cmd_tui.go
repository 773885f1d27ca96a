package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/BuzzLyutic/nexustask/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	rt    *Runtime
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, rt *Runtime) *TuiCmd {
	return &TuiCmd{flags: flags, rt: rt}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive task list",
		Action: cmd.run,
	})

	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.rt.Open(ctx, true); err != nil {
		return err
	}
	return tui.Run(ctx, cmd.rt.App)
}
