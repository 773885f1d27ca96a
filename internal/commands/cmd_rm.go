package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type RmCmd struct {
	flags *Flags
	rt    *Runtime
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, rt *Runtime) *RmCmd {
	return &RmCmd{flags: flags, rt: rt}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		UsageText: "nexustask rm <id>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := parseTaskID(c.Args().First())
	if err != nil {
		return err
	}

	if err := cmd.rt.Open(ctx, true); err != nil {
		return err
	}

	if err := cmd.rt.App.Delete(ctx, id); err != nil {
		return userError(err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "deleted #%d\n", id)
	return nil
}
