package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// DoneCmd marks a task completed, or pending again when registered as undo.
type DoneCmd struct {
	flags     *Flags
	rt        *Runtime
	completed bool
}

// NewDoneCmd creates the done command
func NewDoneCmd(flags *Flags, rt *Runtime) *DoneCmd {
	return &DoneCmd{flags: flags, rt: rt, completed: true}
}

// NewUndoCmd creates the undo command
func NewUndoCmd(flags *Flags, rt *Runtime) *DoneCmd {
	return &DoneCmd{flags: flags, rt: rt, completed: false}
}

// Register adds the command to the application
func (cmd *DoneCmd) Register(app *cli.Command) *cli.Command {
	name, usage := "done", "Mark a task completed"
	if !cmd.completed {
		name, usage = "undo", "Mark a completed task pending again"
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      name,
		Usage:     usage,
		UsageText: "nexustask " + name + " <id>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *DoneCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := parseTaskID(c.Args().First())
	if err != nil {
		return err
	}

	if err := cmd.rt.Open(ctx, true); err != nil {
		return err
	}

	task, err := cmd.rt.App.SetCompleted(ctx, id, cmd.completed)
	if err != nil {
		return userError(err)
	}

	state := "pending"
	if task.Completed {
		state = "completed"
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "#%d %s is %s\n", task.ID, task.Title, state)
	return nil
}
