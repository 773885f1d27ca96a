package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

type AddCmd struct {
	flags *Flags
	rt    *Runtime

	// flags
	description string
	category    string
	due         string
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, rt *Runtime) *AddCmd {
	return &AddCmd{flags: flags, rt: rt}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "nexustask add [options] <title...>",
		Description: `Creates a new pending task. The category defaults to personal.

The task is saved locally first; when the remote is online it is also posted
to the remote collection.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "personal, work, shopping, health or other",
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD)",
				Destination: &cmd.due,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	draft := model.Draft{
		Title:       strings.Join(c.Args().Slice(), " "),
		Description: cmd.description,
		Category:    model.Category(strings.ToLower(cmd.category)),
	}
	if cmd.due != "" {
		due, err := model.ParseDate(cmd.due)
		if err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		draft.DueDate = &due
	}

	if err := cmd.rt.Open(ctx, true); err != nil {
		return err
	}

	task, err := cmd.rt.App.Create(ctx, draft)
	if err != nil {
		return userError(err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "added #%d %s\n", task.ID, task.Title)
	return nil
}
