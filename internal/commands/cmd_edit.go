package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

type EditCmd struct {
	flags *Flags
	rt    *Runtime

	// flags
	title       string
	description string
	category    string
	due         string
	clearDue    bool
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, rt *Runtime) *EditCmd {
	return &EditCmd{flags: flags, rt: rt}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Change fields of a task",
		UsageText: "nexustask edit <id> [--title T] [--description D] [--category C] [--due YYYY-MM-DD | --clear-due]",
		Description: `Updates only the fields passed as flags. Running without any field flag
leaves the task untouched.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "new title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "new description",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "new category",
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "new due date (YYYY-MM-DD)",
				Destination: &cmd.due,
			},
			&cli.BoolFlag{
				Name:        "clear-due",
				Usage:       "remove the due date",
				Destination: &cmd.clearDue,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := parseTaskID(c.Args().First())
	if err != nil {
		return err
	}

	patch, err := cmd.patch(c)
	if err != nil {
		return err
	}

	if err := cmd.rt.Open(ctx, true); err != nil {
		return err
	}

	task, err := cmd.rt.App.Update(ctx, id, patch)
	if err != nil {
		return userError(err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "updated #%d %s\n", task.ID, task.Title)
	return nil
}

func (cmd *EditCmd) patch(c *cli.Command) (model.Patch, error) {
	var p model.Patch
	if c.IsSet("title") {
		p.Title = &cmd.title
	}
	if c.IsSet("description") {
		p.Description = &cmd.description
	}
	if c.IsSet("category") {
		category := model.Category(strings.ToLower(cmd.category))
		p.Category = &category
	}
	if c.IsSet("due") && cmd.clearDue {
		return p, errors.New("--due and --clear-due are mutually exclusive")
	}
	if c.IsSet("due") {
		due, err := model.ParseDate(cmd.due)
		if err != nil {
			return p, fmt.Errorf("invalid --due: %w", err)
		}
		p.DueDate = &due
	}
	p.ClearDueDate = cmd.clearDue
	return p, nil
}
