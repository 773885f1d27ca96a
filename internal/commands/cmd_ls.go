package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/BuzzLyutic/nexustask/internal/model"
	"github.com/BuzzLyutic/nexustask/internal/render"
)

type LsCmd struct {
	flags *Flags
	rt    *Runtime

	// flags
	search     string
	filter     string
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, rt *Runtime) *LsCmd {
	return &LsCmd{flags: flags, rt: rt}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List tasks",
		UsageText: "nexustask ls [--search TERM] [--filter all|pending|completed|<category>] [--json]",
		Description: `Shows incomplete tasks first, each group ordered by due date.

--search matches title and description case-insensitively. Use --json for one
JSON object per line.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "only tasks whose title or description contains TERM",
				Destination: &cmd.search,
			},
			&cli.StringFlag{
				Name:        "filter",
				Aliases:     []string{"f"},
				Usage:       "all, pending, completed or a category",
				Value:       model.FilterAll,
				Destination: &cmd.filter,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// listedTask is the JSON output format for nexustask ls --json.
type listedTask struct {
	model.Task
	DueLabel string `json:"dueLabel"`
	Overdue  bool   `json:"overdue"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.rt.Open(ctx, true); err != nil {
		return err
	}

	a := cmd.rt.App
	if err := a.SetFilter(cmd.filter); err != nil {
		return err
	}
	a.SetSearch(cmd.search)
	a.FlushSearch()

	p := a.Projection()
	out := c.Root().Writer

	if cmd.jsonOutput {
		enc := json.NewEncoder(out)
		for _, item := range p.Items {
			row := listedTask{Task: item.Task, DueLabel: item.Due.Label, Overdue: item.Due.Overdue}
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	_, _ = fmt.Fprintln(out, render.List(p.Items, render.Options{
		Cursor:   -1,
		ShowIDs:  true,
		HasTasks: p.Stats.Total > 0,
	}))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, render.Stats(p.Stats))
	_, _ = fmt.Fprintln(out, render.Status(a.Status()))
	return nil
}
