package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/BuzzLyutic/nexustask/internal/syncer"
)

type SyncCmd struct {
	flags *Flags
	rt    *Runtime
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, rt *Runtime) *SyncCmd {
	return &SyncCmd{flags: flags, rt: rt}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Probe the remote once and pull its tasks",
		UsageText: "nexustask sync",
		Description: `Checks whether the remote collection is reachable. When it is, the local
tasks are replaced by the remote ones, unless the remote has no tasks at all.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Offline {
		return errors.New("sync is not available with --offline")
	}
	if err := cmd.rt.Open(ctx, false); err != nil {
		return err
	}

	s := cmd.rt.Syncer
	s.Tick(ctx)
	if s.Status() != syncer.StatusOnline {
		return fmt.Errorf("remote %s is offline", cmd.flags.Config.Remote.URL)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "remote online, %d tasks stored locally\n", len(cmd.rt.Store.Snapshot()))
	return nil
}
