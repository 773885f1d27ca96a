package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/app"
	"github.com/BuzzLyutic/nexustask/internal/config"
	"github.com/BuzzLyutic/nexustask/internal/remote"
	"github.com/BuzzLyutic/nexustask/internal/repo"
	"github.com/BuzzLyutic/nexustask/internal/service"
	"github.com/BuzzLyutic/nexustask/internal/syncer"
)

// Runtime is the task core opened lazily by the commands that need it.
type Runtime struct {
	flags *Flags

	Store  *service.TaskStore
	Syncer *syncer.Syncer
	App    *app.App

	pool *pgxpool.Pool
}

func NewRuntime(flags *Flags) *Runtime {
	return &Runtime{flags: flags}
}

// Open loads the task store and wires the syncer unless running offline.
// When start is set the syncer begins probing right away.
func (rt *Runtime) Open(ctx context.Context, start bool) error {
	if rt.App != nil {
		return nil
	}

	cfg := rt.flags.Config
	logger := rt.flags.Logger

	snapshots, err := rt.openRepo(ctx, cfg)
	if err != nil {
		return err
	}

	rt.Store = service.NewTaskStore(snapshots, logger.Named("store"))
	loaded, err := rt.Store.Load(ctx)
	if err != nil {
		return err
	}
	logger.Debug("loaded tasks",
		zap.Int("kept", loaded.Kept),
		zap.Int("skipped", len(loaded.Skipped)),
	)

	var remoteSync app.Syncer
	if !rt.flags.Offline {
		client := remote.NewClient(cfg.Remote.URL, cfg.Remote.Timeout)
		syncLogger := logger.Named("sync")
		rt.Syncer = syncer.New(client, rt.Store, syncLogger, syncer.Options{
			Interval:      cfg.Sync.Interval,
			MirrorWorkers: cfg.Sync.MirrorWorkers,
			MirrorQueue:   cfg.Sync.MirrorQueue,
			OnMirrorError: func(op service.Op, id int64, err error) {
				syncLogger.Warn("mirror failed, change kept locally",
					zap.String("op", string(op)),
					zap.Int64("task_id", id),
					zap.Error(err),
				)
			},
		})
		remoteSync = rt.Syncer
	}

	rt.App = app.New(rt.Store, remoteSync, logger, app.Options{
		SearchDelay: cfg.Search.Debounce,
	})
	if start {
		rt.App.Start(ctx)
	}
	return nil
}

func (rt *Runtime) openRepo(ctx context.Context, cfg config.Config) (repo.SnapshotRepository, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return repo.NewMemoryRepo(), nil
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		pg := repo.NewPostgresRepo(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		rt.pool = pool
		return pg, nil
	default:
		return repo.NewFileRepo(cfg.DataDir), nil
	}
}

// Close stops syncing, waits for queued mirror calls and releases the
// database pool.
func (rt *Runtime) Close() {
	if rt.App != nil {
		rt.App.Close()
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}
