package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/model"
	"github.com/BuzzLyutic/nexustask/internal/service"
	"github.com/BuzzLyutic/nexustask/internal/worker"
)

type Status int32

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Remote is the subset of the /todos client the syncer needs.
type Remote interface {
	List(ctx context.Context) ([]json.RawMessage, error)
	Create(ctx context.Context, t model.Task) error
	Patch(ctx context.Context, id int64, p model.Patch) error
	Delete(ctx context.Context, id int64) error
}

// Store is the subset of the task store the syncer reads and writes through.
type Store interface {
	ReplaceAll(ctx context.Context, tasks []model.Task) (service.ReplaceResult, error)
	Subscribe(fn func(service.Change)) func()
}

type PullResult struct {
	Received int
	Replaced bool
	Kept     int
	Skipped  []error
}

type Options struct {
	Interval      time.Duration
	MirrorWorkers int
	MirrorQueue   int
	Clock         clock.Clock

	// OnStatus is called after every status transition.
	OnStatus func(Status)
	// OnMirrorError is called when a mirror call fails; the mutation is still
	// saved locally.
	OnMirrorError func(op service.Op, id int64, err error)
}

// Syncer mirrors local mutations to the remote collection while it is
// reachable and pulls the remote collection whenever it comes back online.
type Syncer struct {
	remote Remote
	store  Store
	logger *zap.Logger
	opts   Options

	status atomic.Int32
	// tickMu serialises probes so a transition triggers exactly one pull.
	tickMu sync.Mutex

	poller      *worker.Poller
	mirror      *worker.Pool
	unsubscribe func()
}

func New(remote Remote, store Store, logger *zap.Logger, opts Options) *Syncer {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.MirrorQueue <= 0 {
		opts.MirrorQueue = 64
	}

	s := &Syncer{
		remote: remote,
		store:  store,
		logger: logger,
		opts:   opts,
	}
	s.mirror = worker.NewPool(logger, opts.MirrorWorkers, opts.MirrorQueue)
	s.poller = worker.NewPoller(opts.Clock, logger, opts.Interval, s.Tick)
	return s
}

// Start subscribes to store changes, probes once right away and then on
// every interval.
func (s *Syncer) Start(ctx context.Context) {
	s.mirror.Start(ctx)
	s.unsubscribe = s.store.Subscribe(s.onChange)
	s.Tick(ctx)
	s.poller.Start(ctx)
}

// Stop halts polling, stops mirroring new changes and waits for queued mirror
// calls to finish.
func (s *Syncer) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.poller.Stop()
	s.mirror.Stop()
}

func (s *Syncer) Status() Status {
	return Status(s.status.Load())
}

// Tick probes the remote and updates the status. Becoming online triggers a
// pull; staying online does not.
func (s *Syncer) Tick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	_, err := s.remote.List(ctx)
	if err != nil {
		if s.setStatus(StatusOffline) {
			s.logger.Info("remote offline, using local storage", zap.Error(err))
		}
		return
	}

	if !s.setStatus(StatusOnline) {
		return
	}
	s.logger.Info("remote online")

	if _, err := s.Pull(ctx); err != nil {
		s.logger.Warn("pull failed", zap.Error(err))
	}
}

// Pull replaces the local collection with the remote one. An empty remote,
// or one with no usable records, leaves local tasks untouched.
func (s *Syncer) Pull(ctx context.Context) (PullResult, error) {
	records, err := s.remote.List(ctx)
	if err != nil {
		return PullResult{}, fmt.Errorf("pull: %w", err)
	}

	result := PullResult{Received: len(records)}
	if len(records) == 0 {
		s.logger.Debug("remote collection empty, keeping local tasks")
		return result, nil
	}

	tasks, skipped := model.ParseRecords(records)
	if len(tasks) == 0 {
		result.Skipped = skipped
		s.logger.Warn("remote records all malformed, keeping local tasks",
			zap.Int("received", result.Received),
			zap.Int("skipped", len(skipped)),
		)
		return result, nil
	}

	replaced, err := s.store.ReplaceAll(ctx, tasks)
	if err != nil {
		return result, fmt.Errorf("pull: %w", err)
	}

	result.Replaced = replaced.Replaced
	result.Kept = replaced.Kept
	result.Skipped = append(skipped, replaced.Skipped...)

	s.logger.Info("pulled remote tasks",
		zap.Int("received", result.Received),
		zap.Int("kept", result.Kept),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *Syncer) setStatus(next Status) bool {
	prev := Status(s.status.Swap(int32(next)))
	if prev == next {
		return false
	}
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(next)
	}
	return true
}

func (s *Syncer) onChange(c service.Change) {
	if s.Status() != StatusOnline {
		return
	}

	var run func(ctx context.Context) error
	switch c.Op {
	case service.OpCreated:
		task := c.Task
		run = func(ctx context.Context) error { return s.remote.Create(ctx, task) }
	case service.OpUpdated:
		patch := c.Patch
		run = func(ctx context.Context) error { return s.remote.Patch(ctx, c.ID, patch) }
	case service.OpDeleted:
		run = func(ctx context.Context) error { return s.remote.Delete(ctx, c.ID) }
	default:
		return
	}

	s.mirror.Submit(worker.Job{
		Name: fmt.Sprintf("%s %d", c.Op, c.ID),
		Run: func(ctx context.Context) error {
			err := run(ctx)
			if err != nil && s.opts.OnMirrorError != nil {
				s.opts.OnMirrorError(c.Op, c.ID, err)
			}
			return err
		},
	})
}
