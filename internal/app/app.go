// Package app is the boundary between the task core and whatever presents it.
// It keeps the current search term and filter, and tells the presentation
// when the visible list may have changed.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/model"
	"github.com/BuzzLyutic/nexustask/internal/service"
	"github.com/BuzzLyutic/nexustask/internal/syncer"
	"github.com/BuzzLyutic/nexustask/internal/view"
)

// Syncer is the part of the remote sync the app drives.
type Syncer interface {
	Start(ctx context.Context)
	Stop()
	Status() syncer.Status
}

type Options struct {
	Clock       clock.Clock
	SearchDelay time.Duration
}

type App struct {
	store  *service.TaskStore
	remote Syncer
	logger *zap.Logger
	clock  clock.Clock

	mu            sync.RWMutex
	search        string
	pendingSearch string
	filter        string

	debounce    *view.Debouncer
	unsubscribe func()

	lmu          sync.Mutex
	listeners    map[int]func()
	nextListener int
}

// New wires the app. remote may be nil for local-only use.
func New(store *service.TaskStore, remote Syncer, logger *zap.Logger, opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = 300 * time.Millisecond
	}

	a := &App{
		store:     store,
		remote:    remote,
		logger:    logger,
		clock:     opts.Clock,
		filter:    model.FilterAll,
		listeners: make(map[int]func()),
	}
	a.debounce = view.NewDebouncer(opts.Clock, opts.SearchDelay, a.applySearch)
	a.unsubscribe = store.Subscribe(func(service.Change) { a.emit() })
	return a
}

func (a *App) Start(ctx context.Context) {
	if a.remote != nil {
		a.remote.Start(ctx)
	}
}

// Close stops the syncer (draining queued mirror calls) and any pending
// search update.
func (a *App) Close() {
	a.debounce.Stop()
	if a.remote != nil {
		a.remote.Stop()
	}
	a.unsubscribe()
}

func (a *App) Status() syncer.Status {
	if a.remote == nil {
		return syncer.StatusUnknown
	}
	return a.remote.Status()
}

func (a *App) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	return a.store.Create(ctx, d)
}

func (a *App) Update(ctx context.Context, id int64, p model.Patch) (model.Task, error) {
	return a.store.Update(ctx, id, p)
}

func (a *App) SetCompleted(ctx context.Context, id int64, completed bool) (model.Task, error) {
	return a.store.SetCompleted(ctx, id, completed)
}

func (a *App) Delete(ctx context.Context, id int64) error {
	return a.store.Delete(ctx, id)
}

func (a *App) Get(id int64) (model.Task, error) {
	return a.store.Get(id)
}

// SetSearch records the term and re-projects once typing pauses.
func (a *App) SetSearch(term string) {
	a.mu.Lock()
	a.pendingSearch = term
	a.mu.Unlock()
	a.debounce.Trigger()
}

// FlushSearch applies a pending search term right away.
func (a *App) FlushSearch() {
	a.debounce.Flush()
}

func (a *App) Search() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.search
}

func (a *App) SetFilter(value string) error {
	f, err := view.ParseFilter(value)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.filter = f
	a.mu.Unlock()
	a.emit()
	return nil
}

func (a *App) Filter() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.filter
}

func (a *App) Today() model.Date {
	return model.DateOf(a.clock.Now())
}

func (a *App) Projection() view.Projection {
	a.mu.RLock()
	search, filter := a.search, a.filter
	a.mu.RUnlock()
	return view.Project(a.store.Snapshot(), search, filter, a.Today())
}

func (a *App) GetVisibleTasks() []view.Item {
	return a.Projection().Items
}

func (a *App) GetStats() view.Stats {
	return view.ComputeStats(a.store.Snapshot(), a.Today())
}

// OnChange registers fn to run whenever the visible list may have changed.
func (a *App) OnChange(fn func()) func() {
	a.lmu.Lock()
	defer a.lmu.Unlock()

	id := a.nextListener
	a.nextListener++
	a.listeners[id] = fn

	return func() {
		a.lmu.Lock()
		defer a.lmu.Unlock()
		delete(a.listeners, id)
	}
}

func (a *App) applySearch() {
	a.mu.Lock()
	a.search = a.pendingSearch
	a.mu.Unlock()
	a.emit()
}

func (a *App) emit() {
	a.lmu.Lock()
	fns := make([]func(), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
