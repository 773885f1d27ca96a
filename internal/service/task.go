package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/hay-kot/criterio"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/model"
	"github.com/BuzzLyutic/nexustask/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("task not found")
)

type Op string

const (
	OpCreated  Op = "created"
	OpUpdated  Op = "updated"
	OpDeleted  Op = "deleted"
	OpReplaced Op = "replaced"
)

// Change describes a committed mutation. Task is the task after the change
// (the removed task for OpDeleted); Patch is only set for OpUpdated.
type Change struct {
	Op    Op
	ID    int64
	Task  model.Task
	Patch model.Patch
}

type ReplaceResult struct {
	Replaced bool
	Kept     int
	Skipped  []error
}

type listener struct {
	id int
	fn func(Change)
}

// TaskStore owns the task collection. Every mutation is written to the
// snapshot repository before it becomes visible or is announced.
type TaskStore struct {
	repo   repo.SnapshotRepository
	logger *zap.Logger
	clock  clock.Clock

	mu     sync.RWMutex
	tasks  []model.Task
	lastID int64

	lmu          sync.Mutex
	listeners    []listener
	nextListener int
}

type Option func(*TaskStore)

func WithClock(c clock.Clock) Option {
	return func(s *TaskStore) {
		s.clock = c
	}
}

func NewTaskStore(repo repo.SnapshotRepository, logger *zap.Logger, opts ...Option) *TaskStore {
	s := &TaskStore{
		repo:   repo,
		logger: logger,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the snapshot once at startup. Malformed stored records are
// dropped and reported in the result.
func (s *TaskStore) Load(ctx context.Context) (ReplaceResult, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("load snapshot: %w", err)
	}

	parsed, skipped := model.ParseRecords(records)
	tasks, invalid := sanitize(parsed)
	skipped = append(skipped, invalid...)

	s.mu.Lock()
	s.tasks = tasks
	s.bumpLastID(tasks)
	s.mu.Unlock()

	for _, err := range skipped {
		s.logger.Warn("dropping stored task", zap.Error(err))
	}
	return ReplaceResult{Kept: len(tasks), Skipped: skipped}, nil
}

func (s *TaskStore) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Category == "" {
		d.Category = model.CategoryPersonal
	}
	if err := s.validate(d); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	now := s.clock.Now()
	t := model.Task{
		ID:          s.nextID(now.UnixMilli()),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Completed:   false,
		CreatedAt:   now.UTC(),
	}
	if d.DueDate != nil {
		due := *d.DueDate
		t.DueDate = &due
	}

	next := append(cloneTasks(s.tasks), t)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	s.tasks = next
	s.mu.Unlock()

	s.logger.Debug("task created", zap.Int64("task_id", t.ID), zap.String("title", t.Title))
	s.notify(Change{Op: OpCreated, ID: t.ID, Task: t.Clone()})
	return t.Clone(), nil
}

func (s *TaskStore) Update(ctx context.Context, id int64, p model.Patch) (model.Task, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	if err := s.validatePatch(p); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if p.Empty() {
		t := s.tasks[idx].Clone()
		s.mu.Unlock()
		return t, nil
	}

	next := cloneTasks(s.tasks)
	next[idx] = p.Apply(next[idx])
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	s.tasks = next
	t := next[idx].Clone()
	s.mu.Unlock()

	s.logger.Debug("task updated", zap.Int64("task_id", id))
	s.notify(Change{Op: OpUpdated, ID: id, Task: t, Patch: p})
	return t.Clone(), nil
}

func (s *TaskStore) SetCompleted(ctx context.Context, id int64, completed bool) (model.Task, error) {
	return s.Update(ctx, id, model.Patch{Completed: &completed})
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	removed := s.tasks[idx].Clone()
	next := make([]model.Task, 0, len(s.tasks)-1)
	next = append(next, cloneTasks(s.tasks[:idx])...)
	next = append(next, cloneTasks(s.tasks[idx+1:])...)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.tasks = next
	s.mu.Unlock()

	s.logger.Debug("task deleted", zap.Int64("task_id", id))
	s.notify(Change{Op: OpDeleted, ID: id, Task: removed})
	return nil
}

// ReplaceAll swaps the whole collection for tasks, in the given order. A
// non-empty batch in which no task survives validation leaves the collection
// as it was.
// Records that break the collection invariants are skipped and reported.
func (s *TaskStore) ReplaceAll(ctx context.Context, tasks []model.Task) (ReplaceResult, error) {
	kept, skipped := sanitize(tasks)
	if len(tasks) > 0 && len(kept) == 0 {
		for _, err := range skipped {
			s.logger.Warn("skipping malformed task", zap.Error(err))
		}
		s.logger.Warn("no valid tasks in replacement, keeping collection", zap.Int("skipped", len(skipped)))
		return ReplaceResult{Skipped: skipped}, nil
	}

	s.mu.Lock()
	if err := s.persist(ctx, kept); err != nil {
		s.mu.Unlock()
		return ReplaceResult{}, err
	}
	s.tasks = kept
	s.bumpLastID(kept)
	s.mu.Unlock()

	for _, err := range skipped {
		s.logger.Warn("skipping malformed task", zap.Error(err))
	}
	s.notify(Change{Op: OpReplaced})
	return ReplaceResult{Replaced: true, Kept: len(kept), Skipped: skipped}, nil
}

// Snapshot returns a copy of the collection in insertion order.
func (s *TaskStore) Snapshot() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

func (s *TaskStore) Get(id int64) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s.tasks[idx].Clone(), nil
}

// Subscribe registers fn to be called after every committed mutation. The
// returned func removes the subscription.
func (s *TaskStore) Subscribe(fn func(Change)) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *TaskStore) notify(c Change) {
	s.lmu.Lock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l.fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// persist must be called with mu held.
func (s *TaskStore) persist(ctx context.Context, tasks []model.Task) error {
	if err := s.repo.Save(ctx, tasks); err != nil {
		s.logger.Error("failed to persist snapshot", zap.Error(err))
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

func (s *TaskStore) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the creation time, moving past anything already
// issued so ids created within the same millisecond stay unique.
func (s *TaskStore) nextID(candidate int64) int64 {
	if candidate <= s.lastID {
		candidate = s.lastID + 1
	}
	s.lastID = candidate
	return candidate
}

func (s *TaskStore) bumpLastID(tasks []model.Task) {
	for _, t := range tasks {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
}

func (s *TaskStore) validate(d model.Draft) error {
	return validation(criterio.ValidateStruct(
		criterio.Run("title", d.Title, notBlank),
		criterio.Run("category", string(d.Category), knownCategory),
	))
}

func (s *TaskStore) validatePatch(p model.Patch) error {
	var errs criterio.FieldErrorsBuilder
	if p.Title != nil {
		if err := notBlank(*p.Title); err != nil {
			errs = errs.Append("title", err)
		}
	}
	if p.Category != nil {
		if err := knownCategory(string(*p.Category)); err != nil {
			errs = errs.Append("category", err)
		}
	}
	return validation(errs.ToError())
}

func validation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("is required")
	}
	return nil
}

func knownCategory(s string) error {
	if !model.Category(s).Valid() {
		return fmt.Errorf("unknown category %q", s)
	}
	return nil
}

// sanitize keeps the tasks that satisfy the collection invariants: positive
// unique id, non-blank title, known category.
func sanitize(tasks []model.Task) ([]model.Task, []error) {
	kept := make([]model.Task, 0, len(tasks))
	seen := make(map[int64]bool, len(tasks))
	var skipped []error

	for i, t := range tasks {
		reason := ""
		switch {
		case t.ID <= 0:
			reason = "missing id"
		case seen[t.ID]:
			reason = "duplicate id"
		case notBlank(t.Title) != nil:
			reason = "missing title"
		case !t.Category.Valid():
			reason = fmt.Sprintf("unknown category %q", t.Category)
		}
		if reason != "" {
			skipped = append(skipped, &model.MalformedRecordError{Index: i, ID: t.ID, Reason: reason})
			continue
		}
		seen[t.ID] = true
		kept = append(kept, t.Clone())
	}
	return kept, skipped
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
