package repo

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

var ErrorUnavailable = errors.New("snapshot storage unavailable")

// MemoryRepo keeps the serialized snapshot in process memory.
type MemoryRepo struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	failing bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Load(ctx context.Context) ([]json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, ErrorUnavailable
	}
	return decodeSnapshot(r.payload)
}

func (r *MemoryRepo) Save(ctx context.Context, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return ErrorUnavailable
	}
	payload, err := encodeSnapshot(tasks)
	if err != nil {
		return err
	}
	r.payload = payload
	r.saves++
	return nil
}

// SetFailing makes every subsequent Load and Save fail with ErrorUnavailable.
func (r *MemoryRepo) SetFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

// Saves returns how many snapshots were written.
func (r *MemoryRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func encodeSnapshot(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return json.Marshal(tasks)
}

func decodeSnapshot(payload []byte) ([]json.RawMessage, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, err
	}
	return records, nil
}
