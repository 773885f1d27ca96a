package repo

import (
	"context"
	"encoding/json"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

// Namespace is the key the task snapshot is stored under in every backend.
const Namespace = "nexustask-tasks"

// SnapshotRepository persists the whole task collection as one record.
// Load returns raw records so that the store can drop malformed ones instead
// of failing the whole read.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]json.RawMessage, error)
	Save(ctx context.Context, tasks []model.Task) error
}
