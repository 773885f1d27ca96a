package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

// FileRepo stores the snapshot as a JSON array in <dir>/nexustask-tasks.json.
type FileRepo struct {
	path string
}

func NewFileRepo(dir string) *FileRepo {
	return &FileRepo{path: filepath.Join(dir, Namespace+".json")}
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Load(ctx context.Context) ([]json.RawMessage, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	records, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return records, nil
}

// Save replaces the snapshot atomically: temp file, then rename.
func (r *FileRepo) Save(ctx context.Context, tasks []model.Task) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	data, err := encodeSnapshot(tasks)
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
