package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

func sampleTasks() []model.Task {
	due := model.NewDate(2024, time.June, 14)
	return []model.Task{
		{ID: 1, Title: "Call plumber", Category: model.CategoryOther, DueDate: &due, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Title: "Buy milk", Category: model.CategoryShopping, Completed: true, CreatedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
}

// testSnapshotRepository runs the behaviour every backend must share.
func testSnapshotRepository(t *testing.T, r SnapshotRepository) {
	ctx := context.Background()

	t.Run("empty before first save", func(t *testing.T) {
		records, err := r.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, r.Save(ctx, sampleTasks()))

		records, err := r.Load(ctx)
		require.NoError(t, err)

		tasks, skipped := model.ParseRecords(records)
		assert.Empty(t, skipped)
		assert.Equal(t, sampleTasks(), tasks)
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, r.Save(ctx, sampleTasks()[:1]))
		require.NoError(t, r.Save(ctx, nil))

		records, err := r.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestMemoryRepo(t *testing.T) {
	testSnapshotRepository(t, NewMemoryRepo())
}

func TestMemoryRepo_Failing(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	require.NoError(t, r.Save(ctx, sampleTasks()))

	r.SetFailing(true)
	require.ErrorIs(t, r.Save(ctx, nil), ErrorUnavailable)
	_, err := r.Load(ctx)
	require.ErrorIs(t, err, ErrorUnavailable)
	assert.Equal(t, 1, r.Saves())

	r.SetFailing(false)
	records, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFileRepo(t *testing.T) {
	testSnapshotRepository(t, NewFileRepo(filepath.Join(t.TempDir(), "nested", "dir")))
}

func TestFileRepo_Layout(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRepo(dir)
	require.NoError(t, r.Save(context.Background(), sampleTasks()))

	assert.Equal(t, filepath.Join(dir, "nexustask-tasks.json"), r.Path())

	data, err := os.ReadFile(r.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title":"Call plumber"`)

	_, err = os.Stat(r.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileRepo_Corrupt(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRepo(dir)
	require.NoError(t, os.WriteFile(r.Path(), []byte("{not json"), 0o644))

	_, err := r.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
