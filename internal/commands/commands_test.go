package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/config"
	"github.com/BuzzLyutic/nexustask/internal/testutil"
	"github.com/BuzzLyutic/nexustask/internal/view"
)

func newTestRuntime(t *testing.T, offline bool, remoteURL string) (*Flags, *Runtime) {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Store.Backend = config.BackendMemory
	if remoteURL != "" {
		cfg.Remote.URL = remoteURL
	}

	flags := &Flags{Offline: offline, Config: cfg, Logger: zap.NewNop()}
	rt := NewRuntime(flags)
	t.Cleanup(rt.Close)
	return flags, rt
}

func run(t *testing.T, flags *Flags, rt *Runtime, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer

	app := &cli.Command{
		Name:   "nexustask",
		Writer: &buf,
	}
	app = NewAddCmd(flags, rt).Register(app)
	app = NewEditCmd(flags, rt).Register(app)
	app = NewDoneCmd(flags, rt).Register(app)
	app = NewUndoCmd(flags, rt).Register(app)
	app = NewRmCmd(flags, rt).Register(app)
	app = NewLsCmd(flags, rt).Register(app)
	app = NewStatsCmd(flags, rt).Register(app)
	app = NewSyncCmd(flags, rt).Register(app)

	err := app.Run(context.Background(), append([]string{"nexustask"}, args...))
	return buf.String(), err
}

func listJSON(t *testing.T, out string) []listedTask {
	t.Helper()
	var tasks []listedTask
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var lt listedTask
		require.NoError(t, json.Unmarshal(sc.Bytes(), &lt))
		tasks = append(tasks, lt)
	}
	return tasks
}

func TestCommands_LocalWorkflow(t *testing.T) {
	flags, rt := newTestRuntime(t, true, "")

	out, err := run(t, flags, rt, "add", "--category", "health", "--due", "2000-01-01", "Call", "dentist")
	require.NoError(t, err)
	assert.Contains(t, out, "added #")

	_, err = run(t, flags, rt, "add", "Buy milk")
	require.NoError(t, err)

	out, err = run(t, flags, rt, "ls", "--json")
	require.NoError(t, err)
	tasks := listJSON(t, out)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Call dentist", tasks[0].Title, "dated tasks sort first")
	assert.True(t, tasks[0].Overdue)
	assert.Equal(t, "personal", string(tasks[1].Category))

	dentist := tasks[0].ID
	_, err = run(t, flags, rt, "done", itoa(dentist))
	require.NoError(t, err)

	out, err = run(t, flags, rt, "ls", "--json", "--filter", "pending")
	require.NoError(t, err)
	tasks = listJSON(t, out)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)

	out, err = run(t, flags, rt, "ls", "--json", "--search", "DENT")
	require.NoError(t, err)
	tasks = listJSON(t, out)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	_, err = run(t, flags, rt, "edit", "--title", "Call the dentist", "--clear-due", itoa(dentist))
	require.NoError(t, err)
	got, err := rt.Store.Get(dentist)
	require.NoError(t, err)
	assert.Equal(t, "Call the dentist", got.Title)
	assert.Nil(t, got.DueDate)

	out, err = run(t, flags, rt, "stats", "--json")
	require.NoError(t, err)
	var st view.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, view.Stats{Total: 2, Completed: 1, Pending: 1}, st)

	_, err = run(t, flags, rt, "rm", itoa(dentist))
	require.NoError(t, err)
	assert.Len(t, rt.Store.Snapshot(), 1)
}

func TestCommands_Errors(t *testing.T) {
	flags, rt := newTestRuntime(t, true, "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "blank title", args: []string{"add", "  "}, wantErr: "invalid task: title"},
		{name: "unknown category", args: []string{"add", "--category", "errands", "x"}, wantErr: "category"},
		{name: "bad due date", args: []string{"add", "--due", "tomorrow", "x"}, wantErr: "invalid --due"},
		{name: "missing id", args: []string{"done"}, wantErr: "task id is required"},
		{name: "bad id", args: []string{"rm", "abc"}, wantErr: `invalid task id "abc"`},
		{name: "unknown id", args: []string{"undo", "99"}, wantErr: "no task with that id"},
		{name: "unknown filter", args: []string{"ls", "--filter", "errands"}, wantErr: "unknown filter"},
		{name: "sync offline", args: []string{"sync"}, wantErr: "--offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, flags, rt, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Empty(t, rt.Store.Snapshot())
}

func TestCommands_Sync(t *testing.T) {
	rem := testutil.NewRemote(t)
	require.NoError(t, rem.Collection.Seed(
		map[string]any{"id": 1, "title": "from remote", "category": "work"},
	))

	flags, rt := newTestRuntime(t, false, rem.URL())

	out, err := run(t, flags, rt, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "remote online, 1 tasks stored locally")

	snap := rt.Store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "from remote", snap[0].Title)
}

func TestCommands_SyncRemoteDown(t *testing.T) {
	rem := testutil.NewRemote(t)
	rem.Collection.SetAvailable(false)

	flags, rt := newTestRuntime(t, false, rem.URL())

	_, err := run(t, flags, rt, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
