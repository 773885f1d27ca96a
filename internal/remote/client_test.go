package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

type recorded struct {
	method string
	path   string
	body   string
	ctype  string
}

func newServer(t *testing.T, status int, response string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{
			method: r.Method,
			path:   r.URL.Path,
			body:   string(body),
			ctype:  r.Header.Get("Content-Type"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/", time.Second), &calls
}

func TestClient_List(t *testing.T) {
	c, calls := newServer(t, http.StatusOK, `[{"id":1,"title":"a"},{"id":"2","title":"b"}]`)

	records, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":"2","title":"b"}`, string(records[1]))

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodGet, (*calls)[0].method)
	assert.Equal(t, "/todos", (*calls)[0].path)
}

func TestClient_Create(t *testing.T) {
	c, calls := newServer(t, http.StatusCreated, `{}`)

	task := model.Task{ID: 7, Title: "Buy milk", Category: model.CategoryShopping}
	require.NoError(t, c.Create(context.Background(), task))

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/todos", call.path)
	assert.Equal(t, "application/json", call.ctype)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(call.body), &sent))
	assert.Equal(t, float64(7), sent["id"])
	assert.Equal(t, "Buy milk", sent["title"])
	assert.Nil(t, sent["dueDate"])
}

func TestClient_Patch(t *testing.T) {
	c, calls := newServer(t, http.StatusOK, `{}`)

	done := true
	require.NoError(t, c.Patch(context.Background(), 7, model.Patch{Completed: &done}))

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPatch, (*calls)[0].method)
	assert.Equal(t, "/todos/7", (*calls)[0].path)
	assert.JSONEq(t, `{"completed":true}`, (*calls)[0].body)
}

func TestClient_Delete(t *testing.T) {
	c, calls := newServer(t, http.StatusOK, `{}`)

	require.NoError(t, c.Delete(context.Background(), 7))

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/todos/7", (*calls)[0].path)
	assert.Empty(t, (*calls)[0].body)
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		c, _ := newServer(t, http.StatusServiceUnavailable, `{"error":"down"}`)

		err := c.Delete(context.Background(), 1)
		require.ErrorIs(t, err, ErrTransport)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
		assert.Equal(t, "/todos/1", statusErr.Path)
	})

	t.Run("not a list", func(t *testing.T) {
		c, _ := newServer(t, http.StatusOK, `{"todos":[]}`)

		_, err := c.List(context.Background())
		require.ErrorIs(t, err, ErrTransport)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(url, time.Second).List(context.Background())
		require.ErrorIs(t, err, ErrTransport)
	})

	t.Run("timeout", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(block) })

		_, err := NewClient(srv.URL, 50*time.Millisecond).List(context.Background())
		require.ErrorIs(t, err, ErrTransport)
	})
}
