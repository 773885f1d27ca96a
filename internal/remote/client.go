package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

// ErrTransport wraps every failure to talk to the remote collection, whether
// the request never completed or the endpoint answered with a non-2xx status.
var ErrTransport = errors.New("remote unavailable")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// Client talks to a json-server style /todos collection.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets callers supply their own transport, e.g. an
// httptest server client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// List fetches the full collection as raw records; shape validation is the
// caller's job.
func (c *Client) List(ctx context.Context) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) Create(ctx context.Context, t model.Task) error {
	return c.do(ctx, http.MethodPost, "/todos", t, nil)
}

func (c *Client) Patch(ctx context.Context, id int64, p model.Patch) error {
	return c.do(ctx, http.MethodPatch, todoPath(id), p, nil)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %w", ErrTransport, &StatusError{Method: method, Path: path, Code: resp.StatusCode})
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrTransport, method, path, err)
	}
	return nil
}
