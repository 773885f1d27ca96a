// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/handler"
)

// Remote is a mock /todos endpoint backed by an in-memory collection.
type Remote struct {
	Server     *httptest.Server
	Collection *handler.Collection
}

// URL is the base URL to hand to remote.NewClient.
func (r *Remote) URL() string {
	return r.Server.URL
}

// NewRemote starts a mock remote that is closed when the test ends.
func NewRemote(t *testing.T) *Remote {
	t.Helper()

	collection := handler.NewCollection()
	h := handler.NewTodoHandler(collection, zap.NewNop())
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	return &Remote{Server: srv, Collection: collection}
}

// SetupPostgres starts a throwaway PostgreSQL container. Skipped in -short mode.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	})
	return pool
}

// WaitForCondition polls condition until it holds or timeout elapses.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
