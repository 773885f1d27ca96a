package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/handler"
)

type ServeCmd struct {
	flags *Flags

	// flags
	addr string
	seed string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run an in-memory /todos server to sync against",
		UsageText: "nexustask serve [--addr :3000] [--seed tasks.json]",
		Description: `Serves a json-server compatible /todos collection held in memory. Point
remote.url at it to try online sync locally.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Sources:     cli.EnvVars("NEXUSTASK_SERVE_ADDR"),
				Value:       ":3000",
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "seed",
				Usage:       "JSON array of todos to start with",
				Destination: &cmd.seed,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	logger := cmd.flags.Logger.Named("serve")

	collection := handler.NewCollection()
	if cmd.seed != "" {
		if err := seedCollection(collection, cmd.seed); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         cmd.addr,
		Handler:      handler.NewTodoHandler(collection, logger).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr), zap.Int("todos", len(collection.List())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-quit.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func seedCollection(c *handler.Collection, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	seed := make([]any, len(records))
	for i, r := range records {
		seed[i] = r
	}
	return c.Seed(seed...)
}
