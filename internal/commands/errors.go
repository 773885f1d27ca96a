package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hay-kot/criterio"

	"github.com/BuzzLyutic/nexustask/internal/service"
)

// userError rewrites store errors into messages meant for the terminal.
func userError(err error) error {
	if err == nil {
		return nil
	}

	var fields criterio.FieldErrors
	switch {
	case errors.As(err, &fields):
		msg := "invalid task:"
		for _, f := range fields {
			msg += fmt.Sprintf(" %s %v;", f.Field, f.Err)
		}
		return errors.New(msg[:len(msg)-1])
	case errors.Is(err, service.ErrNotFound):
		return errors.New("no task with that id")
	default:
		return err
	}
}

func parseTaskID(arg string) (int64, error) {
	if arg == "" {
		return 0, errors.New("task id is required")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
