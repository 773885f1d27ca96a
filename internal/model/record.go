package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MalformedRecordError reports a task record that failed shape validation.
// Index is the record's position in the batch it arrived in.
type MalformedRecordError struct {
	Index  int
	ID     int64
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("malformed record %d (id %d): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed record %d: %s", e.Index, e.Reason)
}

// rawRecord is the loosely typed shape of a record coming from outside:
// the remote endpoint or an older snapshot.
type rawRecord struct {
	ID          json.RawMessage `json:"id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	DueDate     *string         `json:"dueDate"`
	Completed   *bool           `json:"completed"`
	CreatedAt   *string         `json:"createdAt"`
}

// ParseRecord coerces one external record into a Task. It checks shape only;
// collection-level invariants are enforced by the store.
func ParseRecord(index int, data json.RawMessage) (Task, error) {
	malformed := func(id int64, format string, args ...any) error {
		return &MalformedRecordError{Index: index, ID: id, Reason: fmt.Sprintf(format, args...)}
	}

	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return Task{}, malformed(0, "not an object: %v", err)
	}

	id, err := parseID(raw.ID)
	if err != nil {
		return Task{}, malformed(0, "%v", err)
	}

	t := Task{ID: id}

	if raw.Title == nil || strings.TrimSpace(*raw.Title) == "" {
		return Task{}, malformed(id, "missing title")
	}
	t.Title = *raw.Title

	if raw.Description != nil {
		t.Description = *raw.Description
	}

	t.Category = CategoryPersonal
	if raw.Category != nil && *raw.Category != "" {
		t.Category = Category(*raw.Category)
	}
	if !t.Category.Valid() {
		return Task{}, malformed(id, "unknown category %q", t.Category)
	}

	if raw.DueDate != nil && strings.TrimSpace(*raw.DueDate) != "" {
		d, err := ParseDate(*raw.DueDate)
		if err != nil {
			return Task{}, malformed(id, "%v", err)
		}
		t.DueDate = &d
	}

	if raw.Completed != nil {
		t.Completed = *raw.Completed
	}

	if raw.CreatedAt != nil && *raw.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339Nano, *raw.CreatedAt)
		if err != nil {
			return Task{}, malformed(id, "invalid createdAt %q", *raw.CreatedAt)
		}
		t.CreatedAt = created
	}

	return t, nil
}

// ParseRecords parses a batch, returning the valid tasks and one error per
// skipped record.
func ParseRecords(records []json.RawMessage) ([]Task, []error) {
	tasks := make([]Task, 0, len(records))
	var skipped []error
	for i, rec := range records {
		t, err := ParseRecord(i, rec)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, skipped
}

func parseID(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing id")
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return positiveID(string(n))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("id must be a number or numeric string")
	}
	return positiveID(strings.TrimSpace(s))
}

func positiveID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}
