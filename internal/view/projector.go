// Package view derives what the task list shows from the canonical
// collection. Nothing here mutates tasks.
package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

type Item struct {
	Task model.Task
	Due  DueInfo
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

type Projection struct {
	Items []Item
	Stats Stats
}

// ParseFilter accepts all, completed, pending or a category name.
func ParseFilter(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return model.FilterAll, nil
	case model.FilterAll, model.FilterCompleted, model.FilterPending:
		return s, nil
	}
	if model.Category(s).Valid() {
		return s, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Filters lists every filter value in the order a UI cycles through them.
func Filters() []string {
	out := []string{model.FilterAll, model.FilterPending, model.FilterCompleted}
	for _, c := range model.Categories {
		out = append(out, string(c))
	}
	return out
}

// Project filters by search term and filter value, orders the result and
// computes stats over the whole collection.
func Project(tasks []model.Task, search, filter string, today model.Date) Projection {
	search = strings.ToLower(strings.TrimSpace(search))

	items := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		if !matchesSearch(t, search) || !matchesFilter(t, filter) {
			continue
		}
		items = append(items, Item{
			Task: t.Clone(),
			Due:  DueLabel(t.DueDate, today, t.Completed),
		})
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return compareTasks(a.Task, b.Task)
	})

	return Projection{
		Items: items,
		Stats: ComputeStats(tasks, today),
	}
}

func ComputeStats(tasks []model.Task, today model.Date) Stats {
	var st Stats
	st.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
			continue
		}
		if t.DueDate != nil && t.DueDate.Before(today) {
			st.Overdue++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

func matchesSearch(t model.Task, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

func matchesFilter(t model.Task, filter string) bool {
	switch filter {
	case "", model.FilterAll:
		return true
	case model.FilterCompleted:
		return t.Completed
	case model.FilterPending:
		return !t.Completed
	default:
		return string(t.Category) == filter
	}
}

// compareTasks puts incomplete tasks first, then dated tasks by ascending due
// date, then undated ones. Equal keys keep insertion order via the stable sort.
func compareTasks(a, b model.Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	switch {
	case a.DueDate != nil && b.DueDate != nil:
		return a.DueDate.Compare(*b.DueDate)
	case a.DueDate != nil:
		return -1
	case b.DueDate != nil:
		return 1
	}
	return 0
}
