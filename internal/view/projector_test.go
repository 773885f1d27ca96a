package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

var today = model.NewDate(2024, time.June, 15)

func date(month time.Month, day int) *model.Date {
	d := model.NewDate(2024, month, day)
	return &d
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Task.Title
	}
	return out
}

func fixture() []model.Task {
	return []model.Task{
		{ID: 1, Title: "Buy milk", Category: model.CategoryShopping, DueDate: date(time.June, 20)},
		{ID: 2, Title: "Call dentist", Description: "book cleaning", Category: model.CategoryHealth, DueDate: date(time.June, 14)},
		{ID: 3, Title: "File taxes", Category: model.CategoryWork, Completed: true, DueDate: date(time.June, 1)},
		{ID: 4, Title: "Read book", Category: model.CategoryPersonal},
		{ID: 5, Title: "Plan trip", Description: "call the agency", Category: model.CategoryOther, DueDate: date(time.June, 15)},
		{ID: 6, Title: "Old chore", Category: model.CategoryPersonal, Completed: true},
	}
}

func TestProject_AllSortedIncompleteFirstByDueDate(t *testing.T) {
	tasks := fixture()

	p := Project(tasks, "", model.FilterAll, today)

	assert.Equal(t, []string{
		"Call dentist", // Jun 14
		"Plan trip",    // Jun 15
		"Buy milk",     // Jun 20
		"Read book",    // undated
		"File taxes",   // completed, Jun 1
		"Old chore",    // completed, undated
	}, titles(p.Items))
	assert.Equal(t, len(tasks), p.Stats.Total)
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	tasks := fixture()
	before := fixture()

	p := Project(tasks, "", model.FilterAll, today)
	p.Items[0].Task.DueDate.Day = 1

	assert.Equal(t, before, tasks)
}

func TestProject_StableForEqualKeys(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "first", Category: model.CategoryWork},
		{ID: 2, Title: "second", Category: model.CategoryWork},
		{ID: 3, Title: "third", Category: model.CategoryWork},
	}

	p := Project(tasks, "", model.FilterAll, today)
	assert.Equal(t, []string{"first", "second", "third"}, titles(p.Items))
}

func TestProject_Search(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "Buy milk", Category: model.CategoryShopping},
		{ID: 2, Title: "Call dentist", Category: model.CategoryHealth},
	}

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "lowercase term", search: "call", want: []string{"Call dentist"}},
		{name: "mixed case", search: "  MiLk ", want: []string{"Buy milk"}},
		{name: "no match", search: "xyz", want: []string{}},
		{name: "empty matches all", search: "", want: []string{"Buy milk", "Call dentist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project(tasks, tt.search, model.FilterAll, today)
			assert.Equal(t, tt.want, titles(p.Items))
			assert.Equal(t, 2, p.Stats.Total)
		})
	}
}

func TestProject_SearchMatchesDescription(t *testing.T) {
	p := Project(fixture(), "call", model.FilterAll, today)
	assert.Equal(t, []string{"Call dentist", "Plan trip"}, titles(p.Items))
}

func TestProject_Filter(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{filter: model.FilterCompleted, want: []string{"File taxes", "Old chore"}},
		{filter: model.FilterPending, want: []string{"Call dentist", "Plan trip", "Buy milk", "Read book"}},
		{filter: "personal", want: []string{"Read book", "Old chore"}},
		{filter: "work", want: []string{"File taxes"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			p := Project(fixture(), "", tt.filter, today)
			assert.Equal(t, tt.want, titles(p.Items))
		})
	}
}

func TestProject_SearchAndFilterCombine(t *testing.T) {
	p := Project(fixture(), "o", model.FilterCompleted, today)
	assert.Equal(t, []string{"Old chore"}, titles(p.Items))
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(fixture(), today)

	assert.Equal(t, Stats{Total: 6, Completed: 2, Pending: 4, Overdue: 1}, st)
}

func TestComputeStats_CompletedNeverOverdue(t *testing.T) {
	overdue := model.Task{ID: 1, Title: "Call plumber", Category: model.CategoryOther, DueDate: date(time.June, 14)}

	st := ComputeStats([]model.Task{overdue}, today)
	assert.Equal(t, 1, st.Overdue)

	overdue.Completed = true
	st = ComputeStats([]model.Task{overdue}, today)
	assert.Equal(t, 0, st.Overdue)
	assert.Equal(t, 1, st.Completed)
}

func TestProject_StatsIgnoreSearchAndFilter(t *testing.T) {
	p := Project(fixture(), "nothing matches this", model.FilterCompleted, today)

	assert.Empty(t, p.Items)
	assert.Equal(t, ComputeStats(fixture(), today), p.Stats)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: model.FilterAll},
		{in: "ALL", want: model.FilterAll},
		{in: " pending ", want: model.FilterPending},
		{in: "completed", want: model.FilterCompleted},
		{in: "Shopping", want: "shopping"},
		{in: "errands", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilters(t *testing.T) {
	filters := Filters()

	require.Len(t, filters, 3+len(model.Categories))
	assert.Equal(t, model.FilterAll, filters[0])
	for _, f := range filters {
		_, err := ParseFilter(f)
		assert.NoError(t, err, f)
	}
}
