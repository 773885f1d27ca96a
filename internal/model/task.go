package model

import (
	"encoding/json"
	"time"
)

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryShopping,
	CategoryHealth,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	DueDate     *Date     `json:"dueDate"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// Draft is the user input for a new task.
type Draft struct {
	Title       string
	Description string
	Category    Category
	DueDate     *Date
}

// Patch carries the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Title        *string
	Description  *string
	Category     *Category
	DueDate      *Date
	ClearDueDate bool
	Completed    *bool
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// Apply merges the set fields into t.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// MarshalJSON emits only the fields that are set, which is the body of a
// remote PATCH request.
func (p Patch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Category != nil {
		body["category"] = *p.Category
	}
	if p.ClearDueDate {
		body["dueDate"] = nil
	}
	if p.DueDate != nil {
		body["dueDate"] = *p.DueDate
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	return json.Marshal(body)
}

// Filter values accepted by the view besides category names.
const (
	FilterAll       = "all"
	FilterCompleted = "completed"
	FilterPending   = "pending"
)
