package view

import (
	"fmt"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

type DueInfo struct {
	Label   string
	Display string
	Overdue bool
}

// String renders the label the way the list shows it, e.g. "Yesterday (Jun 14)".
func (d DueInfo) String() string {
	if d.Display == "" {
		return d.Label
	}
	return fmt.Sprintf("%s (%s)", d.Label, d.Display)
}

func DueLabel(due *model.Date, today model.Date, completed bool) DueInfo {
	if due == nil {
		return DueInfo{Label: "No due date"}
	}

	info := DueInfo{Display: due.Display()}
	days := due.DaysSince(today)

	switch {
	case days == 0:
		info.Label = "Today"
	case days == 1:
		info.Label = "Tomorrow"
	case days == -1:
		info.Label = "Yesterday"
	case days < 0:
		info.Label = fmt.Sprintf("%d days ago", -days)
	default:
		info.Label = fmt.Sprintf("In %d days", days)
	}
	info.Overdue = days < 0 && !completed
	return info
}
