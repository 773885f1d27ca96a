// Package render turns a projection into terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/nexustask/internal/model"
	"github.com/BuzzLyutic/nexustask/internal/syncer"
	"github.com/BuzzLyutic/nexustask/internal/view"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	doneTitleStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245"))
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	idStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	onlineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	categoryColors = map[model.Category]lipgloss.Color{
		model.CategoryPersonal: lipgloss.Color("141"),
		model.CategoryWork:     lipgloss.Color("39"),
		model.CategoryShopping: lipgloss.Color("220"),
		model.CategoryHealth:   lipgloss.Color("42"),
		model.CategoryOther:    lipgloss.Color("250"),
	}
)

// Options controls list rendering. Cursor is the index of the highlighted
// item, or -1 for none.
type Options struct {
	Cursor   int
	ShowIDs  bool
	HasTasks bool
}

// List renders the visible items, or an empty-state hint.
func List(items []view.Item, opts Options) string {
	if len(items) == 0 {
		if !opts.HasTasks {
			return emptyStyle.Render("No tasks yet. Add your first task with `nexustask add`.")
		}
		return emptyStyle.Render("No tasks found. Try adjusting your search or filter.")
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Item(item, i == opts.Cursor, opts.ShowIDs))
	}
	return b.String()
}

func Item(item view.Item, selected, showID bool) string {
	t := item.Task

	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	prefix := "  "
	if selected {
		prefix = cursorStyle.Render("> ")
	}

	title := titleStyle.Render(t.Title)
	if t.Completed {
		title = doneTitleStyle.Render(t.Title)
	}

	due := dueStyle.Render(item.Due.String())
	if item.Due.Overdue {
		due = overdueStyle.Render(item.Due.String())
	}

	line := fmt.Sprintf("%s%s %s %s  %s", prefix, check, title, Category(t.Category), due)
	if showID {
		line += "  " + idStyle.Render(fmt.Sprintf("#%d", t.ID))
	}

	desc := t.Description
	if desc == "" {
		desc = "No description"
	}
	return line + "\n      " + descStyle.Render(desc)
}

func Category(c model.Category) string {
	name := string(c)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return lipgloss.NewStyle().
		Foreground(categoryColors[c]).
		Render("[" + name + "]")
}

func Stats(st view.Stats) string {
	overdue := fmt.Sprintf("%d overdue", st.Overdue)
	if st.Overdue > 0 {
		overdue = overdueStyle.Render(overdue)
	}
	return fmt.Sprintf("%d total · %d completed · %d pending · %s",
		st.Total, st.Completed, st.Pending, overdue)
}

func Status(s syncer.Status) string {
	switch s {
	case syncer.StatusOnline:
		return onlineStyle.Render("● remote online")
	case syncer.StatusOffline:
		return offlineStyle.Render("● remote offline - using local storage")
	default:
		return idStyle.Render("● remote status unknown")
	}
}
