// Package tui is an interactive terminal front end over app.App.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/nexustask/internal/app"
	"github.com/BuzzLyutic/nexustask/internal/model"
	"github.com/BuzzLyutic/nexustask/internal/render"
	"github.com/BuzzLyutic/nexustask/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeAdd
	modeConfirm
)

// changedMsg is sent whenever the app reports that the visible list may
// have changed.
type changedMsg struct{}

type errMsg struct{ err error }

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	filterStyle = lipgloss.NewStyle().Underline(true)
)

type Model struct {
	app     *app.App
	changes chan struct{}

	mode   mode
	search textinput.Model
	title  textinput.Model
	cursor int
	target view.Item
	items  []view.Item
	stats  view.Stats
	err    error
}

// New builds the model and subscribes to app changes. The returned func
// drops the subscription.
func New(a *app.App) (*Model, func()) {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.Prompt = "/ "
	search.SetValue(a.Search())

	title := textinput.New()
	title.Placeholder = "Title  cat:work  due:2024-06-20"
	title.Prompt = "+ "
	title.CharLimit = 200

	m := &Model{
		app:     a,
		changes: make(chan struct{}, 1),
		search:  search,
		title:   title,
	}
	unsubscribe := a.OnChange(func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.refresh()
	return m, unsubscribe
}

func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return changedMsg{}
	}
}

func (m *Model) refresh() {
	p := m.app.Projection()
	m.items = p.Items
	m.stats = p.Stats
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh()
		return m, m.waitForChange()
	case errMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeAdd:
			return m.updateAdd(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "a":
		m.mode = modeAdd
		m.title.SetValue("")
		return m, m.title.Focus()
	case "f", "tab":
		return m, m.cycleFilter()
	case " ", "x", "enter":
		if item, ok := m.selected(); ok {
			return m, m.toggle(item.Task)
		}
	case "d", "delete":
		if item, ok := m.selected(); ok {
			m.mode = modeConfirm
			m.target = item
		}
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = modeList
		m.search.Blur()
		m.app.FlushSearch()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.app.SetSearch(m.search.Value())
	return m, cmd
}

func (m *Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.title.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		input := strings.TrimSpace(m.title.Value())
		m.mode = modeList
		m.title.Blur()
		if input == "" {
			return m, nil
		}
		return m, m.add(input)
	}

	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return m, cmd
}

// updateConfirm deletes the target on y and cancels on anything else.
func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.target
	m.mode = modeList
	m.target = view.Item{}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y", "Y":
		return m, m.remove(target.Task.ID)
	}
	return m, nil
}

func (m *Model) selected() (view.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return view.Item{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) cycleFilter() tea.Cmd {
	filters := view.Filters()
	current := m.app.Filter()
	next := filters[0]
	for i, f := range filters {
		if f == current {
			next = filters[(i+1)%len(filters)]
			break
		}
	}
	return m.run(func(context.Context) error { return m.app.SetFilter(next) })
}

func (m *Model) toggle(t model.Task) tea.Cmd {
	return m.run(func(ctx context.Context) error {
		_, err := m.app.SetCompleted(ctx, t.ID, !t.Completed)
		return err
	})
}

func (m *Model) remove(id int64) tea.Cmd {
	return m.run(func(ctx context.Context) error { return m.app.Delete(ctx, id) })
}

func (m *Model) add(input string) tea.Cmd {
	return m.run(func(ctx context.Context) error {
		d, err := parseDraft(input)
		if err != nil {
			return err
		}
		_, err = m.app.Create(ctx, d)
		return err
	})
}

// parseDraft reads "cat:" and "due:" words out of the add input; the
// remaining words form the title.
func parseDraft(input string) (model.Draft, error) {
	var (
		d     model.Draft
		title []string
	)
	for _, word := range strings.Fields(input) {
		switch {
		case strings.HasPrefix(word, "cat:"):
			d.Category = model.Category(strings.ToLower(strings.TrimPrefix(word, "cat:")))
		case strings.HasPrefix(word, "due:"):
			due, err := model.ParseDate(strings.TrimPrefix(word, "due:"))
			if err != nil {
				return model.Draft{}, fmt.Errorf("invalid due date: %w", err)
			}
			d.DueDate = &due
		default:
			title = append(title, word)
		}
	}
	d.Title = strings.Join(title, " ")
	return d, nil
}

func (m *Model) run(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("NexusTask"))
	b.WriteString("  ")
	b.WriteString(render.Status(m.app.Status()))
	b.WriteString("\n")
	b.WriteString(render.Stats(m.stats))
	b.WriteString("\n\n")

	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View())
	case modeAdd:
		b.WriteString(m.title.View())
	case modeConfirm:
		b.WriteString(errStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.target.Task.Title)))
	default:
		if s := m.app.Search(); s != "" {
			b.WriteString(fmt.Sprintf("search: %q  ", s))
		}
		b.WriteString("filter: " + filterStyle.Render(m.app.Filter()))
	}
	b.WriteString("\n\n")

	b.WriteString(render.List(m.items, render.Options{
		Cursor:   m.cursor,
		HasTasks: m.stats.Total > 0,
	}))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ move · space toggle · a add · d delete · / search · f filter · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, a *app.App) error {
	m, unsubscribe := New(a)
	defer unsubscribe()

	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
