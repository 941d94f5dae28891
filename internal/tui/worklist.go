// Package tui is the interactive work items page.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/fintrack/internal/model"
	"github.com/idilsaglam/fintrack/internal/view"
)

// Editor creates and updates work items from the inline inputs.
type Editor interface {
	Create(ctx context.Context, in model.NewWorkItem) (model.WorkItem, error)
	Update(ctx context.Context, id int64, patch model.WorkItemPatch) (model.WorkItem, error)
}

// stateMsg carries a finished fetch; the model re-reads the controller.
type stateMsg struct{ state view.State }

// noticeMsg reports a failed add or edit.
type noticeMsg struct{ text string }

// listItem adapts a WorkItem to bubbles/list.Item.
type listItem struct{ model.WorkItem }

func (i listItem) Title() string       { return i.WorkItem.Title }
func (i listItem) Description() string { return i.WorkItem.Description }
func (i listItem) FilterValue() string { return i.WorkItem.Title }

// itemDelegate renders a work item card on three lines.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 3 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	title := titleStyle.Render(it.WorkItem.Title)
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	desc := it.WorkItem.Description
	if desc == "" {
		desc = "(no description)"
	}
	updated := "never"
	if !it.UpdatedAt.IsZero() {
		updated = it.UpdatedAt.Local().Format("2006-01-02")
	}
	fmt.Fprintln(w, prefix+title)
	fmt.Fprintln(w, "  "+mutedStyle.Render(desc))
	fmt.Fprint(w, "  "+statusBadge(it.Status)+" "+priorityBadge(it.Priority)+"  "+
		mutedStyle.Render("Last updated: "+updated))
}

var (
	refreshKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	deleteKey  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	addKey     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
)

// Model is the bubbletea model of the work items page. Rendering always
// reads the controller, which is safe to query from any goroutine.
type Model struct {
	ctx    context.Context
	ctrl   *view.TaskList
	editor Editor

	list    list.Model
	spinner spinner.Model

	// Inline add / edit share one text input
	ti       textinput.Model
	adding   bool
	editing  bool
	editID   int64
	inputErr string
	notice   string

	width, height int
}

// New builds the page. Nothing is fetched until Init.
func New(ctx context.Context, ctrl *view.TaskList, editor Editor) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{refreshKey, deleteKey, addKey, editKey} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{refreshKey, deleteKey, addKey, editKey} }

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		editor:  editor,
		list:    l,
		spinner: sp,
		ti:      ti,
	}
	m.resize(80, 24)
	return m
}

// Run starts the full-screen program and closes the controller on exit.
func Run(ctx context.Context, ctrl *view.TaskList, editor Editor) error {
	defer ctrl.Close()
	_, err := tea.NewProgram(New(ctx, ctrl, editor), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Init is the page mount: it starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	f := m.ctrl.Start()
	ctx := m.ctx
	return func() tea.Msg { return stateMsg{state: f(ctx)} }
}

func (m Model) remove(id int64) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		st, _ := ctrl.Delete(ctx, id)
		return stateMsg{state: st}
	}
}

func (m Model) save(title string) tea.Cmd {
	ctrl, ctx, editor := m.ctrl, m.ctx, m.editor
	editing, id := m.editing, m.editID
	return func() tea.Msg {
		var err error
		if editing {
			_, err = editor.Update(ctx, id, model.WorkItemPatch{Title: &title})
		} else {
			_, err = editor.Create(ctx, model.NewWorkItem{
				Title:    title,
				Status:   model.StatusPending,
				Priority: model.PriorityMedium,
			})
		}
		if err != nil {
			return noticeMsg{text: "Could not save task: " + err.Error()}
		}
		return stateMsg{state: ctrl.Refresh(ctx)}
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	listHeight := h - 8
	if m.adding || m.editing {
		listHeight -= 3
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(w-4, listHeight)
}

func (m *Model) sync(st view.State) {
	items := make([]list.Item, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, listItem{it})
	}
	m.list.SetItems(items)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case stateMsg:
		m.sync(m.ctrl.State())
		return m, nil
	case noticeMsg:
		m.notice = msg.text
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.adding || m.editing {
		return m.updateInput(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		st := m.ctrl.State()
		switch km.String() {
		case "q", "esc", "ctrl+c":
			m.ctrl.Close()
			return m, tea.Quit
		case "r":
			if st.Loading() {
				return m, nil
			}
			m.notice = ""
			return m, m.fetch()
		case "d":
			if it, ok := m.list.SelectedItem().(listItem); ok && st.Phase == view.Populated {
				m.notice = ""
				return m, m.remove(it.ID)
			}
			return m, nil
		case "a":
			m.adding = true
			m.inputErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "New task title..."
			m.resize(m.width, m.height)
			return m, m.ti.Focus()
		case "e":
			if it, ok := m.list.SelectedItem().(listItem); ok && st.Phase == view.Populated {
				m.editing = true
				m.editID = it.ID
				m.inputErr = ""
				m.ti.SetValue(it.WorkItem.Title)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit task title..."
				m.resize(m.width, m.height)
				return m, m.ti.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.inputErr = "Title cannot be empty"
				return m, nil
			}
			cmd := m.save(title)
			m.closeInput()
			return m, cmd
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding, m.editing = false, false
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize(m.width, m.height)
}

func (m Model) View() string {
	st := m.ctrl.State()

	header := titleStyle.Render("Work Items")
	if st.Loading() {
		header += "  " + mutedStyle.Render("Loading...")
	} else {
		header += "  " + mutedStyle.Render("r: Refresh")
	}

	var body string
	switch st.Phase {
	case view.Failed:
		body = bannerStyle.Render(errorStyle.Render("Error:") + " " + st.Err)
	case view.Loading:
		body = "\n" + m.spinner.View() + " Loading tasks...\n"
	case view.Populated:
		body = m.list.View()
	default:
		body = "\n" + mutedStyle.Render("No tasks found") + "\n"
	}

	parts := []string{header}
	if notice := firstNonEmpty(st.Notice, m.notice); notice != "" {
		parts = append(parts, noticeStyle.Render(notice))
	}
	parts = append(parts, "", body)

	if m.adding || m.editing {
		title := "Add new task"
		if m.editing {
			title = fmt.Sprintf("Edit task %d", m.editID)
		}
		if m.inputErr != "" {
			title += " - " + errorStyle.Render(m.inputErr)
		}
		parts = append(parts, inputStyle.Render(title+"\n"+m.ti.View()))
	}
	return frameStyle.Render(strings.Join(parts, "\n"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
