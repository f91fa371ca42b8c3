// Package tui is the interactive Rhodes Island terminal board.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rhodes-todo/app"
	"rhodes-todo/model"
	"rhodes-todo/store"
)

const (
	saveTimeout = 5 * time.Second
	deltaTTL    = 2 * time.Second
)

// Options configures a board session.
type Options struct {
	Service   *app.Service
	Backend   store.Backend
	Today     model.Date
	GachaCost int
	Logger    *slog.Logger
	// Status is shown in the footer until the first action.
	Status string
}

// Run blocks until the user quits the board or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := NewModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("board: %w", err)
	}
	return nil
}

type focusPane int

const (
	focusNav focusPane = iota
	focusTasks
)

func (f focusPane) String() string {
	if f == focusTasks {
		return "orders"
	}
	return "filters"
}

type uiMode int

const (
	modeNormal uiMode = iota
	modeAddTask
	modeAddCategory
	modeConfirmDelete
)

// navEntry is one row of the left pane: a time filter or a category.
type navEntry struct {
	filter     app.TimeFilter
	categoryID string
	label      string
}

type clearDeltaMsg struct{ seq int }

type Model struct {
	ctx     context.Context
	svc     *app.Service
	backend store.Backend
	log     *slog.Logger

	today     model.Date
	gachaCost int

	focus      focusPane
	mode       uiMode
	navCursor  int
	taskCursor int
	input      textinput.Model

	filter   app.TimeFilter
	category string

	confirmID   string
	confirmName string

	showHelp bool

	status    string
	statusErr bool

	delta    int
	deltaSeq int

	// synced is what the backend held when the board last read or wrote it.
	synced slotDigest

	width  int
	height int
}

func NewModel(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	today := opts.Today
	if today.IsZero() {
		today = model.DateOf(time.Now())
	}
	status := strings.TrimSpace(opts.Status)
	if status == "" {
		status = "Ready"
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	m := &Model{
		ctx:       ctx,
		svc:       opts.Service,
		backend:   opts.Backend,
		log:       logger,
		today:     today,
		gachaCost: opts.GachaCost,
		focus:     focusTasks,
		filter:    app.FilterToday,
		input:     ti,
		status:    status,
	}
	m.synced = m.readDigest()
	m.ensureSelection()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case clearDeltaMsg:
		if msg.seq == m.deltaSeq {
			m.delta = 0
		}
	case tea.KeyMsg:
		switch m.mode {
		case modeAddTask, modeAddCategory:
			return m, m.updateInputMode(msg)
		case modeConfirmDelete:
			m.updateConfirmMode(msg)
		default:
			quit, cmd := m.updateNormalMode(msg)
			if quit {
				return m, tea.Quit
			}
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) (bool, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "ctrl+c", "q":
		return true, nil
	case "tab":
		if m.focus == focusNav {
			m.focus = focusTasks
		} else {
			m.focus = focusNav
		}
		m.setStatus("Focus on "+m.focus.String(), false)
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "a":
		cmd = m.startAdd()
	case "x", "enter":
		if m.focus == focusTasks {
			cmd = m.toggleTask()
		}
	case " ":
		cmd = m.toggleFirstSubtask()
	case "d":
		m.startDeleteConfirm()
	case "[":
		cmd = m.shiftDate(-1)
	case "]":
		cmd = m.shiftDate(1)
	case "s":
		cmd = m.sweep("Sweep")
	case "g":
		cmd = m.gacha()
	case "H":
		m.refresh()
		if n := m.svc.HideCompleted(); n > 0 {
			m.persist(fmt.Sprintf("%d completed order(s) hidden", n))
		} else {
			m.setStatus("No completed orders to hide", false)
		}
	case "p":
		m.refresh()
		m.svc.SetBgmEnabled(!m.svc.BgmEnabled())
		if m.svc.BgmEnabled() {
			m.persist("BGM on")
		} else {
			m.persist("BGM off")
		}
	case "?":
		m.showHelp = !m.showHelp
	case "esc":
		m.showHelp = false
	}
	m.ensureSelection()
	return false, cmd
}

func (m *Model) updateInputMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeInput()
		m.setStatus("Cancelled", false)
		return nil
	case "enter":
		m.refresh()
		m.applyInput()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.refresh()
		m.confirmDelete()
	case "n", "esc", "enter":
		m.mode = modeNormal
		m.confirmID = ""
		m.confirmName = ""
		m.setStatus("Cancelled", false)
	}
}

func (m *Model) applyInput() {
	text := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeAddTask:
		in := parseTaskInput(text)
		if in.Text == "" {
			m.setStatus("Order text cannot be empty", true)
			return
		}
		in.CategoryID = m.category
		if m.filter != app.FilterAll {
			in.DueDate = m.today
		}
		task, err := m.svc.CreateTask(in)
		if err != nil {
			m.setStatus("Create failed: "+err.Error(), true)
			return
		}
		m.closeInput()
		m.taskCursor = m.indexOfTask(task.ID)
		m.persist("Order issued")
	case modeAddCategory:
		if text == "" {
			m.setStatus("Category name cannot be empty", true)
			return
		}
		c, err := m.svc.AddCategory(text)
		if err != nil {
			m.setStatus("Create failed: "+err.Error(), true)
			return
		}
		m.closeInput()
		for i, e := range m.navEntries() {
			if e.categoryID == c.ID {
				m.navCursor = i
				m.selectNav()
			}
		}
		m.persist("Category added")
	}
}

// parseTaskInput reads "text [+points] [!]": a trailing +N sets the reward
// and a trailing ! marks the order urgent.
func parseTaskInput(s string) app.CreateTaskInput {
	in := app.CreateTaskInput{Priority: model.PriorityNormal}
	fields := strings.Fields(s)
	for len(fields) > 0 {
		last := fields[len(fields)-1]
		if last == "!" {
			in.Priority = model.PriorityUrgent
		} else if n, err := strconv.Atoi(strings.TrimPrefix(last, "+")); err == nil && strings.HasPrefix(last, "+") && n >= 0 {
			in.Points = n
		} else {
			break
		}
		fields = fields[:len(fields)-1]
	}
	in.Text = strings.Join(fields, " ")
	return in
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusNav {
		entries := m.navEntries()
		m.navCursor = clamp(m.navCursor+delta, 0, len(entries)-1)
		m.selectNav()
		return
	}
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return
	}
	m.taskCursor = clamp(m.taskCursor+delta, 0, len(tasks)-1)
}

func (m *Model) selectNav() {
	entries := m.navEntries()
	if m.navCursor < 0 || m.navCursor >= len(entries) {
		return
	}
	e := entries[m.navCursor]
	if e.categoryID != "" {
		m.filter, m.category = app.FilterAll, e.categoryID
	} else {
		m.filter, m.category = e.filter, ""
	}
	m.taskCursor = 0
}

func (m *Model) startAdd() tea.Cmd {
	m.input.SetValue("")
	if m.focus == focusNav {
		m.mode = modeAddCategory
		m.input.Placeholder = "category name"
	} else {
		m.mode = modeAddTask
		m.input.Placeholder = "Clear 1-7 +50 !"
	}
	return m.input.Focus()
}

func (m *Model) toggleTask() tea.Cmd {
	m.refresh()
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No order selected", true)
		return nil
	}
	res, err := m.svc.ToggleComplete(task.ID, m.today)
	var locked app.LockedError
	switch {
	case errors.As(err, &locked):
		m.setStatus(fmt.Sprintf("Locked until %s", locked.DueDate), true)
		return nil
	case err != nil:
		m.setStatus("Toggle failed: "+err.Error(), true)
		return nil
	}

	msg := "Order reopened"
	if res.Task.Completed {
		msg = "Order complete"
	}
	if res.Spawned != nil {
		msg += fmt.Sprintf(" • next on %s", res.Spawned.DueDate)
	}
	m.persist(withUnlocks(msg, res.Unlocked))
	return m.flashDelta(res.Delta)
}

func (m *Model) toggleFirstSubtask() tea.Cmd {
	m.refresh()
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No order selected", true)
		return nil
	}
	subID := ""
	for _, sub := range task.Subtasks {
		if !sub.Completed {
			subID = sub.ID
			break
		}
	}
	if subID == "" {
		m.setStatus("No open subtasks", false)
		return nil
	}
	res, err := m.svc.ToggleSubtask(task.ID, subID)
	if err != nil {
		m.setStatus("Toggle failed: "+err.Error(), true)
		return nil
	}
	m.persist(withUnlocks("Subtask done: "+res.Subtask.Text, res.Unlocked))
	return m.flashDelta(res.Delta)
}

func (m *Model) startDeleteConfirm() {
	if m.focus != focusTasks {
		m.setStatus("Delete: switch focus to orders (Tab)", false)
		return
	}
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No order selected", true)
		return
	}
	m.mode = modeConfirmDelete
	m.confirmID = task.ID
	m.confirmName = task.Text
}

func (m *Model) confirmDelete() {
	if err := m.svc.DeleteTask(m.confirmID); err != nil {
		m.setStatus("Delete failed: "+err.Error(), true)
	} else {
		m.persist("Order deleted")
	}
	m.mode = modeNormal
	m.confirmID = ""
	m.confirmName = ""
	m.ensureSelection()
}

// shiftDate moves the board's current date and sweeps against it.
func (m *Model) shiftDate(days int) tea.Cmd {
	m.today = m.today.AddDays(days)
	m.taskCursor = 0
	return m.sweep("System date " + string(m.today))
}

func (m *Model) sweep(label string) tea.Cmd {
	m.refresh()
	res := m.svc.SweepOverdue(m.today)
	if len(res.Penalized) == 0 {
		m.setStatus(label+" • no overdue orders", false)
		return nil
	}
	m.persist(fmt.Sprintf("%s • %d overdue order(s) penalized", label, len(res.Penalized)))
	return m.flashDelta(res.Delta)
}

func (m *Model) gacha() tea.Cmd {
	m.refresh()
	res, err := m.svc.Gacha(m.gachaCost)
	var short app.InsufficientFundsError
	switch {
	case errors.As(err, &short):
		m.setStatus(fmt.Sprintf("Need %d points for headhunting (balance %d)", short.Cost, short.Balance), true)
		return nil
	case err != nil:
		m.setStatus("Headhunting failed: "+err.Error(), true)
		return nil
	}
	if res.NoStock {
		m.persist("Headhunting: the store is empty")
	} else {
		m.persist(fmt.Sprintf("Headhunting: %s %s", strings.Repeat("★", res.Rarity), res.Item.Name))
	}
	return m.flashDelta(res.Delta)
}

// flashDelta shows a points change in the header until deltaTTL passes.
func (m *Model) flashDelta(d int) tea.Cmd {
	if d == 0 {
		return nil
	}
	m.delta = d
	m.deltaSeq++
	seq := m.deltaSeq
	return tea.Tick(deltaTTL, func(time.Time) tea.Msg { return clearDeltaMsg{seq: seq} })
}

func withUnlocks(msg string, unlocked []model.Achievement) string {
	for _, a := range unlocked {
		msg += " • ★ " + a.Title
	}
	return msg
}

func (m *Model) persist(success string) {
	if m.backend != nil {
		ctx, cancel := context.WithTimeout(m.ctx, saveTimeout)
		defer cancel()
		state := m.svc.State()
		if err := store.Save(ctx, m.backend, state); err != nil {
			m.log.Error("board save", "err", err)
			m.setStatus("Change applied, but saving failed: "+err.Error(), true)
			return
		}
		if slots, err := store.EncodeSlots(state); err == nil {
			m.synced = digestSlots(slots)
		}
	}
	m.ensureSelection()
	m.setStatus(success, false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) ensureSelection() {
	m.navCursor = clamp(m.navCursor, 0, len(m.navEntries())-1)
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		m.taskCursor = 0
		return
	}
	m.taskCursor = clamp(m.taskCursor, 0, len(tasks)-1)
}

func (m *Model) navEntries() []navEntry {
	cats := m.svc.Categories()
	out := make([]navEntry, 0, len(app.TimeFilters)+len(cats))
	for _, f := range app.TimeFilters {
		out = append(out, navEntry{filter: f, label: filterLabel(f)})
	}
	for _, c := range cats {
		out = append(out, navEntry{categoryID: c.ID, label: c.Name})
	}
	return out
}

// visibleTasks returns the tasks in display order; under ALL they follow
// their category groups.
func (m *Model) visibleTasks() []model.Task {
	tasks := m.svc.FilterTasks(m.filter, m.today)
	if m.category != "" {
		out := tasks[:0]
		for _, t := range tasks {
			if t.CategoryID == m.category {
				out = append(out, t)
			}
		}
		return out
	}
	if m.filter != app.FilterAll {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, g := range m.svc.GroupByCategory(tasks) {
		out = append(out, g.Tasks...)
	}
	return out
}

func (m *Model) selectedTask() (model.Task, bool) {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	if m.taskCursor < 0 || m.taskCursor >= len(tasks) {
		m.taskCursor = 0
	}
	return tasks[m.taskCursor], true
}

func (m *Model) indexOfTask(taskID string) int {
	for i, t := range m.visibleTasks() {
		if t.ID == taskID {
			return i
		}
	}
	return 0
}

func filterLabel(f app.TimeFilter) string {
	switch f {
	case app.FilterToday:
		return "Today"
	case app.FilterWeek:
		return "This week"
	case app.FilterMonth:
		return "This month"
	case app.FilterIncomplete:
		return "Incomplete"
	default:
		return "All"
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
