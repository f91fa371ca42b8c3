package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"rhodes-todo/app"
	"rhodes-todo/ui"
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	title := ui.Title.Render(ui.IconOrder + " Rhodes Island")
	summary := fmt.Sprintf("  %s %s  %s %s%d",
		ui.Muted.Render("date"), m.today,
		ui.Muted.Render("balance"), ui.IconPoints, m.svc.Points())
	if d := ui.Delta(m.delta); d != "" {
		summary += " " + d
	}
	if n := len(m.svc.Overdue(m.today)); n > 0 {
		summary += "  " + ui.Bad.Render(fmt.Sprintf("%s%d overdue", ui.IconPenalty, n))
	}
	if m.svc.BgmEnabled() {
		summary += "  " + ui.Muted.Render("♪")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left, title, summary)

	viewW := m.viewportWidth()
	const paneGap = 1
	outerPaneW := viewW - 2
	if outerPaneW < 20 {
		outerPaneW = viewW
	}

	panelH := max(m.height-5, 8)
	innerPaneH := max(panelH-2, 6)

	leftW, rightW := m.paneWidths(outerPaneW, paneGap)
	split := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderNavPanel(leftW, innerPaneH),
		ui.Muted.Render("│"),
		m.renderTasksPanel(rightW, innerPaneH),
	)

	frameColor := lipgloss.Color("240")
	if m.mode == modeNormal {
		frameColor = lipgloss.Color("39")
	}
	panes := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(outerPaneW).
		Height(panelH).
		Render(split)

	statusStyle := ui.Good
	if m.statusErr {
		statusStyle = ui.Bad
	}
	rightHint := "? keys"
	if m.showHelp {
		rightHint = "esc/? close"
	}
	footer := m.renderFooter(m.status, statusStyle, rightHint)

	prompt := ""
	switch m.mode {
	case modeAddTask:
		prompt = "New order (text +points !): " + m.input.View()
	case modeAddCategory:
		prompt = "New category: " + m.input.View()
	case modeConfirmDelete:
		prompt = fmt.Sprintf("Delete order %q? [y/N]", m.confirmName)
	}

	if m.showHelp {
		popupW := min(max(viewW-8, 40), 80)
		panes = lipgloss.Place(viewW, panelH, lipgloss.Center, lipgloss.Center, m.renderHelpOverlay(popupW))
	}

	parts := []string{header, panes, footer}
	if prompt != "" && !m.showHelp {
		parts = append(parts, ui.Gold.Width(viewW).Render(prompt))
	}
	return strings.Join(parts, "\n")
}

// viewportWidth leaves the last column free so the right border never wraps.
func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

// paneWidths splits total between the filter pane and the order pane.
func (m *Model) paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 20, 30
	}
	gap = max(gap, 0)

	const minLeft, minRight = 18, 30
	if total < minLeft+minRight+gap {
		left := max(total/3, 12)
		right := total - left - gap
		if right < 12 {
			right = 12
			left = max(total-right-gap, 10)
		}
		return left, right
	}

	left := clamp(total/4, 20, 30)
	right := total - left - gap
	if right < minRight {
		right = minRight
		left = total - right - gap
	}
	if left < minLeft {
		left = minLeft
		right = total - left - gap
	}
	return left, right
}

func (m *Model) renderFooter(statusText string, statusStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	right := strings.TrimSpace(rightHint)
	if left == "" {
		left = "Ready"
	}

	leftW := utf8.RuneCountInString(left)
	rightW := utf8.RuneCountInString(right)
	width := m.viewportWidth()

	if leftW+rightW+1 > width {
		left = truncateRunes(left, max(width-rightW-1, 8))
		leftW = utf8.RuneCountInString(left)
	}
	padding := max(width-leftW-rightW, 1)

	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + ui.Muted.Render(right)
	return lipgloss.NewStyle().Width(width).Render(line)
}

func (m *Model) renderHelpOverlay(width int) string {
	rows := []string{
		ui.H2.Render("Keys"),
		"",
		ui.Key.Render("Board"),
		"  tab focus • j/k move • [ ] previous/next day • s sweep",
		"  g headhunt • p BGM • ? keys • q quit",
		"",
		ui.Key.Render("Filters"),
		"  j/k select filter or category • a new category",
		"",
		ui.Key.Render("Orders"),
		"  a issue (text +points !) • x complete/reopen",
		"  space complete next subtask • d delete • H hide completed",
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("244")).
		Padding(1, 2)
	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m *Model) renderNavPanel(width, height int) string {
	entries := m.navEntries()
	lines := make([]string, 0, len(entries)+3)
	lines = append(lines, panelTitleStyled("Filters", m.focus == focusNav))
	for i, e := range entries {
		if i == len(app.TimeFilters) {
			lines = append(lines, "", panelTitleStyled("Categories", false))
		}
		cursor := " "
		if i == m.navCursor {
			cursor = "▸"
		}
		line := truncateRunes(cursor+" "+e.label, width)
		if i == m.navCursor {
			style := lipgloss.NewStyle().Bold(true)
			if m.focus == focusNav {
				style = style.Foreground(lipgloss.Color("229"))
			}
			line = style.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTasksPanel(width, height int) string {
	title := filterLabel(m.filter)
	if m.category != "" {
		title = m.svc.CategoryName(m.category)
	}
	tasks := m.visibleTasks()

	lines := make([]string, 0, len(tasks)+4)
	lines = append(lines, panelTitleStyled("Orders: "+title, m.focus == focusTasks))
	if len(tasks) == 0 {
		lines = append(lines, ui.Muted.Render("No orders here. Press 'a' to issue one."))
		return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
	}

	grouped := m.filter == app.FilterAll && m.category == ""
	lastGroup := ""
	for i, t := range tasks {
		category := m.svc.CategoryName(t.CategoryID)
		if grouped {
			group := category
			if group == "" {
				group = "Unassigned"
			}
			if i == 0 || group != lastGroup {
				lines = append(lines, ui.H2.Render(group))
				lastGroup = group
			}
			category = ""
		} else if m.category != "" {
			category = ""
		}

		cursor := "  "
		if i == m.taskCursor {
			cursor = "▸ "
			if m.focus == focusTasks {
				cursor = ui.Key.Render("▸ ")
			}
		}
		lines = append(lines, cursor+ui.TaskLine(t, m.today, category))
		if i == m.taskCursor {
			for _, sub := range t.Subtasks {
				mark := ui.IconOpen
				if sub.Completed {
					mark = ui.Good.Render(ui.IconDone)
				}
				row := "    " + mark + " " + sub.Text
				if sub.Points > 0 {
					row += " " + ui.Gold.Render(fmt.Sprintf("%s%d", ui.IconPoints, sub.Points))
				}
				lines = append(lines, row)
			}
		}
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func panelTitleStyled(title string, active bool) string {
	base := lipgloss.NewStyle().Bold(true)
	if !active {
		return base.Render(title)
	}
	text := base.Foreground(lipgloss.Color("229")).Render(title)
	marker := ui.Good.Render("*")
	return lipgloss.JoinHorizontal(lipgloss.Left, text, " ", marker)
}
