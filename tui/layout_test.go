package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"rhodes-todo/app"
	"rhodes-todo/model"
)

func newLayoutModel(width int) *Model {
	m := NewModel(context.Background(), Options{Service: app.NewService(model.NewState()), Today: "2025-03-10"})
	m.width = width
	m.height = 30
	return m
}

func TestPaneWidthsPreferNarrowLeftPanel(t *testing.T) {
	m := newLayoutModel(120)

	viewW := m.viewportWidth()
	left, right := m.paneWidths(viewW, 1)
	if left >= right {
		t.Fatalf("expected left panel to be narrower than right (left=%d right=%d)", left, right)
	}
	if left+right+1 != viewW {
		t.Fatalf("expected pane widths to fill available width=%d, got left=%d right=%d", viewW, left, right)
	}
}

func TestPaneWidthsSmallTerminalStillValid(t *testing.T) {
	m := newLayoutModel(48)

	viewW := m.viewportWidth()
	left, right := m.paneWidths(viewW, 1)
	if left < 10 || right < 12 {
		t.Fatalf("expected minimum usable pane widths, got left=%d right=%d", left, right)
	}
	if left+right+1 > viewW {
		t.Fatalf("expected panes not to exceed viewport width=%d, got left=%d right=%d", viewW, left, right)
	}
}

func TestFooterTruncatesLongStatus(t *testing.T) {
	m := newLayoutModel(40)
	footer := m.renderFooter(strings.Repeat("overdue ", 20), lipgloss.NewStyle(), "? keys")
	if !strings.Contains(footer, "…") {
		t.Fatalf("expected truncated status, got %q", footer)
	}
	if !strings.Contains(footer, "? keys") {
		t.Fatalf("expected hint to survive truncation, got %q", footer)
	}
}

func TestViewShowsHeaderAndFilters(t *testing.T) {
	m := newLayoutModel(100)
	out := m.View()
	for _, want := range []string{"Rhodes Island", "2025-03-10", "Today", "Daily Drills", "No orders here"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}
