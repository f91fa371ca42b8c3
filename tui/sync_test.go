package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rhodes-todo/app"
	"rhodes-todo/model"
	"rhodes-todo/store"
)

func taskTexts(tasks []model.Task) map[string]bool {
	out := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		out[t.Text] = true
	}
	return out
}

func TestBoardKeepsWritesFromAnotherSession(t *testing.T) {
	m, backend := newBoard(t)
	press(m, "a")
	typeText(m, "Board order")
	press(m, "enter")

	ctx := context.Background()
	loaded, _, err := store.Load(ctx, backend)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	other := app.NewService(loaded, app.WithClock(func() time.Time { return time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC) }))
	if _, err := other.CreateTask(app.CreateTaskInput{Text: "Terminal order", Points: 30}); err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if err := store.Save(ctx, backend, other.State()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	press(m, "a")
	typeText(m, "Second board order")
	press(m, "enter")

	saved, _, err := store.Load(ctx, backend)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	got := taskTexts(saved.Tasks)
	for _, want := range []string{"Board order", "Terminal order", "Second board order"} {
		if !got[want] {
			t.Fatalf("expected %q to survive, saved tasks: %+v", want, saved.Tasks)
		}
	}
	if len(m.svc.Tasks()) != 3 {
		t.Fatalf("expected the board to show 3 orders, got %d", len(m.svc.Tasks()))
	}
}

func TestBoardDoesNotReloadItsOwnWrites(t *testing.T) {
	backend := store.NewFileBackend(filepath.Join(t.TempDir(), "state.json"))
	defer backend.Close()
	svc := app.NewService(model.NewState(), app.WithClock(func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }))
	m := NewModel(context.Background(), Options{Service: svc, Backend: backend, Today: boardDay, GachaCost: 600})
	m.width, m.height = 100, 30

	press(m, "a")
	typeText(m, "Saved order")
	press(m, "enter")

	// Written to the service only; a reload would drop it.
	mustCreate(t, m, app.CreateTaskInput{Text: "Unsaved order"})
	m.refresh()

	if got := taskTexts(m.svc.Tasks()); !got["Saved order"] || !got["Unsaved order"] {
		t.Fatalf("board reloaded its own write: %+v", m.svc.Tasks())
	}
}
