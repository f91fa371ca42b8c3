package app

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"rhodes-todo/model"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

const today = model.Date("2025-03-10")

func newTestService(state model.AppState) *Service {
	return NewService(state,
		WithClock(func() time.Time { return fixedNow }),
		WithRand(rand.New(rand.NewSource(7))),
	)
}

func mustCreateTask(t *testing.T, svc *Service, in CreateTaskInput) model.Task {
	t.Helper()
	tk, err := svc.CreateTask(in)
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	return tk
}

func mustToggle(t *testing.T, svc *Service, id string, day model.Date) ToggleResult {
	t.Helper()
	res, err := svc.ToggleComplete(id, day)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	return res
}

func TestCreateTaskDefaultsAndValidation(t *testing.T) {
	svc := newTestService(model.NewState())

	if _, err := svc.CreateTask(CreateTaskInput{Text: "   "}); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}

	first := mustCreateTask(t, svc, CreateTaskInput{Text: "Clear 1-7", Points: -5, Priority: "LOW"})
	second := mustCreateTask(t, svc, CreateTaskInput{
		Text:     "Annihilation",
		Points:   120,
		Subtasks: []model.SubtaskBlueprint{{Text: "Wave 1", Points: 10}, {Text: " "}},
	})

	if first.Points != 0 || first.Priority != model.PriorityNormal || first.Completed {
		t.Fatalf("unexpected defaults: %+v", first)
	}
	if first.Timestamp != fixedNow.UnixMilli() {
		t.Fatalf("expected timestamp %d, got %d", fixedNow.UnixMilli(), first.Timestamp)
	}
	if len(second.Subtasks) != 1 || second.Subtasks[0].ID == "" || second.Subtasks[0].Points != 10 {
		t.Fatalf("unexpected subtasks: %+v", second.Subtasks)
	}
	tasks := svc.Tasks()
	if len(tasks) != 2 || tasks[0].ID != second.ID || tasks[1].ID != first.ID {
		t.Fatalf("expected newest task first, got %+v", tasks)
	}
	if svc.Points() != 0 {
		t.Fatalf("creating tasks must not touch points, got %d", svc.Points())
	}
}

func TestToggleCompleteSettlesPoints(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "Supply run", Points: 50, DueDate: today})

	res := mustToggle(t, svc, task.ID, today)
	if res.Delta != 50 || svc.Points() != 50 || !res.Task.Completed {
		t.Fatalf("unexpected completion result: %+v points=%d", res, svc.Points())
	}

	res = mustToggle(t, svc, task.ID, today)
	if res.Delta != -50 || svc.Points() != 0 || res.Task.Completed {
		t.Fatalf("unexpected reversal result: %+v points=%d", res, svc.Points())
	}
}

func TestReversalFloorsBalanceAtZero(t *testing.T) {
	state := model.NewState()
	state.UserPoints = 30
	state.Tasks = []model.Task{{ID: "t1", Text: "Done early", Completed: true, Points: 50, Priority: model.PriorityNormal}}
	svc := newTestService(state)

	res := mustToggle(t, svc, "t1", today)
	if res.Delta != -30 {
		t.Fatalf("expected applied delta -30, got %d", res.Delta)
	}
	if svc.Points() != 0 {
		t.Fatalf("expected balance 0, got %d", svc.Points())
	}
}

func TestToggleCompleteRejectsLockedTask(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "Future op", Points: 40, DueDate: "2025-03-12"})
	before := svc.State()

	_, err := svc.ToggleComplete(task.ID, today)
	if !errors.Is(err, ErrTaskLocked) {
		t.Fatalf("expected ErrTaskLocked, got %v", err)
	}
	var locked LockedError
	if !errors.As(err, &locked) || locked.DueDate != "2025-03-12" || locked.Today != today {
		t.Fatalf("expected LockedError with dates, got %#v", err)
	}
	if !reflect.DeepEqual(before, svc.State()) {
		t.Fatalf("locked toggle changed state")
	}

	if _, err := svc.ToggleComplete(task.ID, "2025-03-12"); err != nil {
		t.Fatalf("toggle on due date failed: %v", err)
	}
	if _, err := svc.ToggleComplete("missing", today); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestCompletedFutureTaskCanBeReopened(t *testing.T) {
	state := model.NewState()
	state.UserPoints = 40
	state.Tasks = []model.Task{{ID: "t1", Text: "Edited ahead", Completed: true, Points: 40, DueDate: "2025-04-01", Priority: model.PriorityNormal}}
	svc := newTestService(state)

	res := mustToggle(t, svc, "t1", today)
	if res.Task.Completed || svc.Points() != 0 {
		t.Fatalf("expected reopen with debit, got %+v points=%d", res.Task, svc.Points())
	}
}

func TestRecurringTaskSpawnsSingleSuccessor(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{
		Text:            "Weekly Annihilation",
		Points:          100,
		DueDate:         today,
		Frequency:       7,
		RecurrenceLimit: 3,
		Subtasks:        []model.SubtaskBlueprint{{Text: "Chernobog", Points: 20}},
	})
	if _, err := svc.ToggleSubtask(task.ID, task.Subtasks[0].ID); err != nil {
		t.Fatalf("toggle subtask failed: %v", err)
	}

	res := mustToggle(t, svc, task.ID, today)
	if res.Spawned == nil {
		t.Fatalf("expected a successor")
	}
	next := *res.Spawned
	if next.ID == task.ID || next.Completed || next.DueDate != "2025-03-17" || next.RecurrenceLimit != 2 {
		t.Fatalf("unexpected successor: %+v", next)
	}
	if next.HasRecurred || next.Penalized {
		t.Fatalf("successor latches must start clear: %+v", next)
	}
	if len(next.Subtasks) != 1 || next.Subtasks[0].Completed || next.Subtasks[0].ID == task.Subtasks[0].ID {
		t.Fatalf("successor subtasks must be fresh: %+v", next.Subtasks)
	}
	if !res.Task.HasRecurred {
		t.Fatalf("completed task must latch hasRecurred")
	}

	mustToggle(t, svc, task.ID, today)
	again := mustToggle(t, svc, task.ID, today)
	if again.Spawned != nil {
		t.Fatalf("re-completing must not spawn again: %+v", again.Spawned)
	}
	if got := len(svc.Tasks()); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}

	second := mustToggle(t, svc, next.ID, "2025-03-17")
	if second.Spawned == nil || second.Spawned.RecurrenceLimit != 1 || second.Spawned.DueDate != "2025-03-24" {
		t.Fatalf("unexpected second successor: %+v", second.Spawned)
	}
	last := mustToggle(t, svc, second.Spawned.ID, "2025-03-24")
	if last.Spawned != nil {
		t.Fatalf("limit 1 must not spawn, got %+v", last.Spawned)
	}
}

func TestRecurrenceNeedsLimitAboveOne(t *testing.T) {
	svc := newTestService(model.NewState())
	noLimit := mustCreateTask(t, svc, CreateTaskInput{Text: "Daily", Frequency: 1})
	noFreq := mustCreateTask(t, svc, CreateTaskInput{Text: "Once", RecurrenceLimit: 5})

	if res := mustToggle(t, svc, noLimit.ID, today); res.Spawned != nil {
		t.Fatalf("absent limit must not spawn")
	}
	if res := mustToggle(t, svc, noFreq.ID, today); res.Spawned != nil {
		t.Fatalf("zero frequency must not spawn")
	}
}

func TestToggleSubtaskIsIndependentOfParent(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{
		Text:     "Raid",
		Points:   10,
		Subtasks: []model.SubtaskBlueprint{{Text: "Recon", Points: 15}},
	})
	mustToggle(t, svc, task.ID, today)

	res, err := svc.ToggleSubtask(task.ID, task.Subtasks[0].ID)
	if err != nil {
		t.Fatalf("toggle subtask failed: %v", err)
	}
	if res.Delta != 15 || svc.Points() != 25 || !res.Subtask.Completed {
		t.Fatalf("unexpected subtask result: %+v points=%d", res, svc.Points())
	}
	if _, err := svc.ToggleSubtask(task.ID, "missing"); !errors.Is(err, ErrSubtaskNotFound) {
		t.Fatalf("expected ErrSubtaskNotFound, got %v", err)
	}
	if _, err := svc.ToggleSubtask("missing", task.Subtasks[0].ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestAddSubtaskAndDeleteTask(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "Base build"})

	sub, err := svc.AddSubtask(task.ID, "Trading post", 30)
	if err != nil {
		t.Fatalf("add subtask failed: %v", err)
	}
	got, _ := svc.GetTask(task.ID)
	if len(got.Subtasks) != 1 || got.Subtasks[0] != sub || sub.Completed {
		t.Fatalf("unexpected subtasks: %+v", got.Subtasks)
	}
	if _, err := svc.AddSubtask(task.ID, "", 0); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}

	if err := svc.DeleteTask(task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteTask(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestEditTaskNeverSettles(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "Farm", Points: 20, Frequency: 1, RecurrenceLimit: 4})

	text := "Farm CE-5"
	points := 80
	done := true
	res, err := svc.EditTask(task.ID, TaskPatch{Text: &text, Points: &points, Completed: &done})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	edited := res.Task
	if edited.Text != text || edited.Points != 80 || !edited.Completed {
		t.Fatalf("unexpected edit: %+v", edited)
	}
	if svc.Points() != 0 || len(svc.Tasks()) != 1 {
		t.Fatalf("edit must not settle or spawn: points=%d tasks=%d", svc.Points(), len(svc.Tasks()))
	}

	empty := " "
	if _, err := svc.EditTask(task.ID, TaskPatch{Text: &empty}); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}
}

func TestEditTaskReportsUnlocks(t *testing.T) {
	state := model.NewState()
	state.Achievements = []model.Achievement{{ID: "ach_100", Title: "Century", TargetPoints: 100}}
	svc := newTestService(state)
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "Big op", Points: 150})

	hidden := true
	res, err := svc.EditTask(task.ID, TaskPatch{Hidden: &hidden})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if len(res.Unlocked) != 0 {
		t.Fatalf("hiding an open task must not unlock anything: %+v", res.Unlocked)
	}

	done := true
	res, err = svc.EditTask(task.ID, TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if len(res.Unlocked) != 1 || res.Unlocked[0].ID != "ach_100" {
		t.Fatalf("expected ach_100 unlocked, got %+v", res.Unlocked)
	}
	if got := svc.State().NotifiedAchievements; !reflect.DeepEqual(got, []string{"ach_100"}) {
		t.Fatalf("unexpected notified set: %v", got)
	}
	if svc.Points() != 0 {
		t.Fatalf("edit must not settle, balance=%d", svc.Points())
	}

	points := 200
	res, err = svc.EditTask(task.ID, TaskPatch{Points: &points})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if len(res.Unlocked) != 0 {
		t.Fatalf("an achievement unlocks once: %+v", res.Unlocked)
	}
}

func TestBulkDelayShiftsOpenDatedTasks(t *testing.T) {
	svc := newTestService(model.NewState())
	open := mustCreateTask(t, svc, CreateTaskInput{Text: "Open", DueDate: "2025-02-27"})
	undated := mustCreateTask(t, svc, CreateTaskInput{Text: "Undated"})
	done := mustCreateTask(t, svc, CreateTaskInput{Text: "Done", DueDate: today})
	mustToggle(t, svc, done.ID, today)

	n, err := svc.BulkDelay(3)
	if err != nil {
		t.Fatalf("delay failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 task moved, got %d", n)
	}
	if got, _ := svc.GetTask(open.ID); got.DueDate != "2025-03-02" {
		t.Fatalf("expected 2025-03-02, got %s", got.DueDate)
	}
	if got, _ := svc.GetTask(undated.ID); !got.DueDate.IsZero() {
		t.Fatalf("undated task gained a date: %s", got.DueDate)
	}
	if got, _ := svc.GetTask(done.ID); got.DueDate != today {
		t.Fatalf("completed task moved: %s", got.DueDate)
	}
	if _, err := svc.BulkDelay(0); !errors.Is(err, ErrInvalidDelay) {
		t.Fatalf("expected ErrInvalidDelay, got %v", err)
	}
}

func TestHideAndClearCompleted(t *testing.T) {
	svc := newTestService(model.NewState())
	a := mustCreateTask(t, svc, CreateTaskInput{Text: "A"})
	b := mustCreateTask(t, svc, CreateTaskInput{Text: "B"})
	mustToggle(t, svc, a.ID, today)

	if n := svc.HideCompleted(); n != 1 {
		t.Fatalf("expected 1 hidden, got %d", n)
	}
	visible := svc.FilterTasks(FilterAll, today)
	if len(visible) != 1 || visible[0].ID != b.ID {
		t.Fatalf("hidden task still listed: %+v", visible)
	}
	if st := svc.Stats(PeriodWeek, fixedNow); st.Total != 2 || st.Completed != 1 {
		t.Fatalf("hidden tasks must count toward stats: %+v", st)
	}

	if n := svc.ClearCompleted(); n != 1 {
		t.Fatalf("expected 1 cleared, got %d", n)
	}
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Fatalf("unexpected tasks after clear: %+v", tasks)
	}
}

func TestResolveTaskIDByPrefix(t *testing.T) {
	state := model.NewState()
	state.Tasks = []model.Task{
		{ID: "abc123", Text: "one"},
		{ID: "abd456", Text: "two"},
	}
	svc := newTestService(state)

	if id, err := svc.ResolveTaskID("abc"); err != nil || id != "abc123" {
		t.Fatalf("expected abc123, got %q %v", id, err)
	}
	if _, err := svc.ResolveTaskID("ab"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ambiguous prefix to fail, got %v", err)
	}
	if _, err := svc.ResolveTaskID("zzz"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestReplaceResetsLedger(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "Old", Points: 40, DueDate: today})
	mustToggle(t, svc, task.ID, today)

	stored := model.NewState()
	stored.UserPoints = 250
	stored.Tasks = []model.Task{{ID: "t9", Text: "Stored", Priority: model.PriorityNormal}}
	svc.Replace(stored)

	if svc.Points() != 250 {
		t.Fatalf("expected the stored balance, got %d", svc.Points())
	}
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].ID != "t9" {
		t.Fatalf("unexpected tasks after replace: %+v", tasks)
	}
	stored.Tasks[0].Text = "mutated"
	if got, _ := svc.GetTask("t9"); got.Text != "Stored" {
		t.Fatalf("replace must copy its input, got %q", got.Text)
	}
}

func TestNewServiceNormalizesState(t *testing.T) {
	state := model.AppState{
		UserPoints: -20,
		Tasks:      []model.Task{{Text: "legacy", Priority: "weird", Points: -3}},
	}
	svc := NewService(state)
	got := svc.State()

	if got.UserPoints != 0 {
		t.Fatalf("expected points clamped to 0, got %d", got.UserPoints)
	}
	if got.Tasks[0].ID == "" || got.Tasks[0].Priority != model.PriorityNormal || got.Tasks[0].Points != 0 {
		t.Fatalf("task not normalized: %+v", got.Tasks[0])
	}
	if got.Categories == nil || got.StoreItems == nil || got.NotifiedAchievements == nil {
		t.Fatalf("nil collections must become empty: %+v", got)
	}
	if state.Tasks[0].ID != "" {
		t.Fatalf("caller state must not be mutated")
	}
}

func TestStateReturnsCopy(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "A", Subtasks: []model.SubtaskBlueprint{{Text: "s"}}})

	st := svc.State()
	st.Tasks[0].Subtasks[0].Text = "mutated"
	got, _ := svc.GetTask(task.ID)
	if got.Subtasks[0].Text != "s" {
		t.Fatalf("state copy shares subtasks")
	}
}
