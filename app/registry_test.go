package app

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"rhodes-todo/model"
)

func TestDeployTemplateCreatesIndependentTasks(t *testing.T) {
	svc := newTestService(model.NewState())

	first, err := svc.DeployTemplate("tmp_1", today)
	if err != nil {
		t.Fatalf("deploy failed: %v", err)
	}
	second, err := svc.DeployTemplate("tmp_1", today)
	if err != nil {
		t.Fatalf("deploy failed: %v", err)
	}
	if first.ID == second.ID || first.Subtasks[0].ID == second.Subtasks[0].ID {
		t.Fatalf("deployed tasks share ids")
	}
	if first.DueDate != today || first.Points != 100 || first.Frequency != 7 || first.Priority != model.PriorityUrgent {
		t.Fatalf("unexpected deployed task: %+v", first)
	}
	if len(first.Subtasks) != 3 || first.Subtasks[0].Points != 20 || first.Subtasks[0].Completed {
		t.Fatalf("unexpected deployed subtasks: %+v", first.Subtasks)
	}

	if _, err := svc.ToggleSubtask(first.ID, first.Subtasks[0].ID); err != nil {
		t.Fatalf("toggle subtask failed: %v", err)
	}
	got, _ := svc.GetTask(second.ID)
	if got.Subtasks[0].Completed {
		t.Fatalf("deploys must not share subtask state")
	}
	if _, err := svc.DeployTemplate("missing", today); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateCRUD(t *testing.T) {
	svc := newTestService(model.NewState())

	tmp := svc.CreateTemplate(TemplateInput{CategoryID: "cat_2", Points: 30, Subtasks: []model.SubtaskBlueprint{{Text: " "}}})
	if tmp.Text != DefaultTemplateText || len(tmp.Subtasks) != 0 || tmp.Priority != model.PriorityNormal {
		t.Fatalf("unexpected template defaults: %+v", tmp)
	}
	if got := svc.Templates(); got[0].ID != tmp.ID {
		t.Fatalf("expected newest template first")
	}
	if got := svc.TemplatesInCategory("cat_2"); len(got) != 1 || got[0].ID != tmp.ID {
		t.Fatalf("unexpected category filter: %+v", got)
	}

	updated, err := svc.UpdateTemplate(tmp.ID, TemplateInput{Text: "Recon", Points: 40})
	if err != nil || updated.Text != "Recon" || updated.CategoryID != "" || updated.ID != tmp.ID {
		t.Fatalf("update failed: %+v %v", updated, err)
	}
	if err := svc.DeleteTemplate(tmp.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetTemplate(tmp.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestDeleteCategoryClearsReferences(t *testing.T) {
	svc := newTestService(model.NewState())
	task := mustCreateTask(t, svc, CreateTaskInput{Text: "Drill", CategoryID: "cat_1"})

	if err := svc.DeleteCategory("cat_1"); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}
	got, _ := svc.GetTask(task.ID)
	if got.CategoryID != "" {
		t.Fatalf("task still references deleted category: %q", got.CategoryID)
	}
	tmp, _ := svc.GetTemplate("tmp_1")
	if tmp.CategoryID != "" {
		t.Fatalf("template still references deleted category: %q", tmp.CategoryID)
	}
	if svc.CategoryName("cat_1") != "" {
		t.Fatalf("category still present")
	}
	if err := svc.DeleteCategory("cat_1"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryAddRenameResolve(t *testing.T) {
	svc := newTestService(model.NewState())
	if _, err := svc.AddCategory(" "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	c, err := svc.AddCategory("Base Ops")
	if err != nil {
		t.Fatalf("add category failed: %v", err)
	}
	if _, err := svc.RenameCategory(c.ID, "Base Operations"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if id, err := svc.ResolveCategoryID("base operations"); err != nil || id != c.ID {
		t.Fatalf("resolve by name failed: %q %v", id, err)
	}
	if id, err := svc.ResolveCategoryID("cat_2"); err != nil || id != "cat_2" {
		t.Fatalf("resolve by id failed: %q %v", id, err)
	}
	if _, err := svc.RenameCategory("missing", "x"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestExportOmitsNotifiedAchievements(t *testing.T) {
	state := model.NewState()
	state.UserPoints = 320
	state.NotifiedAchievements = []string{"ach_1"}
	svc := newTestService(state)

	data, err := svc.Export()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if _, ok := doc[model.SlotNotifiedAchievements]; ok {
		t.Fatalf("export must not carry notified achievements")
	}
	for _, key := range model.Slots[:8] {
		if _, ok := doc[key]; !ok {
			t.Fatalf("export missing %s", key)
		}
	}
	if !strings.Contains(string(data), "\n  \"tasks\"") {
		t.Fatalf("expected indented output, got %s", data)
	}
}

func TestImportReplacesPresentSlots(t *testing.T) {
	svc := newTestService(model.NewState())
	mustCreateTask(t, svc, CreateTaskInput{Text: "Keep me?"})

	backup := `{"userPoints": 900, "categories": [{"id": "c9", "name": "Imported"}], "unknown": 1}`
	if err := svc.Import([]byte(backup)); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if svc.Points() != 900 {
		t.Fatalf("expected 900 points, got %d", svc.Points())
	}
	if got := svc.Categories(); !reflect.DeepEqual(got, []model.Category{{ID: "c9", Name: "Imported"}}) {
		t.Fatalf("unexpected categories: %+v", got)
	}
	if len(svc.Tasks()) != 1 || len(svc.StoreItems()) != 4 {
		t.Fatalf("missing slots must stay untouched")
	}
}

func TestImportClearsFieldsMissingFromBackup(t *testing.T) {
	svc := newTestService(model.NewState())
	old := mustCreateTask(t, svc, CreateTaskInput{Text: "Stale", CategoryID: "cat_1", DueDate: "2025-03-01", Points: 10})
	if res := svc.SweepOverdue(today); len(res.Penalized) != 1 {
		t.Fatalf("expected the old task to be penalized, got %+v", res)
	}
	hidden := true
	if _, err := svc.EditTask(old.ID, TaskPatch{Hidden: &hidden}); err != nil {
		t.Fatalf("hide failed: %v", err)
	}

	backup := `{"tasks": [{"id": "new", "text": "fresh", "priority": "NORMAL", "completed": false, "timestamp": 1741599000000, "points": 50}]}`
	if err := svc.Import([]byte(backup)); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	tasks := svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != "new" || got.Text != "fresh" || got.Points != 50 {
		t.Fatalf("unexpected imported task: %+v", got)
	}
	if got.CategoryID != "" || !got.DueDate.IsZero() || got.Penalized || got.Hidden || got.HasRecurred {
		t.Fatalf("imported task kept fields of the task it replaced: %+v", got)
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	svc := newTestService(model.NewState())
	mustCreateTask(t, svc, CreateTaskInput{Text: "Original"})
	before := svc.State()

	for _, doc := range []string{`[1,2]`, `"text"`, `not json`, ``, `{"userPoints": 10, "tasks": "oops"}`} {
		if err := svc.Import([]byte(doc)); !errors.Is(err, ErrInvalidBackup) {
			t.Fatalf("import %q: expected ErrInvalidBackup, got %v", doc, err)
		}
	}
	if !reflect.DeepEqual(before, svc.State()) {
		t.Fatalf("rejected import changed state")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestService(model.NewState())
	task := mustCreateTask(t, src, CreateTaskInput{Text: "Round trip", Points: 70, DueDate: today})
	mustToggle(t, src, task.ID, today)
	data, err := src.Export()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dst := newTestService(model.NewState())
	if err := dst.Import(data); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	want := src.State()
	got := dst.State()
	want.NotifiedAchievements, got.NotifiedAchievements = nil, nil
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch\nwant %+v\ngot  %+v", want, got)
	}
}

func TestFilterTasks(t *testing.T) {
	// 2025-03-10 is a Monday; its week runs 2025-03-09..2025-03-15.
	state := model.NewState()
	state.Tasks = []model.Task{
		{ID: "today", Text: "a", DueDate: today},
		{ID: "sun", Text: "b", DueDate: "2025-03-09"},
		{ID: "sat", Text: "c", DueDate: "2025-03-15"},
		{ID: "next", Text: "d", DueDate: "2025-03-16"},
		{ID: "april", Text: "e", DueDate: "2025-04-01"},
		{ID: "done", Text: "f", DueDate: "2025-03-28", Completed: true},
		{ID: "nodate", Text: "g"},
		{ID: "hidden", Text: "h", DueDate: today, Completed: true, Hidden: true},
	}
	svc := newTestService(state)

	cases := map[TimeFilter][]string{
		FilterToday:      {"today"},
		FilterWeek:       {"today", "sun", "sat"},
		FilterMonth:      {"today", "sun", "sat", "next", "done"},
		FilterAll:        {"today", "sun", "sat", "next", "april", "done", "nodate"},
		FilterIncomplete: {"today", "sun", "sat", "next", "april", "nodate"},
	}
	for filter, want := range cases {
		var got []string
		for _, tk := range svc.FilterTasks(filter, today) {
			got = append(got, tk.ID)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: expected %v, got %v", filter, want, got)
		}
	}

	if f, err := ParseTimeFilter("week"); err != nil || f != FilterWeek {
		t.Fatalf("parse filter: %q %v", f, err)
	}
	if _, err := ParseTimeFilter("yesterday"); err == nil {
		t.Fatalf("expected unknown filter error")
	}
}

func TestGroupByCategory(t *testing.T) {
	state := model.NewState()
	state.Tasks = []model.Task{
		{ID: "1", Text: "a", CategoryID: "cat_2"},
		{ID: "2", Text: "b"},
		{ID: "3", Text: "c", CategoryID: "cat_2"},
		{ID: "4", Text: "d", CategoryID: "gone"},
	}
	svc := newTestService(state)

	groups := svc.GroupByCategory(svc.Tasks())
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", groups)
	}
	if groups[0].CategoryID != "cat_2" || groups[0].Name != "Enemy Intel" || len(groups[0].Tasks) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].CategoryID != UnassignedCategory || len(groups[1].Tasks) != 2 {
		t.Fatalf("unexpected unassigned group: %+v", groups[1])
	}
}

func TestScheduleViews(t *testing.T) {
	state := model.NewState()
	state.Tasks = []model.Task{
		{ID: "a", Text: "a", DueDate: today},
		{ID: "b", Text: "b", DueDate: "2025-03-12"},
		{ID: "c", Text: "c", DueDate: "2025-03-08", Completed: true},
		{ID: "d", Text: "d", DueDate: "2025-03-12"},
	}
	svc := newTestService(state)

	days := svc.Upcoming(today, 3)
	if len(days) != 3 || days[2].Date != "2025-03-12" || len(days[2].Tasks) != 2 || len(days[1].Tasks) != 0 {
		t.Fatalf("unexpected upcoming: %+v", days)
	}
	if got := svc.OpenDates(); !reflect.DeepEqual(got, []model.Date{today, "2025-03-12"}) {
		t.Fatalf("unexpected open dates: %v", got)
	}
	if got := svc.TasksOn(""); len(got) != 0 {
		t.Fatalf("zero date must match nothing, got %+v", got)
	}
}

func TestStatsByPeriod(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)
	now := fixedNow.UnixMilli()
	state := model.NewState()
	state.Tasks = []model.Task{
		{ID: "1", Text: "a", Timestamp: now, Completed: true},
		{ID: "2", Text: "b", Timestamp: now - 2*day},
		{ID: "3", Text: "c", Timestamp: now - 10*day, Completed: true},
		{ID: "4", Text: "d", Timestamp: now - 100*day, Completed: true},
	}
	svc := newTestService(state)

	if st := svc.Stats(PeriodWeek, fixedNow); st != (Stats{Total: 2, Completed: 1, Rate: 50}) {
		t.Fatalf("week: %+v", st)
	}
	if st := svc.Stats(PeriodMonth, fixedNow); st != (Stats{Total: 3, Completed: 2, Rate: 67}) {
		t.Fatalf("month: %+v", st)
	}
	if st := svc.Stats(PeriodYear, fixedNow); st != (Stats{Total: 4, Completed: 3, Rate: 75}) {
		t.Fatalf("year: %+v", st)
	}
	if st := newTestService(model.NewState()).Stats(PeriodWeek, fixedNow); st.Rate != 0 {
		t.Fatalf("empty stats must have rate 0: %+v", st)
	}
}

func TestTimeAgo(t *testing.T) {
	now := fixedNow
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{50 * time.Hour, "2 days ago"},
	}
	for _, c := range cases {
		if got := TimeAgo(now.Add(-c.ago).UnixMilli(), now); got != c.want {
			t.Fatalf("TimeAgo(%s) = %q, want %q", c.ago, got, c.want)
		}
	}
}
