package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestAppStateSerializationRoundTrip(t *testing.T) {
	now := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC).UnixMilli()
	state := AppState{
		Tasks: []Task{
			{
				ID:              "t1",
				Text:            "Daily drill LS-5",
				Completed:       true,
				Priority:        PriorityUrgent,
				CategoryID:      "cat_1",
				DueDate:         "2026-02-19",
				Subtasks:        []Subtask{{ID: "s1", Text: "Deploy", Completed: true, Points: 5}},
				Timestamp:       now,
				Points:          100,
				Frequency:       7,
				RecurrenceLimit: 3,
				HasRecurred:     true,
			},
		},
		Categories:           DefaultCategories(),
		Templates:            DefaultTemplates(),
		Achievements:         DefaultAchievements(),
		UserPoints:           120,
		StoreItems:           DefaultStoreItems(),
		PurchaseHistory:      []PurchaseRecord{{ID: "p1", ItemName: "Sanity Potion", Cost: 100, Timestamp: now, IsGacha: true}},
		IsBgmEnabled:         true,
		NotifiedAchievements: []string{"ach_1"},
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got AppState
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(state, got) {
		t.Fatalf("round-trip mismatch\nwant=%+v\ngot=%+v", state, got)
	}
}

func TestTaskJSONUsesOriginalFieldNames(t *testing.T) {
	data, err := json.Marshal(Task{ID: "x", Text: "t", Priority: PriorityNormal, DueDate: "2024-01-01", CategoryID: "c"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"id", "text", "completed", "priority", "categoryId", "dueDate", "subtasks", "timestamp"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("expected key %q in %s", key, data)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if d != "2024-03-01" {
		t.Fatalf("expected 2024-03-01, got %q", d)
	}

	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Fatalf("expected zero date for empty input, got %q err=%v", d, err)
	}

	for _, bad := range []string{"2024-3-1", "03/01/2024", "2024-02-30", "tomorrow"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDateAddDaysCrossesMonthAndYear(t *testing.T) {
	if got := Date("2024-01-31").AddDays(1); got != "2024-02-01" {
		t.Fatalf("expected 2024-02-01, got %s", got)
	}
	if got := Date("2023-12-30").AddDays(7); got != "2024-01-06" {
		t.Fatalf("expected 2024-01-06, got %s", got)
	}
	if got := Date("2024-03-01").AddDays(-1); got != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", got)
	}
	if got := Date("").AddDays(3); !got.IsZero() {
		t.Fatalf("expected zero date to stay zero, got %s", got)
	}
}

func TestDateOrdering(t *testing.T) {
	if !Date("2024-02-01").Before("2024-03-01") {
		t.Fatalf("expected 2024-02-01 before 2024-03-01")
	}
	if Date("2024-01-01").After("2024-01-01") {
		t.Fatalf("same date must not be after itself")
	}
	if got := DateOf(time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC)); got != "2024-01-05" {
		t.Fatalf("expected 2024-01-05, got %s", got)
	}
}

func TestRecurringRequiresFrequencyAndLimit(t *testing.T) {
	cases := []struct {
		task Task
		want bool
	}{
		{Task{Frequency: 1, RecurrenceLimit: 2}, true},
		{Task{Frequency: 1, RecurrenceLimit: 1}, false},
		{Task{Frequency: 1}, false},
		{Task{RecurrenceLimit: 5}, false},
	}
	for _, c := range cases {
		if got := c.task.IsRecurring(); got != c.want {
			t.Fatalf("IsRecurring(%+v)=%v, want %v", c.task, got, c.want)
		}
	}
}
