package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"rhodes-todo/model"
)

type TimeFilter string

const (
	FilterToday      TimeFilter = "TODAY"
	FilterWeek       TimeFilter = "WEEK"
	FilterMonth      TimeFilter = "MONTH"
	FilterAll        TimeFilter = "ALL"
	FilterIncomplete TimeFilter = "INCOMPLETE"
)

// TimeFilters lists the filters in display order.
var TimeFilters = []TimeFilter{FilterToday, FilterWeek, FilterMonth, FilterAll, FilterIncomplete}

// ParseTimeFilter accepts a filter name in any case.
func ParseTimeFilter(s string) (TimeFilter, error) {
	f := TimeFilter(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range TimeFilters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// FilterTasks returns the visible tasks matching filter relative to today.
// Tasks without a due date only match ALL and INCOMPLETE.
func (s *Service) FilterTasks(filter TimeFilter, today model.Date) []model.Task {
	weekStart, weekEnd := weekRange(today)
	out := make([]model.Task, 0, len(s.state.Tasks))
	for _, t := range s.state.Tasks {
		if t.Hidden {
			continue
		}
		if matchesFilter(t, filter, today, weekStart, weekEnd) {
			out = append(out, copyTask(t))
		}
	}
	return out
}

func matchesFilter(t model.Task, filter TimeFilter, today, weekStart, weekEnd model.Date) bool {
	switch filter {
	case FilterAll:
		return true
	case FilterIncomplete:
		return !t.Completed
	}
	if t.DueDate.IsZero() {
		return false
	}
	switch filter {
	case FilterToday:
		return t.DueDate == today
	case FilterWeek:
		return !t.DueDate.Before(weekStart) && !t.DueDate.After(weekEnd)
	case FilterMonth:
		return len(today) >= 7 && strings.HasPrefix(string(t.DueDate), string(today)[:7])
	}
	return false
}

// weekRange returns the Sunday and Saturday of the week holding today.
func weekRange(today model.Date) (model.Date, model.Date) {
	if today.IsZero() {
		return "", ""
	}
	start := today.AddDays(-int(today.Time().Weekday()))
	return start, start.AddDays(6)
}

// TaskGroup is a run of tasks sharing a category.
type TaskGroup struct {
	CategoryID string
	Name       string
	Tasks      []model.Task
}

// GroupByCategory groups tasks by category in order of first appearance.
// Tasks without a known category fall under UnassignedCategory.
func (s *Service) GroupByCategory(tasks []model.Task) []TaskGroup {
	var groups []TaskGroup
	index := map[string]int{}
	for _, t := range tasks {
		key := t.CategoryID
		name := s.CategoryName(key)
		if key == "" || name == "" {
			key, name = UnassignedCategory, "Unassigned"
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TaskGroup{CategoryID: key, Name: name})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

// TasksOn returns the tasks due on date, hidden ones included.
func (s *Service) TasksOn(date model.Date) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range s.state.Tasks {
		if !date.IsZero() && t.DueDate == date {
			out = append(out, copyTask(t))
		}
	}
	return out
}

// DaySchedule is the task list of one calendar day.
type DaySchedule struct {
	Date  model.Date
	Tasks []model.Task
}

// Upcoming returns the schedule for today and the following days-1 days.
func (s *Service) Upcoming(today model.Date, days int) []DaySchedule {
	if days < 1 {
		days = 1
	}
	out := make([]DaySchedule, days)
	for i := range out {
		d := today.AddDays(i)
		out[i] = DaySchedule{Date: d, Tasks: s.TasksOn(d)}
	}
	return out
}

// OpenDates lists the distinct due dates of incomplete tasks, ascending.
func (s *Service) OpenDates() []model.Date {
	seen := map[model.Date]bool{}
	var out []model.Date
	for _, t := range s.state.Tasks {
		if t.Completed || t.DueDate.IsZero() || seen[t.DueDate] {
			continue
		}
		seen[t.DueDate] = true
		out = append(out, t.DueDate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

type StatsPeriod string

const (
	PeriodWeek  StatsPeriod = "WEEK"
	PeriodMonth StatsPeriod = "MONTH"
	PeriodYear  StatsPeriod = "YEAR"
)

func (p StatsPeriod) window() time.Duration {
	day := 24 * time.Hour
	switch p {
	case PeriodMonth:
		return 30 * day
	case PeriodYear:
		return 365 * day
	default:
		return 7 * day
	}
}

// ParseStatsPeriod accepts a period name in any case.
func ParseStatsPeriod(s string) (StatsPeriod, error) {
	p := StatsPeriod(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Stats summarizes the tasks touched within a period.
type Stats struct {
	Total     int
	Completed int
	// Rate is the completion percentage, rounded.
	Rate int
}

// Stats counts tasks whose timestamp falls within period of now.
// Hidden tasks are counted.
func (s *Service) Stats(period StatsPeriod, now time.Time) Stats {
	limit := period.window().Milliseconds()
	ref := now.UnixMilli()
	var st Stats
	for _, t := range s.state.Tasks {
		if ref-t.Timestamp > limit {
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	if st.Total > 0 {
		st.Rate = (st.Completed*200 + st.Total) / (st.Total * 2)
	}
	return st
}

// TimeAgo renders the age of a unix millisecond timestamp.
func TimeAgo(ts int64, now time.Time) string {
	minutes := (now.UnixMilli() - ts) / 60000
	hours := minutes / 60
	days := hours / 24
	switch {
	case days > 0:
		return plural(days, "day") + " ago"
	case hours > 0:
		return plural(hours, "hour") + " ago"
	case minutes > 0:
		return plural(minutes, "minute") + " ago"
	}
	return "just now"
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
