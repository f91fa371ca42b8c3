package app

import (
	"fmt"
	"strings"

	"rhodes-todo/model"
)

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Text            string
	Priority        model.Priority
	CategoryID      string
	DueDate         model.Date
	Subtasks        []model.SubtaskBlueprint
	Points          int
	Frequency       int
	RecurrenceLimit int
}

// LockedError is returned when a task due in the future is toggled early.
type LockedError struct {
	TaskID  string
	DueDate model.Date
	Today   model.Date
}

func (e LockedError) Error() string {
	return fmt.Sprintf("task %s unlocks on %s (today is %s)", e.TaskID, e.DueDate, e.Today)
}

func (e LockedError) Unwrap() error { return ErrTaskLocked }

// ToggleResult describes the effects of a completion toggle.
type ToggleResult struct {
	Task model.Task
	// Delta is the signed change applied to the ledger.
	Delta int
	// Spawned is the successor of a recurring task, if one was created.
	Spawned  *model.Task
	Unlocked []model.Achievement
}

// SubtaskResult describes the effects of a subtask toggle.
type SubtaskResult struct {
	Task     model.Task
	Subtask  model.Subtask
	Delta    int
	Unlocked []model.Achievement
}

// TaskPatch replaces every non-nil field. It is a plain edit: points are
// never settled and recurrence never triggers, even for Completed or Points.
type TaskPatch struct {
	Text            *string
	Priority        *model.Priority
	CategoryID      *string
	DueDate         *model.Date
	Points          *int
	Frequency       *int
	RecurrenceLimit *int
	Completed       *bool
	Hidden          *bool
}

// Tasks returns every task, newest first.
func (s *Service) Tasks() []model.Task {
	return copyTasks(s.state.Tasks)
}

// GetTask returns a task by id.
func (s *Service) GetTask(id string) (model.Task, error) {
	idx := s.taskIndex(id)
	if idx == -1 {
		return model.Task{}, ErrTaskNotFound
	}
	return copyTask(s.state.Tasks[idx]), nil
}

// CreateTask adds a new incomplete task. It has no ledger effect.
func (s *Service) CreateTask(in CreateTaskInput) (model.Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return model.Task{}, ErrInvalidTask
	}
	priority := in.Priority
	if !priority.IsValid() {
		priority = model.PriorityNormal
	}

	subtasks := make([]model.Subtask, 0, len(in.Subtasks))
	for _, b := range in.Subtasks {
		st := strings.TrimSpace(b.Text)
		if st == "" {
			continue
		}
		subtasks = append(subtasks, model.Subtask{
			ID:     newID(),
			Text:   st,
			Points: nonNegative(b.Points),
		})
	}

	task := model.Task{
		ID:              newID(),
		Text:            text,
		Completed:       false,
		Priority:        priority,
		CategoryID:      strings.TrimSpace(in.CategoryID),
		DueDate:         in.DueDate,
		Subtasks:        subtasks,
		Timestamp:       s.nowMillis(),
		Points:          nonNegative(in.Points),
		Frequency:       nonNegative(in.Frequency),
		RecurrenceLimit: nonNegative(in.RecurrenceLimit),
	}
	s.prependTask(task)
	s.log.Info("task created", "id", task.ID, "points", task.Points, "due", task.DueDate)
	return copyTask(task), nil
}

// ToggleComplete flips a task's completion and settles its points.
// An incomplete task due after today is locked and cannot be completed.
// Completing a recurring task spawns its successor at most once per instance.
func (s *Service) ToggleComplete(id string, today model.Date) (ToggleResult, error) {
	idx := s.taskIndex(id)
	if idx == -1 {
		return ToggleResult{}, ErrTaskNotFound
	}
	task := &s.state.Tasks[idx]

	if !task.Completed && !task.DueDate.IsZero() && task.DueDate.After(today) {
		s.log.Debug("toggle rejected: locked", "id", id, "due", task.DueDate, "today", today)
		return ToggleResult{}, LockedError{TaskID: task.ID, DueDate: task.DueDate, Today: today}
	}

	task.Completed = !task.Completed
	task.Timestamp = s.nowMillis()

	res := ToggleResult{}
	if task.Completed {
		res.Delta = s.ledger.Credit(task.Points)
	} else {
		res.Delta = s.ledger.Debit(task.Points)
	}

	var successor *model.Task
	if task.Completed && task.IsRecurring() && !task.HasRecurred {
		next := s.successorOf(*task, today)
		task.HasRecurred = true
		successor = &next
	}

	res.Task = copyTask(*task)
	if successor != nil {
		s.prependTask(*successor)
		spawned := copyTask(*successor)
		res.Spawned = &spawned
		s.log.Info("recurring task spawned", "from", res.Task.ID, "id", spawned.ID, "due", spawned.DueDate, "remaining", spawned.RecurrenceLimit)
	}
	s.log.Info("task toggled", "id", res.Task.ID, "completed", res.Task.Completed, "delta", res.Delta)

	res.Unlocked = s.evaluateAchievements()
	return res, nil
}

func (s *Service) successorOf(task model.Task, today model.Date) model.Task {
	next := copyTask(task)
	next.ID = newID()
	next.Completed = false
	next.DueDate = today.AddDays(task.Frequency)
	next.RecurrenceLimit = task.RecurrenceLimit - 1
	next.HasRecurred = false
	next.Penalized = false
	next.Hidden = false
	next.Timestamp = s.nowMillis()
	for i := range next.Subtasks {
		next.Subtasks[i].ID = newID()
		next.Subtasks[i].Completed = false
	}
	return next
}

// DeleteTask removes a task unconditionally.
func (s *Service) DeleteTask(id string) error {
	idx := s.taskIndex(id)
	if idx == -1 {
		return ErrTaskNotFound
	}
	s.state.Tasks = append(s.state.Tasks[:idx], s.state.Tasks[idx+1:]...)
	s.log.Info("task deleted", "id", id)
	return nil
}

// ToggleSubtask flips a subtask and settles the subtask's own points,
// regardless of the parent's state.
func (s *Service) ToggleSubtask(taskID, subtaskID string) (SubtaskResult, error) {
	idx := s.taskIndex(taskID)
	if idx == -1 {
		return SubtaskResult{}, ErrTaskNotFound
	}
	task := &s.state.Tasks[idx]
	for i := range task.Subtasks {
		sub := &task.Subtasks[i]
		if sub.ID != subtaskID {
			continue
		}
		sub.Completed = !sub.Completed
		res := SubtaskResult{}
		if sub.Completed {
			res.Delta = s.ledger.Credit(sub.Points)
		} else {
			res.Delta = s.ledger.Debit(sub.Points)
		}
		res.Subtask = *sub
		res.Task = copyTask(*task)
		res.Unlocked = s.evaluateAchievements()
		return res, nil
	}
	return SubtaskResult{}, ErrSubtaskNotFound
}

// AddSubtask appends an incomplete subtask. It has no ledger effect.
func (s *Service) AddSubtask(taskID, text string, points int) (model.Subtask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Subtask{}, ErrInvalidTask
	}
	idx := s.taskIndex(taskID)
	if idx == -1 {
		return model.Subtask{}, ErrTaskNotFound
	}
	sub := model.Subtask{ID: newID(), Text: text, Points: nonNegative(points)}
	s.state.Tasks[idx].Subtasks = append(s.state.Tasks[idx].Subtasks, sub)
	return sub, nil
}

// EditResult reports the outcome of EditTask.
type EditResult struct {
	Task model.Task
	// Unlocked lists achievements newly crossed by the edit.
	Unlocked []model.Achievement
}

// EditTask applies a direct patch to a task. Edits never touch the
// ledger, but a patch to Completed or Points can still move the lifetime
// total and unlock achievements.
func (s *Service) EditTask(id string, patch TaskPatch) (EditResult, error) {
	idx := s.taskIndex(id)
	if idx == -1 {
		return EditResult{}, ErrTaskNotFound
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return EditResult{}, ErrInvalidTask
	}

	task := &s.state.Tasks[idx]
	if patch.Text != nil {
		task.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.Priority != nil && patch.Priority.IsValid() {
		task.Priority = *patch.Priority
	}
	if patch.CategoryID != nil {
		task.CategoryID = strings.TrimSpace(*patch.CategoryID)
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Points != nil {
		task.Points = nonNegative(*patch.Points)
	}
	if patch.Frequency != nil {
		task.Frequency = nonNegative(*patch.Frequency)
	}
	if patch.RecurrenceLimit != nil {
		task.RecurrenceLimit = nonNegative(*patch.RecurrenceLimit)
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Hidden != nil {
		task.Hidden = *patch.Hidden
	}

	res := EditResult{Task: copyTask(*task)}
	if patch.Completed != nil || patch.Points != nil {
		res.Unlocked = s.evaluateAchievements()
	}
	return res, nil
}

// BulkDelay pushes the due date of every open dated task by days.
// It returns the number of tasks moved.
func (s *Service) BulkDelay(days int) (int, error) {
	if days < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDelay, days)
	}
	moved := 0
	for i := range s.state.Tasks {
		t := &s.state.Tasks[i]
		if t.Completed || t.DueDate.IsZero() {
			continue
		}
		t.DueDate = t.DueDate.AddDays(days)
		moved++
	}
	s.log.Info("tasks delayed", "days", days, "count", moved)
	return moved, nil
}

// HideCompleted hides every completed task from the default listing.
// Hidden tasks still count toward statistics.
func (s *Service) HideCompleted() int {
	n := 0
	for i := range s.state.Tasks {
		if s.state.Tasks[i].Completed && !s.state.Tasks[i].Hidden {
			s.state.Tasks[i].Hidden = true
			n++
		}
	}
	return n
}

// ClearCompleted deletes every completed task and returns how many were removed.
func (s *Service) ClearCompleted() int {
	kept := make([]model.Task, 0, len(s.state.Tasks))
	for _, t := range s.state.Tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.state.Tasks) - len(kept)
	s.state.Tasks = kept
	return removed
}

// ResolveTaskID maps an id or unique id prefix to a task id.
func (s *Service) ResolveTaskID(ref string) (string, error) {
	ids := make([]string, len(s.state.Tasks))
	for i, t := range s.state.Tasks {
		ids[i] = t.ID
	}
	return resolvePrefix(ids, ref, ErrTaskNotFound)
}

// ResolveSubtaskID maps an id or unique id prefix to a subtask of taskID.
func (s *Service) ResolveSubtaskID(taskID, ref string) (string, error) {
	idx := s.taskIndex(taskID)
	if idx == -1 {
		return "", ErrTaskNotFound
	}
	subs := s.state.Tasks[idx].Subtasks
	ids := make([]string, len(subs))
	for i, st := range subs {
		ids[i] = st.ID
	}
	return resolvePrefix(ids, ref, ErrSubtaskNotFound)
}

func (s *Service) prependTask(t model.Task) {
	s.state.Tasks = append([]model.Task{t}, s.state.Tasks...)
}

func (s *Service) taskIndex(id string) int {
	for i := range s.state.Tasks {
		if s.state.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
