package app

import "rhodes-todo/model"

// PenaltyRate is the share of a task's points lost when it goes overdue.
const PenaltyRate = 0.5

// SweepResult lists the tasks penalized by one overdue sweep.
type SweepResult struct {
	Penalized []string
	// Delta is the signed change applied to the ledger.
	Delta int
}

// Penalty returns the points lost when a task worth points goes overdue.
func Penalty(points int) int {
	if points <= 0 {
		return 0
	}
	return int(float64(points) * PenaltyRate)
}

// SweepOverdue penalizes every open task whose due date is before today.
// Each task is penalized at most once, so repeated sweeps are no-ops.
func (s *Service) SweepOverdue(today model.Date) SweepResult {
	res := SweepResult{}
	for i := range s.state.Tasks {
		t := &s.state.Tasks[i]
		if t.DueDate.IsZero() || !t.DueDate.Before(today) || t.Completed || t.Penalized {
			continue
		}
		res.Delta += s.ledger.Debit(Penalty(t.Points))
		t.Penalized = true
		res.Penalized = append(res.Penalized, t.ID)
		s.log.Info("overdue penalty", "id", t.ID, "due", t.DueDate, "today", today, "penalty", Penalty(t.Points))
	}
	return res
}

// Overdue returns the open tasks due before today, penalized or not.
func (s *Service) Overdue(today model.Date) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range s.state.Tasks {
		if !t.Completed && !t.DueDate.IsZero() && t.DueDate.Before(today) {
			out = append(out, copyTask(t))
		}
	}
	return out
}
