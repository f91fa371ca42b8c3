package app

import (
	"slices"
	"strings"

	"rhodes-todo/model"
)

// AchievementStatus pairs an achievement with its unlock state.
type AchievementStatus struct {
	model.Achievement
	Unlocked bool
}

// Evaluate returns the ids of achievements whose threshold total meets and
// that are not in notified, in catalog order.
func Evaluate(total int, achievements []model.Achievement, notified []string) []string {
	var out []string
	for _, a := range achievements {
		if total < a.TargetPoints {
			continue
		}
		if slices.Contains(notified, a.ID) {
			continue
		}
		out = append(out, a.ID)
	}
	return out
}

// TotalEarnedPoints sums the points of completed tasks and completed subtasks.
// Spending does not change it.
func TotalEarnedPoints(tasks []model.Task) int {
	total := 0
	for _, t := range tasks {
		if t.Completed {
			total += t.Points
		}
		for _, sub := range t.Subtasks {
			if sub.Completed {
				total += sub.Points
			}
		}
	}
	return total
}

func (s *Service) TotalEarnedPoints() int {
	return TotalEarnedPoints(s.state.Tasks)
}

// evaluateAchievements records newly crossed thresholds and returns them.
func (s *Service) evaluateAchievements() []model.Achievement {
	ids := Evaluate(s.TotalEarnedPoints(), s.state.Achievements, s.state.NotifiedAchievements)
	if len(ids) == 0 {
		return nil
	}
	s.state.NotifiedAchievements = append(s.state.NotifiedAchievements, ids...)

	out := make([]model.Achievement, 0, len(ids))
	for _, a := range s.state.Achievements {
		if slices.Contains(ids, a.ID) {
			out = append(out, a)
			s.log.Info("achievement unlocked", "id", a.ID, "title", a.Title)
		}
	}
	return out
}

// EvaluateAchievements runs the evaluator outside of a lifecycle operation,
// e.g. after loading or importing state.
func (s *Service) EvaluateAchievements() []model.Achievement {
	return s.evaluateAchievements()
}

// Achievements reports every achievement with its unlock state. Once
// notified, an achievement stays unlocked.
func (s *Service) Achievements() []AchievementStatus {
	total := s.TotalEarnedPoints()
	out := make([]AchievementStatus, 0, len(s.state.Achievements))
	for _, a := range s.state.Achievements {
		out = append(out, AchievementStatus{
			Achievement: a,
			Unlocked:    total >= a.TargetPoints || slices.Contains(s.state.NotifiedAchievements, a.ID),
		})
	}
	return out
}

// AddAchievement defines a new achievement threshold.
func (s *Service) AddAchievement(title, description string, target int) (model.Achievement, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Achievement{}, ErrInvalidName
	}
	a := model.Achievement{
		ID:           "ach_" + newID(),
		Title:        title,
		Description:  strings.TrimSpace(description),
		TargetPoints: nonNegative(target),
	}
	s.state.Achievements = append(s.state.Achievements, a)
	return a, nil
}

// DeleteAchievement removes an achievement and forgets its notification.
func (s *Service) DeleteAchievement(id string) error {
	for i := range s.state.Achievements {
		if s.state.Achievements[i].ID != id {
			continue
		}
		s.state.Achievements = append(s.state.Achievements[:i], s.state.Achievements[i+1:]...)
		s.state.NotifiedAchievements = slices.DeleteFunc(s.state.NotifiedAchievements, func(n string) bool { return n == id })
		return nil
	}
	return ErrAchievementNotFound
}
