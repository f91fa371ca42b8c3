package app

import (
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"rhodes-todo/model"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrSubtaskNotFound     = errors.New("subtask not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrItemNotFound        = errors.New("store item not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrTaskLocked          = errors.New("task is not yet unlocked")
	ErrInsufficientFunds   = errors.New("insufficient points")
	ErrInvalidTask         = errors.New("task text must not be empty")
	ErrInvalidName         = errors.New("name must not be empty")
	ErrInvalidDelay        = errors.New("delay must be at least one day")
	ErrInvalidCost         = errors.New("cost must be positive")
	ErrInvalidBackup       = errors.New("invalid backup")
)

// DefaultGachaWeight is K in the inverse-cost draw weight K/cost.
const DefaultGachaWeight = 1000.0

// Service owns the application state and every rule that mutates it.
// It is not safe for concurrent use; callers serialize events.
type Service struct {
	state       model.AppState
	ledger      *Ledger
	now         func() time.Time
	rng         *rand.Rand
	gachaWeight float64
	log         *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of mutation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand sets the random source used by gacha draws.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithGachaWeight sets K in the draw weight K/cost.
func WithGachaWeight(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.gachaWeight = k
		}
	}
}

// WithLogger sets the logger for service events. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a service with a copy of the provided state.
func NewService(state model.AppState, opts ...Option) *Service {
	state = normalizeState(copyState(state))
	s := &Service{
		state:       state,
		ledger:      NewLedger(state.UserPoints),
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		gachaWeight: DefaultGachaWeight,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace swaps in state read back from storage, for example after
// another session wrote it. The ledger restarts from the stored balance.
func (s *Service) Replace(state model.AppState) {
	s.state = normalizeState(copyState(state))
	s.ledger = NewLedger(s.state.UserPoints)
	s.log.Info("state replaced", "tasks", len(s.state.Tasks), "points", s.state.UserPoints)
}

// State returns a copy of current state.
func (s *Service) State() model.AppState {
	out := copyState(s.state)
	out.UserPoints = s.ledger.Balance()
	return out
}

// Points returns the current ledger balance.
func (s *Service) Points() int {
	return s.ledger.Balance()
}

// BgmEnabled reports the background music preference.
func (s *Service) BgmEnabled() bool {
	return s.state.IsBgmEnabled
}

// SetBgmEnabled stores the background music preference.
func (s *Service) SetBgmEnabled(on bool) {
	s.state.IsBgmEnabled = on
}

func (s *Service) nowMillis() int64 {
	return s.now().UnixMilli()
}

func normalizeState(state model.AppState) model.AppState {
	if state.Tasks == nil {
		state.Tasks = []model.Task{}
	}
	if state.Categories == nil {
		state.Categories = []model.Category{}
	}
	if state.Templates == nil {
		state.Templates = []model.TaskTemplate{}
	}
	if state.Achievements == nil {
		state.Achievements = []model.Achievement{}
	}
	if state.StoreItems == nil {
		state.StoreItems = []model.StoreItem{}
	}
	if state.PurchaseHistory == nil {
		state.PurchaseHistory = []model.PurchaseRecord{}
	}
	if state.NotifiedAchievements == nil {
		state.NotifiedAchievements = []string{}
	}
	if state.UserPoints < 0 {
		state.UserPoints = 0
	}

	for i := range state.Tasks {
		t := &state.Tasks[i]
		if !t.Priority.IsValid() {
			t.Priority = model.PriorityNormal
		}
		if t.Subtasks == nil {
			t.Subtasks = []model.Subtask{}
		}
		if t.Points < 0 {
			t.Points = 0
		}
		if t.Frequency < 0 {
			t.Frequency = 0
		}
		if t.RecurrenceLimit < 0 {
			t.RecurrenceLimit = 0
		}
		if strings.TrimSpace(t.ID) == "" {
			t.ID = newID()
		}
	}
	for i := range state.Templates {
		tmp := &state.Templates[i]
		if !tmp.Priority.IsValid() {
			tmp.Priority = model.PriorityNormal
		}
		if tmp.Subtasks == nil {
			tmp.Subtasks = []model.SubtaskBlueprint{}
		}
	}
	return state
}

func copyTask(t model.Task) model.Task {
	subs := make([]model.Subtask, len(t.Subtasks))
	copy(subs, t.Subtasks)
	t.Subtasks = subs
	return t
}

func copyTemplate(t model.TaskTemplate) model.TaskTemplate {
	subs := make([]model.SubtaskBlueprint, len(t.Subtasks))
	copy(subs, t.Subtasks)
	t.Subtasks = subs
	return t
}

func copyTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i := range tasks {
		out[i] = copyTask(tasks[i])
	}
	return out
}

func copyState(state model.AppState) model.AppState {
	out := state
	if state.Tasks != nil {
		out.Tasks = copyTasks(state.Tasks)
	}
	if state.Templates != nil {
		out.Templates = make([]model.TaskTemplate, len(state.Templates))
		for i := range state.Templates {
			out.Templates[i] = copyTemplate(state.Templates[i])
		}
	}
	out.Categories = copySlice(state.Categories)
	out.Achievements = copySlice(state.Achievements)
	out.StoreItems = copySlice(state.StoreItems)
	out.PurchaseHistory = copySlice(state.PurchaseHistory)
	out.NotifiedAchievements = copySlice(state.NotifiedAchievements)
	return out
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func newID() string {
	return uuid.NewString()
}
