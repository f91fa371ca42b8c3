package model

import "time"

// Priority is the urgency flag of a task or template.
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return p == PriorityNormal || p == PriorityUrgent
}

// Category is a named partition referenced by tasks and templates.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subtask is owned by exactly one Task.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Points    int    `json:"points,omitempty"`
}

// SubtaskBlueprint is the template form of a subtask: no id, no completion state.
type SubtaskBlueprint struct {
	Text   string `json:"text"`
	Points int    `json:"points,omitempty"`
}

// Task is an operation order on the board.
type Task struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Completed  bool      `json:"completed"`
	Priority   Priority  `json:"priority"`
	CategoryID string    `json:"categoryId,omitempty"`
	DueDate    Date      `json:"dueDate,omitempty"`
	Subtasks   []Subtask `json:"subtasks"`
	// Timestamp is the last mutation instant in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
	Points    int   `json:"points,omitempty"`
	// Frequency is the number of days between recurrences; 0 means one-shot.
	Frequency int `json:"frequency,omitempty"`
	// RecurrenceLimit counts remaining instances; 0 means absent.
	RecurrenceLimit int  `json:"recurrenceLimit,omitempty"`
	HasRecurred     bool `json:"hasRecurred,omitempty"`
	Penalized       bool `json:"penalized,omitempty"`
	Hidden          bool `json:"hidden,omitempty"`
}

// Time returns the task timestamp as a time.Time.
func (t Task) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// IsRecurring reports whether completing the task can spawn a successor.
func (t Task) IsRecurring() bool {
	return t.Frequency > 0 && t.RecurrenceLimit > 1
}

// TaskTemplate is a stamp used to instantiate tasks. It is never completed.
type TaskTemplate struct {
	ID              string             `json:"id"`
	Text            string             `json:"text"`
	Priority        Priority           `json:"priority"`
	CategoryID      string             `json:"categoryId,omitempty"`
	Subtasks        []SubtaskBlueprint `json:"subtasks"`
	Points          int                `json:"points,omitempty"`
	Frequency       int                `json:"frequency,omitempty"`
	RecurrenceLimit int                `json:"recurrenceLimit,omitempty"`
}

// Achievement unlocks once lifetime earned points reach TargetPoints.
type Achievement struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	TargetPoints int    `json:"targetPoints"`
}

// StoreItem is something points can be spent on.
type StoreItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Cost        int    `json:"cost"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// PurchaseRecord is an append-only log entry.
type PurchaseRecord struct {
	ID        string `json:"id"`
	ItemName  string `json:"itemName"`
	Cost      int    `json:"cost"`
	Timestamp int64  `json:"timestamp"`
	IsGacha   bool   `json:"isGacha"`
}

// Slot names of the persisted state.
const (
	SlotTasks                = "tasks"
	SlotCategories           = "categories"
	SlotTemplates            = "templates"
	SlotAchievements         = "achievements"
	SlotUserPoints           = "userPoints"
	SlotStoreItems           = "storeItems"
	SlotPurchaseHistory      = "purchaseHistory"
	SlotIsBgmEnabled         = "isBgmEnabled"
	SlotNotifiedAchievements = "notifiedAchievements"
)

// Slots lists every slot in persistence order.
var Slots = []string{
	SlotTasks,
	SlotCategories,
	SlotTemplates,
	SlotAchievements,
	SlotUserPoints,
	SlotStoreItems,
	SlotPurchaseHistory,
	SlotIsBgmEnabled,
	SlotNotifiedAchievements,
}

// AppState is the full persisted state, one field per slot.
type AppState struct {
	Tasks                []Task           `json:"tasks"`
	Categories           []Category       `json:"categories"`
	Templates            []TaskTemplate   `json:"templates"`
	Achievements         []Achievement    `json:"achievements"`
	UserPoints           int              `json:"userPoints"`
	StoreItems           []StoreItem      `json:"storeItems"`
	PurchaseHistory      []PurchaseRecord `json:"purchaseHistory"`
	IsBgmEnabled         bool             `json:"isBgmEnabled"`
	NotifiedAchievements []string         `json:"notifiedAchievements"`
}

// SlotField returns a pointer to the field backing slot key, or nil for an
// unknown key. The pointer is suitable for json.Marshal and json.Unmarshal.
func (s *AppState) SlotField(key string) any {
	switch key {
	case SlotTasks:
		return &s.Tasks
	case SlotCategories:
		return &s.Categories
	case SlotTemplates:
		return &s.Templates
	case SlotAchievements:
		return &s.Achievements
	case SlotUserPoints:
		return &s.UserPoints
	case SlotStoreItems:
		return &s.StoreItems
	case SlotPurchaseHistory:
		return &s.PurchaseHistory
	case SlotIsBgmEnabled:
		return &s.IsBgmEnabled
	case SlotNotifiedAchievements:
		return &s.NotifiedAchievements
	}
	return nil
}

// CopySlot replaces the field backing slot key with the one held by src.
func (s *AppState) CopySlot(key string, src *AppState) {
	switch key {
	case SlotTasks:
		s.Tasks = src.Tasks
	case SlotCategories:
		s.Categories = src.Categories
	case SlotTemplates:
		s.Templates = src.Templates
	case SlotAchievements:
		s.Achievements = src.Achievements
	case SlotUserPoints:
		s.UserPoints = src.UserPoints
	case SlotStoreItems:
		s.StoreItems = src.StoreItems
	case SlotPurchaseHistory:
		s.PurchaseHistory = src.PurchaseHistory
	case SlotIsBgmEnabled:
		s.IsBgmEnabled = src.IsBgmEnabled
	case SlotNotifiedAchievements:
		s.NotifiedAchievements = src.NotifiedAchievements
	}
}
