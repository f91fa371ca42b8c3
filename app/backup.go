package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"rhodes-todo/model"
)

// backupDoc is the export layout. The notified set is device-local and
// stays out of backups.
type backupDoc struct {
	Tasks           []model.Task           `json:"tasks"`
	Categories      []model.Category       `json:"categories"`
	Templates       []model.TaskTemplate   `json:"templates"`
	Achievements    []model.Achievement    `json:"achievements"`
	UserPoints      int                    `json:"userPoints"`
	StoreItems      []model.StoreItem      `json:"storeItems"`
	PurchaseHistory []model.PurchaseRecord `json:"purchaseHistory"`
	IsBgmEnabled    bool                   `json:"isBgmEnabled"`
}

// Export renders the current state as an indented backup document.
func (s *Service) Export() ([]byte, error) {
	st := s.State()
	doc := backupDoc{
		Tasks:           st.Tasks,
		Categories:      st.Categories,
		Templates:       st.Templates,
		Achievements:    st.Achievements,
		UserPoints:      st.UserPoints,
		StoreItems:      st.StoreItems,
		PurchaseHistory: st.PurchaseHistory,
		IsBgmEnabled:    st.IsBgmEnabled,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import applies a backup document. Present keys replace their slot
// wholesale, missing keys leave the slot alone and unknown keys are
// ignored. Every present key is decoded before anything is applied, so a
// bad document leaves the state untouched.
func (s *Service) Import(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: not a JSON object", ErrInvalidBackup)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	next := copyState(s.state)
	next.UserPoints = s.ledger.Balance()
	applied := make([]string, 0, len(model.Slots))
	for _, key := range model.Slots {
		if key == model.SlotNotifiedAchievements {
			continue
		}
		val, ok := raw[key]
		if !ok {
			continue
		}
		// Decoding into next directly would merge into its slices.
		var scratch model.AppState
		if err := json.Unmarshal(val, scratch.SlotField(key)); err != nil {
			return fmt.Errorf("%w: slot %s: %v", ErrInvalidBackup, key, err)
		}
		next.CopySlot(key, &scratch)
		applied = append(applied, key)
	}

	s.state = normalizeState(next)
	s.ledger = NewLedger(s.state.UserPoints)
	s.log.Info("backup imported", "slots", applied)
	return nil
}
