package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rhodes-todo/model"
)

var (
	ErrLocked         = errors.New("state is locked by another process")
	ErrUnknownBackend = errors.New("unknown backend")
)

// Backend persists the raw JSON value of every slot.
type Backend interface {
	// ReadSlots returns the stored slots. Missing slots are absent from the map.
	ReadSlots(ctx context.Context) (map[string][]byte, error)
	// WriteSlots replaces the given slots.
	WriteSlots(ctx context.Context, slots map[string][]byte) error
	Close() error
}

// recoverer is implemented by backends that can repair storage on read.
type recoverer interface {
	RecoveryNotice() string
}

// Kind names a backend in configuration.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// ParseKind accepts a backend name in any case. Empty means file.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "":
		return KindFile, nil
	case KindFile, KindSQLite, KindMemory:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Open returns the backend of the given kind rooted at path.
func Open(ctx context.Context, kind Kind, path string) (Backend, error) {
	switch kind {
	case KindFile, "":
		return NewFileBackend(path), nil
	case KindSQLite:
		return OpenSQLite(ctx, path)
	case KindMemory:
		return NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
}

// Load decodes every slot independently. A missing slot keeps its default.
// A slot that fails to decode also keeps its default and is reported in
// the returned warnings; the other slots load normally.
func Load(ctx context.Context, b Backend) (model.AppState, []string, error) {
	slots, err := b.ReadSlots(ctx)
	if err != nil {
		return model.AppState{}, nil, err
	}

	var warnings []string
	if r, ok := b.(recoverer); ok {
		if notice := r.RecoveryNotice(); notice != "" {
			warnings = append(warnings, notice)
		}
	}

	state := model.NewState()
	for _, key := range model.Slots {
		raw, ok := slots[key]
		if !ok {
			continue
		}
		if err := decodeSlot(&state, key, raw); err != nil {
			warnings = append(warnings, fmt.Sprintf("slot %s unreadable, using defaults: %v", key, err))
		}
	}
	return state, warnings, nil
}

// decodeSlot leaves state untouched when raw does not decode.
func decodeSlot(state *model.AppState, key string, raw []byte) error {
	if strings.TrimSpace(string(raw)) == "null" {
		return nil
	}
	var scratch model.AppState
	if err := json.Unmarshal(raw, scratch.SlotField(key)); err != nil {
		return err
	}
	state.CopySlot(key, &scratch)
	return nil
}

// Save writes every slot of state.
func Save(ctx context.Context, b Backend, state model.AppState) error {
	slots, err := EncodeSlots(state)
	if err != nil {
		return err
	}
	return b.WriteSlots(ctx, slots)
}

// EncodeSlots renders each slot of state as JSON.
func EncodeSlots(state model.AppState) (map[string][]byte, error) {
	slots := make(map[string][]byte, len(model.Slots))
	for _, key := range model.Slots {
		data, err := json.Marshal(state.SlotField(key))
		if err != nil {
			return nil, fmt.Errorf("slot encode %s: %w", key, err)
		}
		slots[key] = data
	}
	return slots, nil
}
