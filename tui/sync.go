package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"maps"

	"rhodes-todo/model"
	"rhodes-todo/store"
)

// slotDigest holds the compacted JSON of every known slot. Backends differ
// in how they indent a slot, so raw bytes are not comparable.
type slotDigest map[string]string

func digestSlots(slots map[string][]byte) slotDigest {
	d := make(slotDigest, len(model.Slots))
	for _, key := range model.Slots {
		raw, ok := slots[key]
		if !ok {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			d[key] = string(raw)
			continue
		}
		d[key] = buf.String()
	}
	return d
}

func (m *Model) readDigest() slotDigest {
	if m.backend == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(m.ctx, saveTimeout)
	defer cancel()
	slots, err := m.backend.ReadSlots(ctx)
	if err != nil {
		m.log.Warn("board read", "err", err)
		return nil
	}
	return digestSlots(slots)
}

// refresh picks up writes made by another session since the board last
// read or saved, so the next save does not overwrite them. Changes the
// board has not saved yet are dropped in favor of the stored state.
func (m *Model) refresh() {
	if m.backend == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, saveTimeout)
	defer cancel()
	slots, err := m.backend.ReadSlots(ctx)
	if err != nil {
		m.log.Warn("board refresh", "err", err)
		return
	}
	current := digestSlots(slots)
	if m.synced == nil || maps.Equal(current, m.synced) {
		m.synced = current
		return
	}

	state, warnings, err := store.Load(ctx, m.backend)
	if err != nil {
		m.log.Warn("board refresh", "err", err)
		return
	}
	for _, w := range warnings {
		m.log.Warn("board refresh", "warning", w)
	}
	m.svc.Replace(state)
	m.synced = current
	m.log.Info("board reloaded changes from another session")
	m.ensureSelection()
}
