package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryDelay = 25 * time.Millisecond
	lockTimeout    = 2 * time.Second
)

// FileBackend keeps every slot in one JSON document. Writes go through a
// temporary file and an atomic rename, after copying the previous document
// to a .bak file and a rotating timestamped backup. A document that no
// longer parses is moved aside and replaced by the newest valid backup.
type FileBackend struct {
	path   string
	lock   *flock.Flock
	notice string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, lock: flock.New(path + ".lock")}
}

func (b *FileBackend) Path() string { return b.path }

// RecoveryNotice describes the last repair done by ReadSlots, if any.
func (b *FileBackend) RecoveryNotice() string { return b.notice }

func (b *FileBackend) ReadSlots(ctx context.Context) (map[string][]byte, error) {
	var slots map[string][]byte
	err := b.withLock(ctx, func() error {
		var err error
		slots, err = b.readWithRecovery()
		return err
	})
	return slots, err
}

func (b *FileBackend) WriteSlots(ctx context.Context, slots map[string][]byte) error {
	return b.withLock(ctx, func() error {
		doc, err := readDocument(b.path)
		if err != nil {
			// Unreadable documents are replaced wholesale.
			doc = map[string][]byte{}
		}
		for k, v := range slots {
			doc[k] = v
		}
		return autosave(b.path, doc)
	})
}

// Close releases the lock file handle.
func (b *FileBackend) Close() error {
	return b.lock.Close()
}

func (b *FileBackend) withLock(ctx context.Context, fn func() error) error {
	if err := ensureDir(b.path); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lockTimeout)
		defer cancel()
	}
	locked, err := b.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLocked, err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() {
		_ = b.lock.Unlock()
	}()
	return fn()
}

func (b *FileBackend) readWithRecovery() (map[string][]byte, error) {
	b.notice = ""
	doc, err := readDocument(b.path)
	if err == nil || !undecodable(err) {
		return doc, err
	}

	moved, err := quarantine(b.path, time.Now())
	if err != nil {
		return nil, fmt.Errorf("move corrupt state: %w", err)
	}
	doc, from, err := (backupSet{path: b.path}).newest()
	switch {
	case errors.Is(err, errNoValidBackup):
		doc = map[string][]byte{}
		b.notice = "state was corrupt and no valid backup exists; starting fresh"
	case err != nil:
		return nil, fmt.Errorf("inspect backups: %w", err)
	default:
		b.notice = "corrupt state recovered from " + filepath.Base(from)
	}
	if moved != "" {
		b.notice += " (bad file moved to " + filepath.Base(moved) + ")"
	}

	if err := writeDocument(b.path, doc); err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}
	return doc, nil
}

// readDocument returns an empty document when path does not exist.
func readDocument(path string) (map[string][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string][]byte{}, nil
		}
		return nil, err
	}
	return decodeDocument(data)
}

func decodeDocument(data []byte) (map[string][]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	doc := make(map[string][]byte, len(raw))
	for k, v := range raw {
		doc[k] = []byte(v)
	}
	return doc, nil
}

func encodeDocument(doc map[string][]byte) ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		raw[k] = json.RawMessage(v)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeDocument(path string, doc map[string][]byte) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// autosave writes doc via a temporary file and an atomic rename, keeping a
// .bak copy of the previous document and a rotating set of timestamped ones.
func autosave(path string, doc map[string][]byte) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := (backupSet{path: path}).snapshot(time.Now()); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
