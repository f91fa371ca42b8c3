package store

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	maxRotatingBackups = 10
	// Stamps sort lexically in write order.
	backupStamp     = "20060102-150405.000000000"
	quarantineStamp = "20060102-150405"
)

var errNoValidBackup = errors.New("no valid backup found")

// backupSet names the copies kept beside a state document: <path>.bak holds
// the document as it was before the last write and <path>.bak.<stamp> keeps
// up to maxRotatingBackups older generations.
type backupSet struct {
	path string
}

func (s backupSet) previous() string { return s.path + ".bak" }

func (s backupSet) generations() ([]string, error) {
	return filepath.Glob(s.path + ".bak.*")
}

// snapshot copies the current document into the set before it is
// overwritten. A document that does not exist yet has nothing to keep.
func (s backupSet) snapshot(now time.Time) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	stamped := s.path + ".bak." + now.UTC().Format(backupStamp)
	for _, name := range []string{s.previous(), stamped} {
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return err
		}
	}
	return s.prune()
}

func (s backupSet) prune() error {
	names, err := s.generations()
	if err != nil || len(names) <= maxRotatingBackups {
		return err
	}
	slices.Sort(names)
	for _, name := range names[:len(names)-maxRotatingBackups] {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// newest returns the most recently written copy that still decodes, along
// with its file name.
func (s backupSet) newest() (map[string][]byte, string, error) {
	names, err := s.generations()
	if err != nil {
		return nil, "", err
	}
	names = append(names, s.previous())

	type copyInfo struct {
		name    string
		written time.Time
	}
	copies := make([]copyInfo, 0, len(names))
	for _, name := range names {
		if info, err := os.Stat(name); err == nil {
			copies = append(copies, copyInfo{name: name, written: info.ModTime()})
		}
	}
	slices.SortFunc(copies, func(a, b copyInfo) int {
		if c := b.written.Compare(a.written); c != 0 {
			return c
		}
		return strings.Compare(b.name, a.name)
	})

	for _, c := range copies {
		data, err := os.ReadFile(c.name)
		if err != nil {
			continue
		}
		if doc, err := decodeDocument(data); err == nil {
			return doc, c.name, nil
		}
	}
	return nil, "", errNoValidBackup
}

// quarantine renames a document that no longer decodes to
// <name>.corrupt-<stamp><ext> and returns the new path. It returns "" when
// there is no document to move.
func quarantine(path string, now time.Time) (string, error) {
	ext := filepath.Ext(path)
	dest := strings.TrimSuffix(path, ext) + ".corrupt-" + now.UTC().Format(quarantineStamp) + ext
	if err := os.Rename(path, dest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return dest, nil
}

// undecodable reports whether err means the document exists but is not a
// JSON object of slots.
func undecodable(err error) bool {
	var syntax *json.SyntaxError
	var mistyped *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &mistyped) || errors.Is(err, io.ErrUnexpectedEOF)
}
