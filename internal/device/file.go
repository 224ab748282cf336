package device

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileDirectory is a Directory backed by a single JSON file. It stands in for
// the platform address book on systems without one; file permissions play the
// role of the platform's access prompt.
type FileDirectory struct {
	path string
	mu   sync.Mutex
}

// NewFileDirectory returns a Directory stored at path. The file is created on
// first Save.
func NewFileDirectory(path string) *FileDirectory {
	return &FileDirectory{path: path}
}

// RequestAccess probes the backing file. A permission error maps to a denial;
// a missing file means an empty, accessible address book.
func (d *FileDirectory) RequestAccess(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		if os.IsPermission(err) {
			return false, nil
		}
		return false, fmt.Errorf("probe address book: %w", err)
	}
	f.Close()
	return true, nil
}

// Fetch reads every entry from the backing file.
func (d *FileDirectory) Fetch(ctx context.Context) ([]Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()
}

// Save appends an entry and rewrites the backing file.
func (d *FileDirectory) Save(ctx context.Context, e Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := d.load()
	if err != nil {
		return err
	}
	entries = append(entries, e)

	buf, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode address book: %w", err)
	}
	if err := os.WriteFile(d.path, buf, 0o600); err != nil {
		return fmt.Errorf("write address book: %w", err)
	}
	return nil
}

func (d *FileDirectory) load() ([]Entry, error) {
	buf, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read address book: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(buf, &entries); err != nil {
		return nil, fmt.Errorf("decode address book: %w", err)
	}
	return entries, nil
}
