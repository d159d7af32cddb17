package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Backend persists the store document. Save must be atomic: after a failed
// Save the previously persisted document must still be readable in full.
type Backend interface {
	// Load reads the persisted document. found is false when nothing has
	// been persisted yet.
	Load() (doc Document, found bool, err error)
	// Save durably writes the whole document before returning.
	Save(doc *Document) error
}

// FileBackend persists the document as a single pretty-printed JSON file,
// written to a temp file and renamed into place so readers never observe a
// partial write.
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend at the given path. Parent directories
// are created on first save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Load() (Document, bool, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("read %s: %w", b.path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, false, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return doc, true, nil
}

func (b *FileBackend) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}
