package playlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
)

// Document is the full persisted state: the playlist and the brightness
// setting. Preview state is never persisted.
type Document struct {
	Items      []v1alpha1.DisplayItem `json:"items"`
	Brightness uint8                  `json:"brightness"`
}

// Persister is the write-through target for Store mutations.
type Persister interface {
	// Load returns the persisted document, or (nil, nil) if none exists yet
	// or it cannot be read.
	Load() (*Document, error)
	// Save atomically replaces the persisted document.
	Save(doc *Document) error
}

// JSONFilePersister persists the Document as one JSON file, written via
// write-to-temp-then-fsync-then-rename for crash safety.
type JSONFilePersister struct {
	path string
}

// NewJSONFilePersister targets path (created on first Save if absent).
func NewJSONFilePersister(path string) *JSONFilePersister {
	return &JSONFilePersister{path: path}
}

// Load reads the document at path. A missing or unreadable file is not an
// error: the caller boots with an empty playlist and brightness 100. A file
// that is read but fails to parse is a startup error.
func (p *JSONFilePersister) Load() (*Document, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("state file %s is corrupt: %w", p.path, err)
	}
	return &doc, nil
}

// Save writes doc to a temp file in the same directory, fsyncs it, then
// renames it over the target path so a crash mid-write never leaves a
// partially-written state file.
func (p *JSONFilePersister) Save(doc *Document) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("renaming state file into place: %w", err)
	}

	return nil
}
