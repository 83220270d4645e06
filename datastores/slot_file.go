package datastores

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// SlotFile implements [Slot] with one file per key in Dir.
type SlotFile struct {
	Dir string
}

var _ Slot = (*SlotFile)(nil)

func (s *SlotFile) path(key string) string {
	return filepath.Join(s.Dir, url.PathEscape(key)+".json")
}

func (s *SlotFile) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	return b, err
}

// Set writes to a temporary file renamed over the previous value.
func (s *SlotFile) Set(_ context.Context, key string, value []byte) error {
	err := os.MkdirAll(s.Dir, 0o700)
	if err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	f, err := os.CreateTemp(s.Dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("create slot file: %w", err)
	}
	defer os.Remove(f.Name()) //nolint: errcheck // gone after rename

	_, err = f.Write(value)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write slot file: %w", err)
	}
	return os.Rename(f.Name(), s.path(key))
}
