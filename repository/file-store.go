package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	_ Store  = (*FileStore)(nil)
	_ Lister = (*FileStore)(nil)
)

// FileStore persists each slot as a human-readable file in a directory.
// Writes go to a temporary file first, which is renamed over the slot file,
// so a crash never leaves a half written slot behind.
type FileStore struct {
	dir string
	ext string

	mu sync.Mutex
}

// NewFileStore creates dir, if it does not exist yet.
// ext is appended to the slot name to form the file name, e.g. ".json".
func NewFileStore(dir string, ext string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: could not create dir %s: %v", ErrStore, dir, err) //nolint:errorlint // prevent err in api
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return &FileStore{dir: dir, ext: ext}, nil
}

func (s *FileStore) Load(_ context.Context, slot string) ([]byte, error) {
	path, err := s.path(slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	return blob, nil
}

func (s *FileStore) Store(_ context.Context, slot string, blob []byte) error {
	path, err := s.path(slot)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (s *FileStore) Slots(_ context.Context) ([]SlotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	infos := []SlotInfo{}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, ".tmp") || !strings.HasSuffix(name, s.ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // removed in between
		}

		infos = append(infos, SlotInfo{
			Name:      strings.TrimSuffix(name, s.ext),
			Size:      info.Size(),
			UpdatedAt: info.ModTime().UTC(),
		})
	}

	sortSlots(infos)

	return infos, nil
}

// Dir returns the directory the slot files are kept in.
func (s *FileStore) Dir() string {
	return s.dir
}

var errInvalidSlotName = errors.New("invalid slot name")

// path keeps every slot file inside of dir.
func (s *FileStore) path(slot string) (string, error) {
	if slot == "" || slot == "." || slot == ".." || strings.ContainsAny(slot, `/\`) {
		return "", fmt.Errorf("%w: %q", errInvalidSlotName, slot)
	}

	return filepath.Join(s.dir, slot+s.ext), nil
}
