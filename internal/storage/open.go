package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ncruces/zenity"

	"github.com/san-kum/handcloud/internal/hand"
)

// OpenPath loads a session from the path of one of its files or its
// directory.
func OpenPath(path string) (*SessionMetadata, []hand.Result, error) {
	dir := path
	if base := filepath.Base(path); base == metadataFile || base == landmarksFile {
		dir = filepath.Dir(path)
	}
	s := New(filepath.Dir(dir))
	id := filepath.Base(dir)

	meta, err := s.Load(id)
	if err != nil {
		return nil, nil, err
	}
	results, err := s.LoadResults(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, results, nil
}

// PickSession asks for a session through the native file dialog, starting
// in the store directory. A cancelled dialog returns an empty path and no
// error.
func (s *Store) PickSession() (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title("Open Session"),
		zenity.Filename(s.baseDir+string(filepath.Separator)),
		zenity.FileFilters{{
			Name:     "Sessions",
			Patterns: []string{metadataFile, landmarksFile},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", fmt.Errorf("open dialog: %w", err)
	}
	return path, nil
}
