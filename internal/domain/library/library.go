// Package library turns a folder of audio files into songs.
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/compare/internal/domain/model"
)

// Scan lists the regular files of dir in name order and assigns IDs 0..n-1 by
// that order. Hidden files and sub-directories are skipped.
func Scan(ctx context.Context, dir string) ([]model.Song, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	// ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read music folder %s: %w", dir, err)
	}

	songs := make([]model.Song, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		ext := filepath.Ext(name)
		if ext == "" || ext == name {
			return nil, fmt.Errorf("%w: %s", ErrMissingExtension, filepath.Join(dir, name))
		}
		songs = append(songs, model.Song{
			ID:        len(songs),
			Path:      filepath.Join(dir, name),
			Title:     strings.TrimSuffix(name, ext),
			Extension: ext,
		})
	}
	return songs, nil
}
