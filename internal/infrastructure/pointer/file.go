// Package pointer stores the path of the most recently saved session document.
package pointer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/unitcost/backend/internal/domain"
)

// DefaultPath returns the pointer location under the user's home directory
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".unitcost", "last_session"), nil
}

// File is a plain-text file holding exactly one absolute document path
type File struct {
	fs   afero.Fs
	path string
}

// NewFile creates a pointer store backed by the file at path
func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

// Path returns the location of the pointer file
func (f *File) Path() string {
	return f.path
}

// Get returns the recorded document path, or ErrNoLastSession
func (f *File) Get(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrNoLastSession
		}
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	path := strings.TrimSpace(string(data))
	if path == "" {
		return "", domain.ErrNoLastSession
	}
	return path, nil
}

// Set overwrites the pointer with path
func (f *File) Set(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if err := afero.WriteFile(f.fs, f.path, []byte(abs), 0o644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}
