// Package fs provides filesystem adapters that implement validation service interfaces.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eykd/tabvet/internal/domain"
)

// OSTree implements validation.FolderReader using the os package.
type OSTree struct{}

// ReadFolderImpl inspects the directory at path. A missing path, or a path
// that is not a directory, yields a listing with Exists=false and no error.
func (OSTree) ReadFolderImpl(_ context.Context, path string) (domain.FolderListing, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.FolderListing{}, nil
	}
	if err != nil {
		return domain.FolderListing{Exists: true}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return domain.FolderListing{}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return domain.FolderListing{Exists: true}, fmt.Errorf("reading directory %s: %w", path, err)
	}

	listing := domain.FolderListing{Exists: true, Entries: len(entries)}
	for _, e := range entries {
		if isRegularFile(filepath.Join(path, e.Name()), e) {
			listing.Files = append(listing.Files, e.Name())
		}
	}
	return listing, nil
}

// ReadFolder delegates to ReadFolderImpl.
func (t OSTree) ReadFolder(ctx context.Context, path string) (domain.FolderListing, error) {
	return t.ReadFolderImpl(ctx, path)
}

// FileExistsImpl reports whether anything exists at path.
func (OSTree) FileExistsImpl(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// FileExists delegates to FileExistsImpl.
func (t OSTree) FileExists(ctx context.Context, path string) (bool, error) {
	return t.FileExistsImpl(ctx, path)
}

// isRegularFile follows symlinks so a link to a file counts as a file.
func isRegularFile(path string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path names an existing directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
