package host

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the subset of file operations the installer needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Stat(path string) (fs.FileInfo, error)
	Symlink(target, link string) error
	Readlink(path string) (string, error)
	Remove(path string) error
}

// OSFileSystem implements FileSystem on the real disk.
type OSFileSystem struct{}

// ReadFile implements FileSystem.
func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// WriteFile writes data through a temporary file in the same directory and
// renames it into place, so readers never observe a partial file.
func (OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// MkdirAll implements FileSystem.
func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

// Stat implements FileSystem.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// Symlink implements FileSystem.
func (OSFileSystem) Symlink(target, link string) error { return os.Symlink(target, link) }

// Readlink implements FileSystem.
func (OSFileSystem) Readlink(path string) (string, error) { return os.Readlink(path) }

// Remove implements FileSystem.
func (OSFileSystem) Remove(path string) error { return os.Remove(path) }

// Exists reports whether path exists.
func Exists(fsys FileSystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// SameContent reports whether path holds exactly want. A missing file is not
// an error, it simply does not match.
func SameContent(fsys FileSystem, path string, want []byte) (bool, error) {
	got, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return bytes.Equal(got, want), nil
}

// WriteIfChanged writes data only when the current content differs.
// It reports whether a write happened.
func WriteIfChanged(fsys FileSystem, path string, data []byte, perm fs.FileMode) (bool, error) {
	same, err := SameContent(fsys, path, data)
	if err != nil {
		return false, err
	}
	if same {
		return false, nil
	}
	if err := fsys.WriteFile(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureSymlink points link at target, replacing a stale link.
func EnsureSymlink(fsys FileSystem, target, link string) error {
	if current, err := fsys.Readlink(link); err == nil {
		if current == target {
			return nil
		}
		if err := fsys.Remove(link); err != nil {
			return fmt.Errorf("failed to remove stale link %s: %w", link, err)
		}
	} else if Exists(fsys, link) {
		return fmt.Errorf("%s exists and is not a symlink", link)
	}
	if err := fsys.Symlink(target, link); err != nil {
		return fmt.Errorf("failed to link %s -> %s: %w", link, target, err)
	}
	return nil
}
