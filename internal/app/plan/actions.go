package plan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// Compile-time checks that the actions implement domain.Action.
var (
	_ domain.Action = (*ensureDir)(nil)
	_ domain.Action = (*writeFile)(nil)
)

type ensureDir struct {
	path    string
	created string // topmost directory this action created, if any
}

// EnsureDir creates path and any missing parents. Rollback removes only the
// directories this action created, and only if they are still empty.
func EnsureDir(path string) domain.Action {
	return &ensureDir{path: path}
}

func (a *ensureDir) Execute(context.Context) error {
	top, err := firstMissing(a.path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.path, dirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", a.path, err)
	}
	a.created = top
	return nil
}

func (a *ensureDir) Rollback(context.Context) error {
	if a.created == "" {
		return nil
	}
	// Walk back up from the leaf, stopping at the first directory that was
	// there before or that now holds something else.
	for dir := filepath.Clean(a.path); ; dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if dir == a.created {
					return nil
				}
				continue
			}
			return nil
		}
		if dir == a.created {
			return nil
		}
	}
}

func (a *ensureDir) Description() string { return "create directory " + a.path }

// firstMissing returns the topmost ancestor of path (inclusive) that does not
// exist, or "" when path already exists as a directory.
func firstMissing(path string) (string, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return "", nil
	case err == nil:
		return "", fmt.Errorf("%s exists and is not a directory: %w", path, domain.ErrConflict)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	missing := path
	for parent := filepath.Dir(missing); parent != missing; parent = filepath.Dir(missing) {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		missing = parent
	}
	return missing, nil
}

type writeFile struct {
	path      string
	data      []byte
	overwrite bool

	written bool
	backup  []byte
	existed bool
}

// WriteFile writes data to path. Without overwrite the file must not exist
// and the failure wraps domain.ErrConflict. With overwrite the previous
// content is kept in memory and restored on rollback.
func WriteFile(path string, data []byte, overwrite bool) domain.Action {
	return &writeFile{path: path, data: data, overwrite: overwrite}
}

func (a *writeFile) Execute(context.Context) error {
	if !a.overwrite {
		f, err := os.OpenFile(a.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%s already exists: %w", a.path, domain.ErrConflict)
			}
			return fmt.Errorf("creating %s: %w", a.path, err)
		}
		_, werr := f.Write(a.data)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			_ = os.Remove(a.path)
			return fmt.Errorf("writing %s: %w", a.path, err)
		}
		a.written = true
		return nil
	}

	prev, err := os.ReadFile(a.path)
	switch {
	case err == nil:
		a.existed = true
		a.backup = prev
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading %s: %w", a.path, err)
	}

	if err := os.WriteFile(a.path, a.data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", a.path, err)
	}
	a.written = true
	return nil
}

func (a *writeFile) Rollback(context.Context) error {
	if !a.written {
		return nil
	}
	a.written = false
	if a.existed {
		return os.WriteFile(a.path, a.backup, filePerm)
	}
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (a *writeFile) Description() string { return "write " + a.path }
