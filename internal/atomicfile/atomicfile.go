// Package atomicfile replaces files without exposing partial writes.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

type options struct {
	createDirs bool
	dirPerm    os.FileMode
}

// Option adjusts WriteFile.
type Option func(*options)

// CreateDirs creates missing parent directories with mode 0755.
func CreateDirs() Option {
	return func(o *options) {
		o.createDirs = true
		o.dirPerm = 0o755
	}
}

// WriteFile writes data to a temporary file next to path and renames it into
// place, so readers see either the old contents or the new ones.
//
// A zero perm keeps the mode of an existing file, or 0644 for a new one.
func WriteFile(path string, data []byte, perm os.FileMode, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Dir(path)
	if o.createDirs {
		if err := os.MkdirAll(dir, o.dirPerm); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if perm == 0 {
		perm = 0o644
		if st, err := os.Stat(path); err == nil {
			perm = st.Mode().Perm()
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	_ = tmp.Chmod(perm)
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	committed = true
	return nil
}
