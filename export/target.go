package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// target owns the output destination for one run. It is acquired once by the
// sink and released exactly once at Stop, regardless of errors upstream.
type target struct {
	w      io.Writer
	closer io.Closer // nil when the pipeline does not own the close
	path   string    // non-empty when writing to a file the pipeline opened
}

// openTarget resolves the output destination from the options, in order:
// a caller-supplied writer, an explicit file path, or stdout.
func openTarget(o *Options) (*target, error) {
	if o.ExportFD != nil {
		t := &target{w: o.ExportFD}
		if o.ExportFDClose {
			if c, ok := o.ExportFD.(io.Closer); ok {
				t.closer = c
			}
		}
		return t, nil
	}

	if o.ExportFile != "" {
		return openFileTarget(o)
	}

	// stdout is never closed by the sink
	return &target{w: os.Stdout}, nil
}

func openFileTarget(o *Options) (*target, error) {
	dir := o.ExportPath
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("creating export path %q: %v", dir, err)}
	}

	path := filepath.Join(dir, o.ExportFile)

	if _, err := os.Stat(path); err == nil {
		switch {
		case o.ExportBackup:
			bak := backupPath(path)
			if err := os.Rename(path, bak); err != nil {
				return nil, &ConfigError{Msg: fmt.Sprintf("backing up %q to %q: %v", path, bak, err)}
			}
		case !o.ExportOverwrite:
			return nil, &ConfigError{
				Msg: fmt.Sprintf("export file %q already exists and overwrite is false", path),
			}
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("opening export file %q: %v", path, err)}
	}

	return &target{w: f, closer: f, path: path}, nil
}

// backupPath builds a timestamped .bak sibling for an existing file.
func backupPath(path string) string {
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	stamp := time.Now().Format("20060102T150405")
	return fmt.Sprintf("%s_%s%s.bak", stem, stamp, ext)
}

func (t *target) Write(p []byte) (int, error) {
	return t.w.Write(p)
}

// close releases the descriptor exactly once. Safe to call on a target the
// pipeline does not own.
func (t *target) close() error {
	if t.closer == nil {
		return nil
	}
	c := t.closer
	t.closer = nil
	return c.Close()
}
