package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes <Dir>/<name>.txt.
type FileSink struct {
	Dir string
}

// NewFileSink returns a sink writing into dir ("." when empty).
func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = "."
	}
	return &FileSink{Dir: dir}
}

// Path returns the file a list name is written to.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.Dir, name+".txt")
}

// Write replaces the record through a temp file renamed over the target,
// so a failed write never leaves a truncated file behind.
func (s *FileSink) Write(ctx context.Context, name string, data []byte) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid list name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		Errors.WithLabelValues("file", "write").Inc()
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+".*.tmp")
	if err != nil {
		Errors.WithLabelValues("file", "write").Inc()
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		Errors.WithLabelValues("file", "write").Inc()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		Errors.WithLabelValues("file", "write").Inc()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		Errors.WithLabelValues("file", "write").Inc()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		Errors.WithLabelValues("file", "write").Inc()
		return fmt.Errorf("replace %s: %w", s.Path(name), err)
	}

	Writes.WithLabelValues("file").Inc()
	WrittenBytes.WithLabelValues("file").Add(float64(len(data)))
	return nil
}
