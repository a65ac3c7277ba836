package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSink_WriteAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)
	ctx := context.Background()

	if err := s.Write(ctx, "ILRS_active", []byte("first\nrecord\n")); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if err := s.Write(ctx, "ILRS_active", []byte("second\n")); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "ILRS_active.txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "second\n" {
		t.Errorf("file content = %q, want %q", got, "second\n")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the record file, found %d entries", len(entries))
	}
}

func TestFileSink_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := NewFileSink(dir)

	if err := s.Write(context.Background(), "lageos", []byte("x\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(s.Path("lageos")); err != nil {
		t.Errorf("expected %s to exist: %v", s.Path("lageos"), err)
	}
}

func TestFileSink_InvalidName(t *testing.T) {
	s := NewFileSink(t.TempDir())

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		if err := s.Write(context.Background(), name, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", name)
		}
	}
}

func TestFileSink_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Write(ctx, "x", []byte("data")); err == nil {
		t.Fatal("Write with cancelled context should fail")
	}
	if _, err := os.Stat(s.Path("x")); !os.IsNotExist(err) {
		t.Errorf("no file should be written, stat err = %v", err)
	}
}

func TestNewFileSink_DefaultDir(t *testing.T) {
	if got := NewFileSink("").Dir; got != "." {
		t.Errorf("Dir = %q, want %q", got, ".")
	}
}
