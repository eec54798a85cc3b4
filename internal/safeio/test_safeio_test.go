package safeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestWriteThenRead(t *testing.T) {
	fs, err := NewSafeFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if err := fs.WriteFileAtomic("slot.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.WriteFileAtomic("slot.json", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := fs.ReadFile("slot.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Fatalf("got %s", got)
	}

	entries, _ := os.ReadDir(fs.Root())
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestMissingFileIsNotExist(t *testing.T) {
	fs, err := NewSafeFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if _, err := fs.ReadFile("nope.json"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestRejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	for _, name := range []string{"../x.json", "..", filepath.Join(dir, "abs.json")} {
		if err := fs.WriteFileAtomic(name, nil); !errors.Is(err, ErrOutsideRoot) {
			t.Fatalf("%s: expected ErrOutsideRoot, got %v", name, err)
		}
	}

	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.json"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.json"), filepath.Join(dir, "link.json")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := fs.ReadFile("link.json"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("expected symlink escape to fail, got %v", err)
	}
}
