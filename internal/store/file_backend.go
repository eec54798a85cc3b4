package store

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"codelens/internal/safeio"
)

// FileBackend stores each slot as <dir>/<slot>.json.
type FileBackend struct {
	fs *safeio.SafeFS
	mu sync.Mutex
}

func NewFileBackend(dir string) (*FileBackend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.WithHint(errors.New("file store path is required"), "set REPORT_STORE_PATH")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create store dir %s", dir)
	}
	fs, err := safeio.NewSafeFS(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open store dir %s", dir)
	}
	return &FileBackend{fs: fs}, nil
}

func (b *FileBackend) Name() string { return string(BackendFile) }

func (b *FileBackend) Load(_ context.Context, slot string) ([]byte, error) {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	raw, err := b.fs.ReadFile(slot + ".json")
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read slot %s", slot)
	}
	return raw, nil
}

func (b *FileBackend) Save(_ context.Context, slot string, raw []byte) error {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fs.WriteFileAtomic(slot+".json", raw); err != nil {
		return errors.Wrapf(err, "save slot %s", slot)
	}
	return nil
}
