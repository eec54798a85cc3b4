package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps slots in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string][]byte)}
}

func (b *MemoryBackend) Name() string { return string(BackendMemory) }

func (b *MemoryBackend) Load(_ context.Context, slot string) ([]byte, error) {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.slots[slot]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (b *MemoryBackend) Save(_ context.Context, slot string, raw []byte) error {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.slots[slot] = append([]byte(nil), raw...)
	b.mu.Unlock()
	return nil
}
