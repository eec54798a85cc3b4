// Package store holds the single current report. Replacement is wholesale:
// readers see either the previous snapshot or the new one, never a mix.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"codelens/internal/logger"
	"codelens/internal/report"
)

const DefaultSlot = "projectData"

// Snapshot is one published version of the report.
type Snapshot struct {
	Revision   uuid.UUID      `json:"revision"`
	Report     *report.Report `json:"-"`
	ReplacedAt time.Time      `json:"replacedAt"`
}

type Store struct {
	backend Backend
	slot    string

	// writeMu serializes Replace so the backend and the slot agree on order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Snapshot
	loaded  bool

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

func New(backend Backend, slot string) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = DefaultSlot
	}
	return &Store{backend: backend, slot: slot, subs: make(map[int]chan Snapshot)}
}

func (s *Store) Slot() string { return s.slot }

func (s *Store) Backend() Backend { return s.backend }

// Current returns the published snapshot, if any.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.loaded
}

// Replace persists r and publishes it as the new snapshot. On error the
// previous snapshot stays current.
func (s *Store) Replace(ctx context.Context, r *report.Report) (Snapshot, error) {
	if r == nil {
		return Snapshot{}, errors.New("report is nil")
	}
	raw := []byte(r.Raw)
	if len(raw) == 0 {
		b, err := json.Marshal(r)
		if err != nil {
			return Snapshot{}, errors.Wrap(err, "encode report")
		}
		raw = b
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.Save(ctx, s.slot, raw); err != nil {
		return Snapshot{}, errors.Wrapf(err, "persist report to %s store", s.backend.Name())
	}
	snap := Snapshot{Revision: uuid.New(), Report: r, ReplacedAt: time.Now().UTC()}
	s.publish(snap)

	logger.FromContext(ctx).Infow("report replaced",
		logger.FieldRevision, snap.Revision.String(),
		logger.FieldProject, r.ProjectName,
		logger.FieldCount, len(r.Classes),
	)
	s.notify(snap)
	return snap, nil
}

// Restore loads the slot from the backend. A missing slot is not an error;
// a slot that does not decode is logged and skipped.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	raw, err := s.backend.Load(ctx, s.slot)
	if errors.Is(err, ErrSlotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "restore slot %s", s.slot)
	}
	r, err := report.Decode(raw)
	if err != nil {
		logger.FromContext(ctx).Warnw("ignoring stored report",
			"slot", s.slot,
			logger.FieldError, err.Error(),
		)
		return false, nil
	}
	snap := Snapshot{Revision: uuid.New(), Report: r, ReplacedAt: time.Now().UTC()}
	s.publish(snap)
	s.notify(snap)
	return true, nil
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.loaded = true
	s.mu.Unlock()
}

// Subscribe returns a channel that receives every snapshot published after
// the call. A slow subscriber only ever holds the latest snapshot. The
// cancel func closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Drop the stale snapshot and deliver the new one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
