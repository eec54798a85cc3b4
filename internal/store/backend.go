package store

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrSlotNotFound is returned by Backend.Load when nothing was saved under a slot.
var ErrSlotNotFound = errors.New("report slot not found")

// Backend persists the raw report document under a named slot.
type Backend interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, raw []byte) error
	Name() string
}

type BackendKind string

const (
	BackendMemory   BackendKind = "memory"
	BackendFile     BackendKind = "file"
	BackendPostgres BackendKind = "postgres"
	BackendS3       BackendKind = "s3"
)

type BackendConfig struct {
	Kind  BackendKind
	Path  string
	PgDSN string
	S3    S3Config
}

// NewBackend builds the configured backend. An empty kind picks postgres
// when a DSN is set, s3 when an endpoint is set, file when a path is set and
// memory otherwise.
func NewBackend(ctx context.Context, cfg BackendConfig) (Backend, error) {
	kind := BackendKind(strings.ToLower(strings.TrimSpace(string(cfg.Kind))))
	if kind == "" {
		switch {
		case strings.TrimSpace(cfg.PgDSN) != "":
			kind = BackendPostgres
		case strings.TrimSpace(cfg.S3.Endpoint) != "":
			kind = BackendS3
		case strings.TrimSpace(cfg.Path) != "":
			kind = BackendFile
		default:
			kind = BackendMemory
		}
	}
	switch kind {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendFile:
		return NewFileBackend(cfg.Path)
	case BackendPostgres:
		return NewPostgresBackend(ctx, cfg.PgDSN)
	case BackendS3:
		return NewS3Backend(cfg.S3)
	default:
		return nil, errors.WithHint(
			errors.Newf("unknown report store %q", kind),
			"REPORT_STORE must be one of memory, file, postgres, s3",
		)
	}
}

func normalizeSlot(slot string) (string, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return "", errors.New("slot is required")
	}
	if strings.ContainsAny(slot, `/\`) || slot == "." || slot == ".." {
		return "", errors.Newf("invalid slot name %q", slot)
	}
	return slot, nil
}

// setupGate runs a setup step until it succeeds once. Failures are not
// remembered, so a transient error is retried on the next call.
type setupGate struct {
	mu   sync.Mutex
	done bool
}

func (g *setupGate) run(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	g.done = true
	return nil
}
