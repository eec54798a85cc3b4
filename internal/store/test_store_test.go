package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codelens/internal/report"
)

const sampleDoc = `{
  "projectName": "demo",
  "classes": {"c1": {"name": "Cart", "package": "shop", "metrics": {"NOM": 3}}},
  "systemMetrics": {"MHF": 0.4},
  "inheritance": {"Cart": {"type": "CLASS", "list": []}}
}`

func decode(t *testing.T, doc string) *report.Report {
	t.Helper()
	r, err := report.Decode([]byte(doc))
	require.NoError(t, err)
	return r
}

type failingBackend struct{ MemoryBackend }

func (failingBackend) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestReplaceRoundTrip(t *testing.T) {
	s := New(NewMemoryBackend(), "")
	_, ok := s.Current()
	assert.False(t, ok)

	r := decode(t, sampleDoc)
	snap, err := s.Replace(context.Background(), r)
	require.NoError(t, err)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, snap.Revision, cur.Revision)
	assert.Same(t, r, cur.Report)
	assert.Equal(t, "demo", cur.Report.ProjectName)

	c, ok := cur.Report.Class("Cart")
	require.True(t, ok)
	assert.Equal(t, 3.0, c.Metrics["NOM"].Number)
}

func TestReplaceFailureKeepsPreviousSnapshot(t *testing.T) {
	mem := NewMemoryBackend()
	s := New(mem, "slot")
	first, err := s.Replace(context.Background(), decode(t, sampleDoc))
	require.NoError(t, err)

	s.backend = &failingBackend{}
	_, err = s.Replace(context.Background(), decode(t, `{"projectName":"other"}`))
	require.Error(t, err)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, first.Revision, cur.Revision)
	assert.Equal(t, "demo", cur.Report.ProjectName)
}

func TestSubscribeReceivesLatest(t *testing.T) {
	s := New(nil, "")
	ch, cancel := s.Subscribe()
	defer cancel()

	ctx := context.Background()
	_, err := s.Replace(ctx, decode(t, `{"projectName":"one"}`))
	require.NoError(t, err)
	last, err := s.Replace(ctx, decode(t, `{"projectName":"two"}`))
	require.NoError(t, err)

	select {
	case snap := <-ch:
		assert.Equal(t, last.Revision, snap.Revision)
		assert.Equal(t, "two", snap.Report.ProjectName)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := New(nil, "")
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	_, err := s.Replace(context.Background(), decode(t, sampleDoc))
	require.NoError(t, err)
}

func TestFileBackendPersistsAcrossStores(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	ctx := context.Background()
	first := New(b, DefaultSlot)
	_, err = first.Replace(ctx, decode(t, sampleDoc))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, DefaultSlot+".json"))
	require.NoError(t, err)

	second := New(b, DefaultSlot)
	restored, err := second.Restore(ctx)
	require.NoError(t, err)
	require.True(t, restored)

	cur, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, "demo", cur.Report.ProjectName)
	assert.JSONEq(t, sampleDoc, string(cur.Report.Raw))
}

func TestRestoreMissingAndCorruptSlots(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s := New(mem, "empty")

	restored, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, restored)

	require.NoError(t, mem.Save(ctx, "empty", []byte("[1,2,3]")))
	restored, err = s.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestBackendSlotValidation(t *testing.T) {
	b := NewMemoryBackend()
	_, err := b.Load(context.Background(), "../etc")
	assert.Error(t, err)
	_, err = b.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestNewBackendSelection(t *testing.T) {
	ctx := context.Background()

	b, err := NewBackend(ctx, BackendConfig{})
	require.NoError(t, err)
	assert.Equal(t, "memory", b.Name())

	b, err = NewBackend(ctx, BackendConfig{Path: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "file", b.Name())

	_, err = NewBackend(ctx, BackendConfig{Kind: "redis"})
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = NewBackend(ctx, BackendConfig{Kind: BackendS3})
	require.Error(t, err)
}
