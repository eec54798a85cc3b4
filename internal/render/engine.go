// Package render styles graphs into scenes for the dashboard views and
// exports them as DOT, Mermaid or JSON.
package render

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"

	"codelens/internal/graph"
	"codelens/internal/logger"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SceneKey identifies a cached scene.
type SceneKey struct {
	Revision string
	View     View
	Class    string
}

// Engine loads layouts once and renders graphs into scenes. Only the
// goroutine that wins Init moves the state past Loading.
type Engine struct {
	loader Loader

	mu      sync.Mutex
	state   State
	err     error
	done    chan struct{}
	layouts Layouts

	scenes *lru.Cache[SceneKey, Scene]
}

func NewEngine(loader Loader, cacheSize int) (*Engine, error) {
	if loader == nil {
		loader = DefaultLoader
	}
	if cacheSize <= 0 {
		cacheSize = 256
	}
	scenes, err := lru.New[SceneKey, Scene](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create scene cache")
	}
	return &Engine{loader: loader, done: make(chan struct{}), scenes: scenes}, nil
}

// State returns the current state and, when Failed, the load error.
func (e *Engine) State() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.err
}

// Init runs the loader exactly once. Concurrent callers wait for the first
// one to finish, or for their own ctx.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateReady:
		e.mu.Unlock()
		return nil
	case StateFailed:
		err := e.err
		e.mu.Unlock()
		return err
	case StateLoading:
		done := e.done
		e.mu.Unlock()
		select {
		case <-done:
			_, err := e.State()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.state = StateLoading
	e.mu.Unlock()

	layouts, err := e.loader(ctx)

	e.mu.Lock()
	if err != nil {
		e.state = StateFailed
		e.err = errors.Wrap(err, "load layouts")
	} else {
		e.state = StateReady
		e.layouts = layouts
	}
	err = e.err
	close(e.done)
	e.mu.Unlock()

	if err != nil {
		logger.FromContext(ctx).Errorw("render engine failed to load", logger.FieldError, err.Error())
	}
	return err
}

func (e *Engine) layoutFor(view View) Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.layouts[view]; ok {
		return l
	}
	return DefaultLayouts()[view]
}

// Render styles g for view. A failed engine yields a scene carrying a
// Fallback; Render itself never fails.
func (e *Engine) Render(ctx context.Context, view View, g *graph.Graph) Scene {
	if err := e.Init(ctx); err != nil {
		sc := Scene{View: view, Title: view.Title(), Nodes: []SceneNode{}, Edges: []SceneEdge{}, NoData: g.Empty()}
		sc.Fallback = fallbackFor(view, g, err)
		if g != nil {
			sc.Summary = summary(len(g.Nodes), len(g.Edges), 0)
		}
		return sc
	}
	return buildScene(view, e.layoutFor(view), g)
}

// RenderCached returns the cached scene for key or renders build() and
// caches it. Fallback scenes are not cached.
func (e *Engine) RenderCached(ctx context.Context, key SceneKey, build func() *graph.Graph) Scene {
	if sc, ok := e.scenes.Get(key); ok {
		return sc
	}
	sc := e.Render(ctx, key.View, build())
	if sc.Fallback == nil {
		e.scenes.Add(key, sc)
	}
	return sc
}

// Flush drops every cached scene.
func (e *Engine) Flush() {
	e.scenes.Purge()
}

// CachedScenes is the number of scenes held by the cache.
func (e *Engine) CachedScenes() int {
	return e.scenes.Len()
}
