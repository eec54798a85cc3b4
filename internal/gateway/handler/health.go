package handler

import (
	"net/http"

	"codelens/internal/render"
	"codelens/internal/store"
)

type HealthHandler struct {
	store  *store.Store
	engine *render.Engine
}

func NewHealthHandler(st *store.Store, engine *render.Engine) *HealthHandler {
	return &HealthHandler{store: st, engine: engine}
}

// HandleHealthz always answers 200 while the process serves requests.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	state, _ := h.engine.State()
	out := map[string]any{
		"ok":           true,
		"store":        h.store.Backend().Name(),
		"engine":       state.String(),
		"cachedScenes": h.engine.CachedScenes(),
	}
	if snap, ok := h.store.Current(); ok {
		out["revision"] = snap.Revision.String()
	}
	writeJSON(w, http.StatusOK, out)
}
