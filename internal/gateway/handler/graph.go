package handler

import (
	"net/http"
	"strings"

	"codelens/internal/graph"
	"codelens/internal/logger"
	"codelens/internal/render"
	"codelens/internal/report"
	"codelens/internal/store"
)

type GraphHandler struct {
	store  *store.Store
	engine *render.Engine
}

func NewGraphHandler(st *store.Store, engine *render.Engine) *GraphHandler {
	return &GraphHandler{store: st, engine: engine}
}

// HandleInheritance serves the inheritance scene. ?highlight=<id> focuses a
// node, ?format=dot|mermaid|json picks the encoding.
func (h *GraphHandler) HandleInheritance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Unknown export format")
		return
	}

	var sc render.Scene
	if snap, ok := h.store.Current(); ok {
		key := render.SceneKey{Revision: snap.Revision.String(), View: render.ViewInheritance}
		sc = h.engine.RenderCached(r.Context(), key, func() *graph.Graph {
			return graph.BuildInheritance(snap.Report)
		})
	} else {
		sc = h.engine.Render(r.Context(), render.ViewInheritance, graph.New())
	}
	if id := strings.TrimSpace(r.URL.Query().Get("highlight")); id != "" {
		sc = render.Highlight(sc, id)
	}
	h.writeScene(w, r, sc, format)
}

func (h *GraphHandler) HandleDependencies(w http.ResponseWriter, r *http.Request) {
	h.classScene(w, r, render.ViewDependencies, graph.BuildClassDependencies)
}

func (h *GraphHandler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	h.classScene(w, r, render.ViewUsage, graph.BuildClassUsage)
}

func (h *GraphHandler) classScene(w http.ResponseWriter, r *http.Request, view render.View, build func(report.ClassInfo) *graph.Graph) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Unknown export format")
		return
	}
	snap, ok := h.store.Current()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Class not found")
		return
	}
	c, ok := snap.Report.Class(r.PathValue("id"))
	if !ok {
		writeFailure(w, http.StatusNotFound, "Class not found")
		return
	}
	key := render.SceneKey{Revision: snap.Revision.String(), View: view, Class: c.ID}
	sc := h.engine.RenderCached(r.Context(), key, func() *graph.Graph { return build(c) })
	if id := strings.TrimSpace(r.URL.Query().Get("highlight")); id != "" {
		sc = render.Highlight(sc, id)
	}
	h.writeScene(w, r, sc, format)
}

func (h *GraphHandler) writeScene(w http.ResponseWriter, r *http.Request, sc render.Scene, format render.Format) {
	body, err := render.Export(sc, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sc.Fallback != nil {
		logger.FromContext(r.Context()).Warnw("serving fallback scene",
			"view", string(sc.View),
			"reason", sc.Fallback.Reason,
		)
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(body)
}
