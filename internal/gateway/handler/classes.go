package handler

import (
	"net/http"

	"codelens/internal/metrics"
	"codelens/internal/report"
	"codelens/internal/store"
)

type ClassHandler struct {
	store *store.Store
}

func NewClassHandler(st *store.Store) *ClassHandler {
	return &ClassHandler{store: st}
}

func (h *ClassHandler) currentReport() *report.Report {
	snap, ok := h.store.Current()
	if !ok {
		return nil
	}
	return snap.Report
}

func (h *ClassHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	classes := h.currentReport().ClassSummaries(q.Get("q"), report.ParseSortBy(q.Get("sort")))
	if classes == nil {
		classes = []report.ClassSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"classes": classes,
		"noData":  len(classes) == 0,
	})
}

func (h *ClassHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	c, ok := h.currentReport().Class(r.PathValue("id"))
	if !ok {
		writeFailure(w, http.StatusNotFound, "Class not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      c.ID,
		"class":   c,
		"metrics": metrics.ClassView(c),
	})
}

func (h *ClassHandler) HandleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	view, ok := metrics.ParseSystemView(r.PathValue("view"))
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Unknown metrics view")
		return
	}
	writeJSON(w, http.StatusOK, metrics.SystemView(h.currentReport(), view))
}
