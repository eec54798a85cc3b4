package server

import (
	"net/http"

	"codelens/internal/gateway/handler"
	"codelens/internal/gateway/middleware"
)

type Handlers struct {
	GithubData *handler.GithubDataHandler
	Report     *handler.ReportHandler
	Watch      *handler.WatchHandler
	Classes    *handler.ClassHandler
	Graphs     *handler.GraphHandler
	Health     *handler.HealthHandler
}

func NewMux(h Handlers) http.Handler {
	mux := http.NewServeMux()

	// Intake
	mux.HandleFunc("/api/github-data", h.GithubData.HandleGithubData)
	mux.HandleFunc("/api/report", h.Report.HandleReport)
	mux.HandleFunc("/api/report/watch", h.Watch.HandleWatch)

	// Views
	mux.HandleFunc("/api/classes", h.Classes.HandleList)
	mux.HandleFunc("/api/classes/{id}", h.Classes.HandleDetail)
	mux.HandleFunc("/api/metrics/system/{view}", h.Classes.HandleSystemMetrics)
	mux.HandleFunc("/api/graphs/inheritance", h.Graphs.HandleInheritance)
	mux.HandleFunc("/api/graphs/classes/{id}/dependencies", h.Graphs.HandleDependencies)
	mux.HandleFunc("/api/graphs/classes/{id}/usage", h.Graphs.HandleUsage)

	mux.HandleFunc("/healthz", h.Health.HandleHealthz)

	// Middleware
	return middleware.CORS(middleware.RequestLog(mux))
}
