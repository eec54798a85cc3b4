package app

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"

	"codelens/internal/gateway/config"
	"codelens/internal/gateway/handler"
	"codelens/internal/gateway/server"
	"codelens/internal/intake"
	"codelens/internal/logger"
	"codelens/internal/render"
	"codelens/internal/store"
)

type App struct {
	server  *server.Server
	handler http.Handler
	store   *store.Store
	engine  *render.Engine

	stopWatch func()
	watchDone chan struct{}
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := logger.Initialize(cfg.LogJSON); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}
	return Build(context.Background(), cfg)
}

// Build wires the gateway from cfg without reading flags or env.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	// Dependencies
	st, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loader := render.DefaultLoader
	if cfg.Render.LayoutFile != "" {
		loader = render.FileLoader(cfg.Render.LayoutFile)
	}
	engine, err := render.NewEngine(loader, cfg.Render.CacheSize)
	if err != nil {
		return nil, err
	}
	// A failed load is served as fallback scenes, not a startup error.
	_ = engine.Init(ctx)

	client := intake.NewAnalysisClient(intake.ClientConfig{
		BaseURL:       cfg.Analysis.BackendURL,
		APIKey:        cfg.Analysis.APIKey,
		Timeout:       cfg.Analysis.Timeout,
		RatePerMinute: cfg.Analysis.RatePerMinute,
		CacheTTL:      cfg.Analysis.CacheTTL,
	})
	urlIntake := intake.NewURLIntake(client, st)
	fileIntake := intake.NewFileIntake(st, cfg.Upload.MaxBytes)

	// Routing & Server
	mux := server.NewMux(server.Handlers{
		GithubData: handler.NewGithubDataHandler(urlIntake, cfg.Analysis.Timeout),
		Report:     handler.NewReportHandler(fileIntake, st),
		Watch:      handler.NewWatchHandler(st),
		Classes:    handler.NewClassHandler(st),
		Graphs:     handler.NewGraphHandler(st, engine),
		Health:     handler.NewHealthHandler(st, engine),
	})

	a := &App{
		server:  server.New(cfg.Port, mux),
		handler: mux,
		store:   st,
		engine:  engine,
	}
	a.watchReplacements()
	return a, nil
}

// watchReplacements drops cached scenes whenever the report changes.
func (a *App) watchReplacements() {
	ch, cancel := a.store.Subscribe()
	a.stopWatch = cancel
	a.watchDone = make(chan struct{})
	go func() {
		defer close(a.watchDone)
		for snap := range ch {
			a.engine.Flush()
			logger.Named("render").Infow("scene cache flushed", logger.FieldRevision, snap.Revision.String())
		}
	}()
}

// Handler is the full middleware-wrapped router.
func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Store() *store.Store {
	return a.store
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.stopWatch()
	<-a.watchDone
	logger.Cleanup()
	return err
}
