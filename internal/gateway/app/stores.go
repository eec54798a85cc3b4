package app

import (
	"context"

	"github.com/cockroachdb/errors"

	"codelens/internal/gateway/config"
	"codelens/internal/logger"
	"codelens/internal/store"
)

func backendConfig(cfg *config.Config) store.BackendConfig {
	return store.BackendConfig{
		Kind:  store.BackendKind(cfg.Store.Kind),
		Path:  cfg.Store.Path,
		PgDSN: cfg.Store.PgDSN,
		S3: store.S3Config{
			Endpoint:  cfg.Store.S3.Endpoint,
			Region:    cfg.Store.S3.Region,
			AccessKey: cfg.Store.S3.AccessKey,
			SecretKey: cfg.Store.S3.SecretKey,
			Bucket:    cfg.Store.S3.Bucket,
			Prefix:    cfg.Store.S3.Prefix,
			UseSSL:    cfg.Store.S3.UseSSL,
		},
	}
}

// initStore opens the configured backend and restores the last saved report.
// A backend that cannot be read at startup is logged; the gateway starts empty.
func initStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	backend, err := store.NewBackend(ctx, backendConfig(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "init report store")
	}
	st := store.New(backend, cfg.Store.Slot)
	log := logger.Named("store")

	restored, err := st.Restore(ctx)
	switch {
	case err != nil:
		log.Warnw("restore failed", "backend", backend.Name(), "slot", st.Slot(), logger.FieldError, err.Error())
	case restored:
		snap, _ := st.Current()
		log.Infow("report restored", "backend", backend.Name(), "slot", st.Slot(), logger.FieldProject, snap.Report.ProjectName)
	default:
		log.Infow("report store ready", "backend", backend.Name(), "slot", st.Slot())
	}
	return st, nil
}
