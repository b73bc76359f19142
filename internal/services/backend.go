package services

import (
	"context"
	"time"

	"github.com/localnerve/portfolio-site/internal/cache"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/database"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/sirupsen/logrus"
)

// OpenGateway connects the configured database and optionally migrates it.
// Missing configuration or a failed connection yields an unconfigured gateway
// rather than an error, so the process can still report ENV_MISSING. The
// returned close func is always safe to call.
func OpenGateway(cfg *config.Config, migrate bool) (*gateway.Gateway, func()) {
	log := logrus.WithField("component", "backend")
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		log.WithField("missing", missing).Warn("backend configuration incomplete")
		return gateway.Unconfigured(missing), func() {}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		return gateway.Unconfigured(nil), func() {}
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
	}

	if migrate {
		if err := database.AutoMigrate(db); err != nil {
			// Left for the schema check to report
			log.WithError(err).Error("failed to run migrations")
		}
	}
	return gateway.New(db), closeDB
}

// OpenCache returns a Redis backed cache when url is set, else an in-process one.
// A Redis that does not answer falls back to memory.
func OpenCache(ctx context.Context, url string) (*cache.Cache, func()) {
	if url == "" {
		return cache.New(cache.NewMemory(nil)), func() {}
	}
	log := logrus.WithField("component", "cache")
	r, err := cache.NewRedis(url, "portfolio:")
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = r.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = r.Close()
		}
	}
	if err != nil {
		log.WithError(err).Warn("redis unavailable, using memory cache")
		return cache.New(cache.NewMemory(nil)), func() {}
	}
	log.Info("using redis cache")
	return cache.New(r), func() { _ = r.Close() }
}
