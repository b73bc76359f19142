package services

import (
	"context"
	"errors"
	"strings"

	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/localnerve/portfolio-site/internal/utils"
	"github.com/sirupsen/logrus"
)

// Component statuses reported by Diagnose.
const (
	StatusOK            = "ok"
	StatusNotConfigured = "not_configured"
	StatusUnreachable   = "unreachable"
	StatusMissing       = "missing"
	StatusDenied        = "permission_denied"
	StatusError         = "error"
	StatusSkipped       = "skipped"
)

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Diagnostics is the result of a health check. Schema carries the error kind
// the admin gate branches on.
type Diagnostics struct {
	Status       string            `json:"status"`
	Missing      []string          `json:"missing,omitempty"`
	Database     string            `json:"database"`
	Schema       string            `json:"schema"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every component is usable.
func (d Diagnostics) Healthy() bool {
	return d.Status == "healthy"
}

// Configured reports whether configuration was complete.
func (d Diagnostics) Configured() bool {
	return len(d.Missing) == 0
}

// SchemaReady reports whether the database and its schema answered.
func (d Diagnostics) SchemaReady() bool {
	return d.Database == StatusOK && d.Schema == StatusOK
}

func (d *Diagnostics) fail(component, msg string) {
	d.Status = "unhealthy"
	d.Details[component+"_error"] = msg
	if d.ErrorMessage == "" {
		d.ErrorMessage = msg
	} else {
		d.ErrorMessage += "; " + msg
	}
}

// Diagnose checks configuration, database reachability, the schema and the
// identity provider, in that order. authz may be nil.
func Diagnose(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, authz Pinger) Diagnostics {
	log := logrus.WithField("component", "health")
	d := Diagnostics{
		Status:     "healthy",
		Database:   StatusSkipped,
		Schema:     StatusSkipped,
		Authorizer: StatusSkipped,
		Details:    make(map[string]string),
	}

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		d.Missing = missing
		d.Database = StatusNotConfigured
		d.fail("config", "missing configuration: "+strings.Join(missing, ", "))
		log.WithField("missing", missing).Warn("health check failed - configuration")
		return d
	}

	if gw == nil || !gw.Configured() {
		d.Database = StatusNotConfigured
		d.fail("database", "database is not connected")
		log.Warn("health check failed - database not connected")
		return d
	}

	if err := gw.Ping(ctx); err != nil {
		d.Database = StatusUnreachable
		d.fail("database", utils.SanitizeErr(err))
		log.WithError(err).Warn("health check failed - database ping")
		return d
	}
	d.Database = StatusOK
	d.Details["database_type"] = cfg.DBType

	if err := gw.CheckSchema(ctx); err != nil {
		switch {
		case errors.Is(err, types.ErrSchemaMissing):
			d.Schema = StatusMissing
		case errors.Is(err, types.ErrPermissionDenied):
			d.Schema = StatusDenied
		default:
			d.Schema = StatusError
		}
		d.fail("schema", utils.SanitizeErr(err))
		log.WithError(err).Warn("health check failed - schema")
	} else {
		d.Schema = StatusOK
	}

	if authz != nil {
		if err := authz.Ping(ctx); err != nil {
			d.Authorizer = StatusUnreachable
			d.fail("authorizer", utils.SanitizeErr(err))
			log.WithError(err).Warn("health check failed - authorizer ping")
		} else {
			d.Authorizer = StatusOK
			d.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	if d.Healthy() {
		log.Debug("health check passed - all systems operational")
	}
	return d
}
