package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/dukahub/dukahub-backend/api/responses"
	"github.com/dukahub/dukahub-backend/pkg/config"
	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
	"github.com/dukahub/dukahub-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is the connectivity probe implemented by the backing stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessChecks lists the dependencies probed by the readiness endpoint.
// Nil entries are skipped so optional dependencies do not fail the check.
type ReadinessChecks struct {
	DB     Pinger
	Redis  Pinger
	PubSub Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DukaHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, checks ReadinessChecks, logg *logger.Logger) http.HandlerFunc {
	probes := []struct {
		name   string
		pinger Pinger
	}{
		{"postgres", checks.DB},
		{"redis", checks.Redis},
		{"pubsub", checks.PubSub},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DukaHub-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var errs []error
		status := map[string]string{}
		for _, probe := range probes {
			if probe.pinger == nil {
				continue
			}
			if err := probe.pinger.Ping(ctx); err != nil {
				errs = append(errs, err)
				status[probe.name] = "down"
				continue
			}
			status[probe.name] = "up"
		}

		if combined := multierr.Combine(errs...); combined != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependencies unavailable").
				WithDetails(status)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status":       "ready",
			"dependencies": status,
		})
	}
}
