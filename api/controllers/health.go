package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/parkinglot-manager/api/responses"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one backing service.
type ReadinessCheck struct {
	Name string
	Ping func(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Parking-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports 503 with the failing check names when any probe fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Parking-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var failed []string
		var firstErr error
		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				failed = append(failed, check.Name)
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", check.Name, err)
				}
			}
		}
		if len(failed) > 0 {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, firstErr, "dependency unavailable").
				WithDetails(map[string]any{"failed": failed})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
