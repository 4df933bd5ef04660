package controllers

import (
	"context"
	"net/http"

	"github.com/nuvemflow/orderdesk-backend/api/responses"
	"github.com/nuvemflow/orderdesk-backend/api/validators"
	"github.com/nuvemflow/orderdesk-backend/internal/refresh"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

type refreshRunner interface {
	Run(ctx context.Context) (*refresh.Summary, error)
	UpdateInterval(minutes int) error
	Status() refresh.Status
}

type intervalRequest struct {
	Minutes int `json:"minutes" validate:"required,gte=5,lte=60"`
}

// RefreshNow runs the shared refresh routine synchronously.
func RefreshNow(scheduler refreshRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scheduler unavailable"))
			return
		}

		summary, err := scheduler.Run(r.Context())
		if err != nil {
			if pkgerrors.As(err) == nil {
				err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh failed")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// RefreshInterval changes the scheduler period; the timer restarts when running.
func RefreshInterval(scheduler refreshRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scheduler unavailable"))
			return
		}

		var body intervalRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := scheduler.UpdateInterval(body.Minutes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, scheduler.Status())
	}
}
