package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/nuvemflow/orderdesk-backend/api/responses"
	"github.com/nuvemflow/orderdesk-backend/internal/orders"
	"github.com/nuvemflow/orderdesk-backend/internal/refresh"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

type schedulerStatus interface {
	Status() refresh.Status
}

type cacheStats interface {
	Stats() orders.CacheStats
}

type statusResponse struct {
	Scheduler   refresh.Status    `json:"scheduler"`
	Cache       orders.CacheStats `json:"cache"`
	Annotations annotationStatus  `json:"annotations"`
	Timestamp   time.Time         `json:"timestamp"`
}

type annotationStatus struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// Status reports the scheduler state, cache contents and annotation store reachability.
func Status(scheduler schedulerStatus, cache cacheStats, store Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil || cache == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "status unavailable"))
			return
		}

		resp := statusResponse{
			Scheduler: scheduler.Status(),
			Cache:     cache.Stats(),
			Timestamp: time.Now().UTC(),
		}
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				resp.Annotations.Error = err.Error()
			} else {
				resp.Annotations.Connected = true
			}
		}
		responses.WriteSuccess(w, resp)
	}
}
