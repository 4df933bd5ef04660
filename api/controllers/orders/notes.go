package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nuvemflow/orderdesk-backend/api/responses"
	"github.com/nuvemflow/orderdesk-backend/api/validators"
	internalorders "github.com/nuvemflow/orderdesk-backend/internal/orders"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

type saveNoteRequest struct {
	Note      *string `json:"note"`
	Attention *bool   `json:"attention"`
}

// GetNote returns the annotation for an order, or an empty one when none exists.
func GetNote(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		note, err := svc.GetNote(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, note)
	}
}

// SaveNote merges the provided fields into the order's annotation.
func SaveNote(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body saveNoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID := chi.URLParam(r, "orderId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID)
		}
		note, err := svc.SaveNote(ctx, internalorders.SaveNoteInput{
			OrderID:   orderID,
			Note:      body.Note,
			Attention: body.Attention,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, note)
	}
}

// DeleteNote removes the annotation for an order.
func DeleteNote(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID := chi.URLParam(r, "orderId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID)
		}
		if err := svc.DeleteNote(ctx, orderID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orderId": orderID, "deleted": true})
	}
}
