package orders

import (
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nuvemflow/orderdesk-backend/api/responses"
	"github.com/nuvemflow/orderdesk-backend/api/validators"
	internalorders "github.com/nuvemflow/orderdesk-backend/internal/orders"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

const maxSearchLength = 200

// List returns one filtered, sorted page of orders merged with their annotations.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Detail returns a single order with its annotation.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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
		view, err := svc.GetOrder(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Attention lists every annotation currently flagged for follow-up.
func Attention(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		list, err := svc.ListAttention(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": list, "count": len(list)})
	}
}

// Counts returns the last persisted unshipped/shipped totals.
func Counts(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		counts, err := svc.GetCounts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

// parseListInput accepts both snake_case and the dashboard's camelCase names.
func parseListInput(r *http.Request) (internalorders.ListInput, error) {
	var input internalorders.ListInput

	page, err := validators.ParseQueryInt(r, queryKey(r, "page"), 1, 1, math.MaxInt32)
	if err != nil {
		return input, err
	}
	perPage, err := validators.ParseQueryInt(r, queryKey(r, "per_page", "perPage"), 0, 1, math.MaxInt32)
	if err != nil {
		return input, err
	}
	overdueOnly, err := validators.ParseQueryBool(r, queryKey(r, "overdue_only", "overdueOnly"))
	if err != nil {
		return input, err
	}
	attentionOnly, err := validators.ParseQueryBool(r, queryKey(r, "attention_only", "attentionOnly"))
	if err != nil {
		return input, err
	}

	input.Page = page
	input.PerPage = perPage
	input.Search = validators.SanitizeString(validators.FirstQuery(r, "search", "searchTerm"), maxSearchLength)
	input.ShippingStatus = strings.ToLower(validators.FirstQuery(r, "shipping_status", "shippingStatus", "shippingStatusFilter"))
	input.OverdueOnly = overdueOnly
	input.AttentionOnly = attentionOnly
	return input, nil
}

// queryKey returns the first key present in the query string, or the first key.
func queryKey(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	for _, key := range keys {
		if q.Has(key) {
			return key
		}
	}
	return keys[0]
}
