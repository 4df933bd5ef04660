package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/types"
)

// WriteSuccess writes data in the success envelope with 200.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data, Timestamp: time.Now().UTC()})
}

// WriteError maps err onto its code's status and public message. Untyped
// errors become INTERNAL_ERROR and never leak their text to the client.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := types.APIError{
		Code:      string(typed.Code()),
		Message:   publicMessage(typed, meta),
		Retryable: meta.Retryable,
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	if logg != nil {
		logFailure(ctx, logg, err, typed, meta.HTTPStatus)
	}
	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr, Timestamp: time.Now().UTC()})
}

func publicMessage(typed *pkgerrors.Error, meta pkgerrors.Metadata) string {
	if typed.Code() == pkgerrors.CodeInternal || typed.Message() == "" {
		return meta.PublicMessage
	}
	return typed.Message()
}

// logFailure logs 5xx as errors with a dump of the chain and 4xx as warnings.
func logFailure(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error, status int) {
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"error":       dump.TopMessage,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
		"http_status": status,
	}
	if dump.PGCode != "" {
		fields["pg_code"] = dump.PGCode
		fields["pg_detail"] = dump.PGDetail
		fields["pg_message"] = dump.PGMessage
		fields["pg_table"] = dump.PGTable
		fields["pg_constraint"] = dump.PGConstraint
	}
	if dm, ok := typed.Details().(map[string]any); ok {
		if field, ok := dm["field"]; ok {
			fields["field"] = field
		}
	}

	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

// writeJSON marks every API payload uncacheable; bodies carry tokens and
// per-operator annotations.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	// the status line is already sent; an encode failure here means the client went away
	_ = json.NewEncoder(w).Encode(payload)
}
