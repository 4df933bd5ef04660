package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nuvemflow/orderdesk-backend/api/responses"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

// rateLimiterStore is satisfied by *redis.Client.
type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Request bodies inspected for keys are small JSON documents.
const maxRateLimitBody = 64 << 10

// KeyFunc derives the counter key for a request. An empty key skips the rule.
type KeyFunc func(r *http.Request) (string, error)

// RateRule is one fixed-window counter: at most Limit requests per Window for
// each distinct key.
type RateRule struct {
	Name    string
	Window  time.Duration
	Limit   int
	Key     KeyFunc
	Message string
}

func (rule RateRule) enabled() bool {
	return rule.Window > 0 && rule.Limit > 0 && rule.Key != nil
}

// RateLimit applies rules in order and rejects with 429 on the first one exhausted.
func RateLimit(store rateLimiterStore, logg *logger.Logger, rules ...RateRule) func(http.Handler) http.Handler {
	active := make([]RateRule, 0, len(rules))
	for _, rule := range rules {
		if rule.enabled() {
			active = append(active, rule)
		}
	}

	return func(next http.Handler) http.Handler {
		if store == nil || len(active) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, rule := range active {
				key, err := rule.Key(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				if key == "" {
					continue
				}
				allowed, count, err := store.FixedWindowAllow(ctx, rule.Name+":"+key, int64(rule.Limit), rule.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					rejectRateLimited(ctx, logg, w, rule, key, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, rule RateRule, key string, count int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"rule":           rule.Name,
			"key":            key,
			"attempts":       count,
			"limit":          rule.Limit,
			"window_seconds": int(rule.Window.Seconds()),
		}), "rate_limit.blocked")
	}
	msg := rule.Message
	if msg == "" {
		msg = "too many requests"
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(rule.Window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, msg))
}

// ByClientIP keys on the caller address, honouring proxy headers.
func ByClientIP(r *http.Request) (string, error) {
	ip := clientIP(r)
	if ip == "" {
		return "", nil
	}
	return "ip:" + ip, nil
}

// ByUserID keys on the authenticated operator; it must run after Auth.
func ByUserID(r *http.Request) (string, error) {
	id := UserIDFromContext(r.Context())
	if id == "" {
		return "", nil
	}
	return "user:" + id, nil
}

// ByJSONField keys on a hashed, lower-cased string field of the JSON body.
// The body is buffered and restored for the next handler.
func ByJSONField(field string) KeyFunc {
	return func(r *http.Request) (string, error) {
		if r.Body == nil {
			return "", nil
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
		if err != nil {
			return "", err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var doc map[string]any
		if json.Unmarshal(body, &doc) != nil {
			return "", nil
		}
		value, _ := doc[field].(string)
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return "", nil
		}
		sum := sha256.Sum256([]byte(value))
		return field + ":" + hex.EncodeToString(sum[:]), nil
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
