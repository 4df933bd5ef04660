package orders

import (
	"context"

	"github.com/nuvemflow/orderdesk-backend/internal/notes"
	"github.com/nuvemflow/orderdesk-backend/pkg/db/models"
)

// Source is the paginated upstream order feed.
type Source interface {
	FetchOrdersPage(ctx context.Context, page, perPage int, statusFilter string) ([]RawOrder, int, error)
	// FetchOrderByID returns a CodeNotFound error for unknown ids.
	FetchOrderByID(ctx context.Context, orderID string) (*RawOrder, error)
}

// AnnotationReader looks up a single annotation; absent annotations are (nil, nil).
type AnnotationReader interface {
	Get(ctx context.Context, orderID string) (*models.OrderNote, error)
}

// AnnotationStore is the operator annotation persistence.
type AnnotationStore interface {
	AnnotationReader
	Set(ctx context.Context, orderID string, update notes.Update) (*models.OrderNote, error)
	Delete(ctx context.Context, orderID string) error
	ListAttention(ctx context.Context) ([]models.OrderNote, error)
}

// CountsStore persists the aggregate counts record.
type CountsStore interface {
	GetCounts(ctx context.Context) (*models.OrderCounts, error)
	SetCounts(ctx context.Context, unshipped, shipped int64) error
}
