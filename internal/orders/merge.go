package orders

import (
	"context"

	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const defaultAnnotationConcurrency = 10

// Merger joins orders with their stored annotations.
type Merger struct {
	store   AnnotationReader
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
	limit   int
}

// NewMerger builds a merger; limit bounds concurrent annotation lookups.
func NewMerger(store AnnotationReader, logg *logger.Logger, m *metrics.OrderMetrics, limit int) *Merger {
	if limit <= 0 {
		limit = defaultAnnotationConcurrency
	}
	return &Merger{store: store, logg: logg, metrics: m, limit: limit}
}

// Merge looks up every order's annotation concurrently and returns the views in
// input order. A failed lookup leaves that view without a note or attention flag.
func (m *Merger) Merge(ctx context.Context, page []Order) []OrderView {
	views := make([]OrderView, len(page))
	for i := range page {
		views[i] = OrderView{Order: page[i]}
	}
	if m == nil || m.store == nil || len(page) == 0 {
		return views
	}

	// lookups never return an error so one failure cannot cancel its siblings
	var g errgroup.Group
	g.SetLimit(m.limit)
	for i := range views {
		g.Go(func() error {
			note, err := m.store.Get(ctx, views[i].ID)
			if err != nil {
				m.metrics.AnnotationFailure()
				if m.logg != nil {
					m.logg.Warn(m.logg.WithFields(ctx, map[string]any{
						"order_id": views[i].ID,
						"error":    err.Error(),
					}), "annotation lookup failed")
				}
				return nil
			}
			if note != nil {
				views[i].Note = note.Note
				views[i].Attention = note.Attention
			}
			return nil
		})
	}
	_ = g.Wait()
	return views
}
