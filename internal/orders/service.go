package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nuvemflow/orderdesk-backend/internal/notes"
	"github.com/nuvemflow/orderdesk-backend/pkg/db/models"
	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/pagination"
)

// Service exposes the order pipeline and annotation operations to the API.
type Service interface {
	ListOrders(ctx context.Context, input ListInput) (*ListResult, error)
	GetOrder(ctx context.Context, orderID string) (*OrderView, error)
	GetNote(ctx context.Context, orderID string) (*NoteView, error)
	SaveNote(ctx context.Context, input SaveNoteInput) (*NoteView, error)
	DeleteNote(ctx context.Context, orderID string) error
	ListAttention(ctx context.Context) ([]NoteView, error)
	GetCounts(ctx context.Context) (*CountsView, error)
}

// ListInput carries the list query parameters.
type ListInput struct {
	Page           int
	PerPage        int
	Search         string
	ShippingStatus string
	OverdueOnly    bool
	AttentionOnly  bool
}

// SaveNoteInput is a merge update of one annotation.
type SaveNoteInput struct {
	OrderID   string
	Note      *string
	Attention *bool
}

// NoteView is the annotation as returned to clients.
type NoteView struct {
	OrderID   string     `json:"orderId"`
	Note      *string    `json:"note"`
	Attention bool       `json:"attention"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Exists    bool       `json:"exists"`
}

// CountsView is the persisted aggregate counts record.
type CountsView struct {
	Unshipped int64      `json:"unshipped"`
	Shipped   int64      `json:"shipped"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ServiceParams wires the service collaborators.
type ServiceParams struct {
	Cache          *Cache
	Classifier     *Classifier
	Merger         *Merger
	Annotations    AnnotationStore
	Counts         CountsStore
	Counter        *Counter
	Logger         *logger.Logger
	DefaultPerPage int
}

type service struct {
	cache          *Cache
	classifier     *Classifier
	merger         *Merger
	annotations    AnnotationStore
	counts         CountsStore
	counter        *Counter
	logg           *logger.Logger
	defaultPerPage int
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Cache == nil {
		return nil, fmt.Errorf("order cache required")
	}
	if params.Classifier == nil {
		return nil, fmt.Errorf("classifier required")
	}
	if params.Annotations == nil {
		return nil, fmt.Errorf("annotation store required")
	}
	if params.Counts == nil {
		return nil, fmt.Errorf("counts store required")
	}
	merger := params.Merger
	if merger == nil {
		merger = NewMerger(params.Annotations, params.Logger, nil, 0)
	}
	return &service{
		cache:          params.Cache,
		classifier:     params.Classifier,
		merger:         merger,
		annotations:    params.Annotations,
		counts:         params.Counts,
		counter:        params.Counter,
		logg:           params.Logger,
		defaultPerPage: params.DefaultPerPage,
	}, nil
}

func (s *service) ListOrders(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Page < 0 {
		return nil, pkgerrors.Invalid("page", "page must be at least 1")
	}
	if input.PerPage < 0 {
		return nil, pkgerrors.Invalid("per_page", "per_page must be at least 1")
	}
	status, err := enums.ParseShippingStatusFilter(input.ShippingStatus)
	if err != nil {
		return nil, pkgerrors.Invalid("shipping_status", err.Error())
	}
	params := pagination.Normalize(pagination.Params{Page: input.Page, PerPage: input.PerPage}, s.defaultPerPage)

	page := s.cache.FetchPage(ctx, params.Page, params.PerPage, status)
	views := s.merger.Merge(ctx, page.Orders)
	filtered := s.classifier.Apply(views, FilterOptions{
		Search:         input.Search,
		ShippingStatus: status,
		OverdueOnly:    input.OverdueOnly,
		AttentionOnly:  input.AttentionOnly,
	})

	if s.counter != nil {
		s.counter.RefreshAsync(ctx)
	}

	return &ListResult{
		Orders:      filtered,
		Count:       len(filtered),
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
		CurrentPage: params.Page,
		PerPage:     params.PerPage,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.cache.FetchOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	views := s.merger.Merge(ctx, []Order{s.classifier.Reclassify(*order)})
	return &views[0], nil
}

func (s *service) GetNote(ctx context.Context, orderID string) (*NoteView, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	note, err := s.annotations.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "note could not be loaded")
	}
	if note == nil {
		return &NoteView{OrderID: id}, nil
	}
	view := toNoteView(*note)
	return &view, nil
}

func (s *service) SaveNote(ctx context.Context, input SaveNoteInput) (*NoteView, error) {
	id, err := parseOrderID(input.OrderID)
	if err != nil {
		return nil, err
	}
	update := notes.Update{Note: input.Note, Attention: input.Attention}
	if update.Empty() {
		return nil, pkgerrors.Invalid("note", "note or attention is required")
	}
	if update.Note != nil {
		trimmed := strings.TrimSpace(*update.Note)
		update.Note = &trimmed
	}

	saved, err := s.annotations.Set(ctx, id, update)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "note was not saved")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, id), "order note saved")
	}
	view := toNoteView(*saved)
	return &view, nil
}

func (s *service) DeleteNote(ctx context.Context, orderID string) error {
	id, err := parseOrderID(orderID)
	if err != nil {
		return err
	}
	if err := s.annotations.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "note was not deleted")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, id), "order note deleted")
	}
	return nil
}

func (s *service) ListAttention(ctx context.Context) ([]NoteView, error) {
	rows, err := s.annotations.ListAttention(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attention list could not be loaded")
	}
	out := make([]NoteView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toNoteView(row))
	}
	return out, nil
}

func (s *service) GetCounts(ctx context.Context) (*CountsView, error) {
	counts, err := s.counts.GetCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counts could not be loaded")
	}
	if counts == nil {
		return &CountsView{}, nil
	}
	updatedAt := counts.UpdatedAt
	return &CountsView{Unshipped: counts.Unshipped, Shipped: counts.Shipped, UpdatedAt: &updatedAt}, nil
}

// parseOrderID accepts only positive decimal ids, which is what the upstream issues.
func parseOrderID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", pkgerrors.Invalid("orderId", "order id is required")
	}
	if n, err := strconv.ParseUint(id, 10, 64); err != nil || n == 0 {
		return "", pkgerrors.Invalid("orderId", "invalid order id")
	}
	return id, nil
}

func toNoteView(note models.OrderNote) NoteView {
	updatedAt := note.UpdatedAt
	return NoteView{
		OrderID:   note.OrderID,
		Note:      note.Note,
		Attention: note.Attention,
		UpdatedAt: &updatedAt,
		Exists:    true,
	}
}
