package orders

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nuvemflow/orderdesk-backend/internal/notes"
	"github.com/nuvemflow/orderdesk-backend/pkg/db/models"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/rs/zerolog"
)

// Monday 2025-03-03 .. Sunday 2025-03-09
var (
	monday   = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	tuesday  = monday.AddDate(0, 0, 1)
	thursday = monday.AddDate(0, 0, 3)
	friday   = monday.AddDate(0, 0, 4)
	saturday = monday.AddDate(0, 0, 5)
	sunday   = monday.AddDate(0, 0, 6)
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stubSource struct {
	pageCalls  atomic.Int32
	orderCalls atomic.Int32
	pages      map[string][]RawOrder
	totals     map[string]int
	orders     map[string]RawOrder
	pageErr    error
	orderErr   error
}

func (s *stubSource) FetchOrdersPage(_ context.Context, page, perPage int, statusFilter string) ([]RawOrder, int, error) {
	s.pageCalls.Add(1)
	if s.pageErr != nil {
		return nil, 0, s.pageErr
	}
	key := PageKey(page, perPage, statusFilter)
	raws := s.pages[key]
	total, ok := s.totals[key]
	if !ok {
		total = len(raws)
	}
	return raws, total, nil
}

func (s *stubSource) FetchOrderByID(_ context.Context, orderID string) (*RawOrder, error) {
	s.orderCalls.Add(1)
	if s.orderErr != nil {
		return nil, s.orderErr
	}
	raw, ok := s.orders[orderID]
	if !ok {
		return nil, errors.New("unexpected order id " + orderID)
	}
	return &raw, nil
}

type stubAnnotations struct {
	mu        sync.Mutex
	notes     map[string]models.OrderNote
	getErrs   map[string]error
	setErr    error
	deleteErr error
	listErr   error
	lastSet   notes.Update
	gets      atomic.Int32
}

func (s *stubAnnotations) Get(_ context.Context, orderID string) (*models.OrderNote, error) {
	s.gets.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.getErrs[orderID]; err != nil {
		return nil, err
	}
	note, ok := s.notes[orderID]
	if !ok {
		return nil, nil
	}
	return &note, nil
}

func (s *stubAnnotations) Set(_ context.Context, orderID string, update notes.Update) (*models.OrderNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSet = update
	if s.setErr != nil {
		return nil, s.setErr
	}
	if s.notes == nil {
		s.notes = map[string]models.OrderNote{}
	}
	note := s.notes[orderID]
	note.OrderID = orderID
	if update.Note != nil {
		note.Note = update.Note
	}
	if update.Attention != nil {
		note.Attention = *update.Attention
	}
	note.UpdatedAt = monday
	s.notes[orderID] = note
	return &note, nil
}

func (s *stubAnnotations) Delete(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.notes, orderID)
	return nil
}

func (s *stubAnnotations) ListAttention(context.Context) ([]models.OrderNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.OrderNote
	for _, note := range s.notes {
		if note.Attention {
			out = append(out, note)
		}
	}
	return out, nil
}

type stubCounts struct {
	mu        sync.Mutex
	counts    *models.OrderCounts
	getErr    error
	setErr    error
	setCalls  int
	unshipped int64
	shipped   int64
}

func (s *stubCounts) GetCounts(context.Context) (*models.OrderCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts, s.getErr
}

func (s *stubCounts) SetCounts(_ context.Context, unshipped, shipped int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.unshipped, s.shipped = unshipped, shipped
	return nil
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
