package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	internalorders "github.com/nuvemflow/orderdesk-backend/internal/orders"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
)

type stubOrdersService struct {
	listInput internalorders.ListInput
	listErr   error
	saveInput internalorders.SaveNoteInput
	saveErr   error
	deleted   string
	getErr    error
}

func (s *stubOrdersService) ListOrders(ctx context.Context, input internalorders.ListInput) (*internalorders.ListResult, error) {
	s.listInput = input
	if s.listErr != nil {
		return nil, s.listErr
	}
	return &internalorders.ListResult{Orders: []internalorders.OrderView{}, CurrentPage: 1, PerPage: 25}, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, orderID string) (*internalorders.OrderView, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &internalorders.OrderView{Order: internalorders.Order{ID: orderID}}, nil
}

func (s *stubOrdersService) GetNote(ctx context.Context, orderID string) (*internalorders.NoteView, error) {
	return &internalorders.NoteView{OrderID: orderID}, nil
}

func (s *stubOrdersService) SaveNote(ctx context.Context, input internalorders.SaveNoteInput) (*internalorders.NoteView, error) {
	s.saveInput = input
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return &internalorders.NoteView{OrderID: input.OrderID, Note: input.Note, Exists: true}, nil
}

func (s *stubOrdersService) DeleteNote(ctx context.Context, orderID string) error {
	s.deleted = orderID
	return nil
}

func (s *stubOrdersService) ListAttention(ctx context.Context) ([]internalorders.NoteView, error) {
	return []internalorders.NoteView{{OrderID: "1", Attention: true, Exists: true}}, nil
}

func (s *stubOrdersService) GetCounts(ctx context.Context) (*internalorders.CountsView, error) {
	return &internalorders.CountsView{Unshipped: 4, Shipped: 9}, nil
}

func newTestRouter(svc internalorders.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/orders", List(svc, nil))
	r.Get("/orders/attention", Attention(svc, nil))
	r.Get("/orders/counts", Counts(svc, nil))
	r.Get("/orders/{orderId}", Detail(svc, nil))
	r.Get("/orders/{orderId}/note", GetNote(svc, nil))
	r.Post("/orders/{orderId}/note", SaveNote(svc, nil))
	r.Delete("/orders/{orderId}/note", DeleteNote(svc, nil))
	return r
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return payload.Error.Code
}

func TestListParsesQuery(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodGet, "/orders?page=2&perPage=50&search=+Ana+&shipping_status=UNPACKED&overdue_only=true&attentionOnly=1", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	want := internalorders.ListInput{
		Page:           2,
		PerPage:        50,
		Search:         "Ana",
		ShippingStatus: "unpacked",
		OverdueOnly:    true,
		AttentionOnly:  true,
	}
	if svc.listInput != want {
		t.Fatalf("expected %+v got %+v", want, svc.listInput)
	}
}

func TestListDefaultsAndValidation(t *testing.T) {
	svc := &stubOrdersService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.listInput.Page != 1 || svc.listInput.PerPage != 0 {
		t.Fatalf("unexpected defaults %+v", svc.listInput)
	}

	for _, query := range []string{"page=0", "per_page=0", "page=abc", "overdue_only=maybe"} {
		rec := httptest.NewRecorder()
		newTestRouter(&stubOrdersService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", query, rec.Code)
		}
		if code := errorCode(t, rec); code != string(pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation code got %s", query, code)
		}
	}
}

func TestListSurfacesServiceValidation(t *testing.T) {
	svc := &stubOrdersService{listErr: pkgerrors.Invalid("shipping_status", "invalid shipping status")}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?shipping_status=lost", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDetailMapsNotFound(t *testing.T) {
	svc := &stubOrdersService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestStaticRoutesWinOverOrderID(t *testing.T) {
	svc := &stubOrdersService{}
	for _, path := range []string{"/orders/attention", "/orders/counts"} {
		rec := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestSaveNote(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodPost, "/orders/1001/note", strings.NewReader(`{"note":"call customer","attention":true}`))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.saveInput.OrderID != "1001" || svc.saveInput.Note == nil || *svc.saveInput.Note != "call customer" {
		t.Fatalf("unexpected input %+v", svc.saveInput)
	}
	if svc.saveInput.Attention == nil || !*svc.saveInput.Attention {
		t.Fatalf("expected attention flag to be forwarded")
	}
}

func TestSaveNoteRejectsNonStringNote(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodPost, "/orders/1001/note", strings.NewReader(`{"note":123}`))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.saveInput.OrderID != "" {
		t.Fatal("service should not be called on invalid body")
	}
}

func TestSaveNoteWriteFailureIs503(t *testing.T) {
	svc := &stubOrdersService{saveErr: pkgerrors.New(pkgerrors.CodeDependency, "note was not saved")}
	req := httptest.NewRequest(http.MethodPost, "/orders/1001/note", strings.NewReader(`{"attention":false}`))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	svc := &stubOrdersService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/orders/77/note", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.deleted != "77" {
		t.Fatalf("expected delete of 77 got %q", svc.deleted)
	}
}
