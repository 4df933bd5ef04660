package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nuvemflow/orderdesk-backend/pkg/nuvemshop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNuvemshop struct {
	lastReq nuvemshop.PageRequest
	page    *nuvemshop.OrdersPage
	order   *nuvemshop.Order
	err     error
}

func (s *stubNuvemshop) FetchOrdersPage(_ context.Context, req nuvemshop.PageRequest) (*nuvemshop.OrdersPage, error) {
	s.lastReq = req
	return s.page, s.err
}

func (s *stubNuvemshop) FetchOrder(context.Context, string) (*nuvemshop.Order, error) {
	return s.order, s.err
}

func decodeOrder(t *testing.T, payload string) nuvemshop.Order {
	t.Helper()
	var order nuvemshop.Order
	require.NoError(t, json.Unmarshal([]byte(payload), &order))
	return order
}

func TestNuvemshopSourceAdaptsPage(t *testing.T) {
	order := decodeOrder(t, `{
		"id": 1001,
		"number": 55,
		"created_at": "2025-03-03T12:00:00+0000",
		"status": "open",
		"shipping_status": "unpacked",
		"next_action": "waiting_packing",
		"total": "99.50",
		"customer": {"first_name": "Ana", "last_name": "Souza", "email": "ana@example.com"}
	}`)
	api := &stubNuvemshop{page: &nuvemshop.OrdersPage{Orders: []nuvemshop.Order{order}, Total: 31}}
	source := NewNuvemshopSource(api)

	raws, total, err := source.FetchOrdersPage(context.Background(), 2, 10, "unpacked")
	require.NoError(t, err)
	assert.Equal(t, nuvemshop.PageRequest{Page: 2, PerPage: 10, ShippingStatus: "unpacked"}, api.lastReq)
	assert.Equal(t, 31, total)
	require.Len(t, raws, 1)
	assert.Equal(t, "1001", raws[0].ID)
	assert.Equal(t, "55", raws[0].Number)
	assert.Equal(t, monday, raws[0].CreatedAt.UTC())
	assert.Equal(t, "waiting_packing", raws[0].NextAction)
	require.NotNil(t, raws[0].Customer)
	assert.Equal(t, "Ana", raws[0].Customer.FirstName)
	assert.True(t, raws[0].Total.Valid)
}

func TestNuvemshopSourceFetchOrder(t *testing.T) {
	api := &stubNuvemshop{order: &nuvemshop.Order{ID: "7", ShippingStatus: "fulfilled"}}
	source := NewNuvemshopSource(api)

	raw, err := source.FetchOrderByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "7", raw.ID)
	assert.Nil(t, raw.Customer)

	api.err = errors.New("down")
	_, err = source.FetchOrderByID(context.Background(), "7")
	require.Error(t, err)
	_, _, err = source.FetchOrdersPage(context.Background(), 1, 1, "any")
	require.Error(t, err)
}
