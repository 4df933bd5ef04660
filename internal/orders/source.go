package orders

import (
	"context"

	"github.com/nuvemflow/orderdesk-backend/pkg/nuvemshop"
)

type nuvemshopAPI interface {
	FetchOrdersPage(ctx context.Context, req nuvemshop.PageRequest) (*nuvemshop.OrdersPage, error)
	FetchOrder(ctx context.Context, orderID string) (*nuvemshop.Order, error)
}

type nuvemshopSource struct {
	api nuvemshopAPI
}

// NewNuvemshopSource exposes the Nuvemshop client as an order Source.
func NewNuvemshopSource(api nuvemshopAPI) Source {
	return &nuvemshopSource{api: api}
}

func (s *nuvemshopSource) FetchOrdersPage(ctx context.Context, page, perPage int, statusFilter string) ([]RawOrder, int, error) {
	result, err := s.api.FetchOrdersPage(ctx, nuvemshop.PageRequest{
		Page:           page,
		PerPage:        perPage,
		ShippingStatus: statusFilter,
	})
	if err != nil {
		return nil, 0, err
	}
	raws := make([]RawOrder, 0, len(result.Orders))
	for _, o := range result.Orders {
		raws = append(raws, FromNuvemshop(o))
	}
	return raws, result.Total, nil
}

func (s *nuvemshopSource) FetchOrderByID(ctx context.Context, orderID string) (*RawOrder, error) {
	order, err := s.api.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	raw := FromNuvemshop(*order)
	return &raw, nil
}
