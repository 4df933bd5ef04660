package orders

import (
	"slices"
	"strings"

	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
)

// FilterOptions are the client-side list filters. All of them compose by AND.
type FilterOptions struct {
	Search         string
	ShippingStatus string
	OverdueOnly    bool
	AttentionOnly  bool
}

// Apply filters views and returns them in display order. Overdue is recomputed
// with the classifier rather than read from the cached flag.
func (c *Classifier) Apply(views []OrderView, opts FilterOptions) []OrderView {
	term := strings.ToLower(strings.TrimSpace(opts.Search))
	status := strings.TrimSpace(opts.ShippingStatus)
	if status == "" {
		status = enums.ShippingStatusAny
	}

	out := make([]OrderView, 0, len(views))
	for _, v := range views {
		v.Order = c.Reclassify(v.Order)
		if term != "" && !matchesSearch(v, term) {
			continue
		}
		if status != enums.ShippingStatusAny && string(v.ShippingStatus) != status {
			continue
		}
		if opts.OverdueOnly && !v.IsOverdue {
			continue
		}
		if opts.AttentionOnly && !v.Attention {
			continue
		}
		out = append(out, v)
	}

	SortViews(out)
	return out
}

// SortViews orders views by overdue, then attention, then most recent first.
// The sort is stable.
func SortViews(views []OrderView) {
	slices.SortStableFunc(views, compareViews)
}

func compareViews(a, b OrderView) int {
	if a.IsOverdue != b.IsOverdue {
		if a.IsOverdue {
			return -1
		}
		return 1
	}
	if a.Attention != b.Attention {
		if a.Attention {
			return -1
		}
		return 1
	}
	return b.OrderDate.Compare(a.OrderDate)
}

func matchesSearch(v OrderView, term string) bool {
	return strings.Contains(strings.ToLower(v.ID), term) ||
		strings.Contains(strings.ToLower(v.CustomerName), term)
}
