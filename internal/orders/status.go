package orders

import (
	"strings"

	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
)

const unknownCustomer = "Unknown Customer"

// upstream shipping sub-status values
const (
	upstreamUnfulfilled = "unfulfilled"
	upstreamFulfilled   = "fulfilled"
	upstreamUnpacked    = "unpacked"
	upstreamPacked      = "packed"
	upstreamShipped     = "shipped"

	upstreamStatusOpen = "open"

	nextActionWaitingPacking  = "waiting_packing"
	nextActionWaitingShipment = "waiting_shipment"
)

// NormalizeStatus maps the upstream status fields onto the internal shipping
// status. Unknown sub-statuses pass through verbatim; with no sub-status the main
// lifecycle status is used.
func NormalizeStatus(raw RawOrder) enums.ShippingStatus {
	sub := strings.TrimSpace(raw.ShippingStatus)
	switch strings.ToLower(sub) {
	case upstreamUnfulfilled:
		return enums.ShippingStatusUnshipped
	case upstreamFulfilled:
		return enums.ShippingStatusShipped
	case upstreamUnpacked:
		return enums.ShippingStatusUnpacked
	}
	if sub != "" {
		return enums.ShippingStatus(sub)
	}
	return enums.ShippingStatus(strings.TrimSpace(raw.Status))
}

// LegacyStatus derives the older ready_to_pack/sent display status.
func LegacyStatus(raw RawOrder) string {
	main := strings.ToLower(strings.TrimSpace(raw.Status))
	sub := strings.ToLower(strings.TrimSpace(raw.ShippingStatus))
	next := strings.ToLower(strings.TrimSpace(raw.NextAction))

	if main == upstreamStatusOpen {
		if sub == upstreamUnpacked || next == nextActionWaitingPacking {
			return enums.LifecycleStatusReadyToPack.String()
		}
		if sub == upstreamPacked || sub == upstreamShipped || next == nextActionWaitingShipment {
			return enums.LifecycleStatusSent.String()
		}
	}
	return strings.TrimSpace(raw.Status)
}

// ExtractCustomerName picks the best available customer name.
func ExtractCustomerName(raw RawOrder) string {
	if raw.Customer == nil {
		return unknownCustomer
	}
	if name := strings.TrimSpace(raw.Customer.Name); name != "" {
		return name
	}
	first := strings.TrimSpace(raw.Customer.FirstName)
	last := strings.TrimSpace(raw.Customer.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return unknownCustomer
	}
}
