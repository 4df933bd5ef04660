package enums

import (
	"fmt"
	"strings"
)

// ShippingStatus is the internal fulfilment stage of an order. Values outside the
// known set are upstream statuses passed through verbatim.
type ShippingStatus string

const (
	ShippingStatusUnshipped ShippingStatus = "unshipped"
	ShippingStatusUnpacked  ShippingStatus = "unpacked"
	ShippingStatusShipped   ShippingStatus = "shipped"
)

// ShippingStatusAny is the filter sentinel that matches every status.
const ShippingStatusAny = "any"

var validShippingStatuses = []ShippingStatus{
	ShippingStatusUnshipped,
	ShippingStatusUnpacked,
	ShippingStatusShipped,
}

// String implements fmt.Stringer.
func (s ShippingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingStatus.
func (s ShippingStatus) IsValid() bool {
	for _, candidate := range validShippingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingStatus converts raw input into a ShippingStatus.
func ParseShippingStatus(value string) (ShippingStatus, error) {
	for _, candidate := range validShippingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping status %q", value)
}

// ParseShippingStatusFilter accepts a status or the "any" sentinel. An empty value
// is treated as "any".
func ParseShippingStatusFilter(value string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || trimmed == ShippingStatusAny {
		return ShippingStatusAny, nil
	}
	status, err := ParseShippingStatus(trimmed)
	if err != nil {
		return "", err
	}
	return status.String(), nil
}
