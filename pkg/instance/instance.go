package instance

import (
	"os"

	"github.com/nuvemflow/orderdesk-backend/pkg/env"
)

const fallbackID = "orderdesk-0"

// ID identifies this replica in logs and lock values. ORDERDESK_INSTANCE_ID
// wins, then the platform's DYNO name, then the hostname.
func ID() string {
	if id := env.First("ORDERDESK_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
