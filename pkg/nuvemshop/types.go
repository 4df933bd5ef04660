package nuvemshop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order mirrors the subset of the Nuvemshop order payload the dashboard reads.
// Every field is optional on the wire; zero values mean "absent".
type Order struct {
	ID             ID        `json:"id"`
	Number         ID        `json:"number"`
	CreatedAt      Timestamp `json:"created_at"`
	Status         string    `json:"status"`
	ShippingStatus string    `json:"shipping_status"`
	PaymentStatus  string    `json:"payment_status"`
	NextAction     string    `json:"next_action"`
	Total          Amount    `json:"total"`
	Currency       string    `json:"currency"`
	Customer       *Customer `json:"customer"`
}

type Customer struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ID accepts both JSON numbers and strings and keeps the textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp parses the handful of date layouts the API has used. A value that
// matches none of them decodes to the zero time instead of failing the payload.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if parsed, ok := ParseTimestamp(raw); ok {
		t.Time = parsed
	}
	return nil
}

// ParseTimestamp tries each known layout in turn.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}

// Amount is a money value sent either as a string or a number.
type Amount struct {
	decimal.NullDecimal
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var parsed decimal.NullDecimal
	if err := parsed.UnmarshalJSON(data); err != nil {
		a.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	a.NullDecimal = parsed
	return nil
}
