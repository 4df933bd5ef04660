package enums

import "testing"

func TestParseShippingStatusFilter(t *testing.T) {
	cases := map[string]string{
		"":          ShippingStatusAny,
		"any":       ShippingStatusAny,
		" ANY ":     ShippingStatusAny,
		"unpacked":  "unpacked",
		"Shipped":   "shipped",
		"unshipped": "unshipped",
	}
	for in, want := range cases {
		got, err := ParseShippingStatusFilter(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %q got %q", in, want, got)
		}
	}
	if _, err := ParseShippingStatusFilter("ready_to_pack"); err == nil {
		t.Fatalf("expected legacy status to be rejected as a filter")
	}
}

func TestShippingStatusIsValid(t *testing.T) {
	if !ShippingStatusUnpacked.IsValid() {
		t.Fatalf("unpacked should be valid")
	}
	if ShippingStatus("partially_packed").IsValid() {
		t.Fatalf("verbatim upstream status should not be a known status")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil || role != UserRoleAdmin {
		t.Fatalf("expected admin, got %q err=%v", role, err)
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatalf("expected owner to be rejected")
	}
}
