package enums

// LifecycleStatus is the earlier two-stage display vocabulary still shown next to
// the shipping status.
type LifecycleStatus string

const (
	LifecycleStatusReadyToPack LifecycleStatus = "ready_to_pack"
	LifecycleStatusSent        LifecycleStatus = "sent"
)

// String implements fmt.Stringer.
func (l LifecycleStatus) String() string {
	return string(l)
}
