package domain

import "fmt"

// Mode scopes every catalog, credential and provider lookup to the Razorpay
// test or live environment. Values from one mode must never reach the other:
// plan ids, offer ids and key secrets are all mode-specific.
type Mode int

const (
	// ModeTest uses the Razorpay test environment.
	ModeTest Mode = iota

	// ModeLive uses the Razorpay live environment.
	ModeLive
)

// ParseMode converts a configuration string into a Mode.
// Only "test" and "live" are accepted; anything else is a configuration error,
// never a silent default.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "test":
		return ModeTest, nil
	case "live":
		return ModeLive, nil
	default:
		return ModeTest, fmt.Errorf("invalid mode %q (want \"test\" or \"live\")", s)
	}
}

// String returns the configuration spelling of the mode.
func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "test"
}
