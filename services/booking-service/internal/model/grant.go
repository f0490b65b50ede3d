package model

import "time"

// Grant tracks the one-time new-client discount. Applied is sticky: once set
// the grant can never become available again.
type Grant struct {
	Percentage int        `json:"percentage"`
	Shown      bool       `json:"shown"`
	Available  bool       `json:"available"`
	Applied    bool       `json:"applied"`
	GrantedAt  *time.Time `json:"grantedAt,omitempty"`
}

// Redeemable reports whether the grant may still be consumed by a booking.
func (g *Grant) Redeemable() bool {
	return g != nil && g.Available && !g.Applied
}
