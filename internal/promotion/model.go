package promotion

import "time"

type DiscountType string

const (
	TypePercent DiscountType = "PERCENT"
	TypeFixed   DiscountType = "FIXED"
)

// Promotion is a redeemable discount code. Value means percentage points for
// PERCENT and whole currency units for FIXED. Either window bound may be nil,
// meaning unbounded on that side.
type Promotion struct {
	ID             int64        `json:"id"`
	Code           string       `json:"code"`
	Type           DiscountType `json:"type"`
	Value          int64        `json:"value"`
	MinOrderAmount *int64       `json:"minOrderAmount"`
	StartsAt       *time.Time   `json:"startsAt,omitempty"`
	EndsAt         *time.Time   `json:"endsAt,omitempty"`
	IsActive       bool         `json:"isActive"`
}

// ActiveAt reports whether the promotion is redeemable at the given instant:
// active flag set and now inside [StartsAt, EndsAt], open bounds always
// satisfied.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}
