package filtering

import (
	"fmt"

	"bondscreen/pkg/contracts/domain"
)

// BondTypeAll disables the bond type filter.
const BondTypeAll = "All"

// Yield bases for the minimum yield filter
const (
	YieldBasisOffer = "offer"
	YieldBasisReal  = "real"
)

// Criteria holds one value per user-facing control.
//
// Multi-select fields distinguish a nil slice (control not in use) from an
// empty one (nothing selected, which matches no rows). Coupon and yield
// bounds are in percentage points: 10.5 means 10.5%.
type Criteria struct {
	BondType            string   `json:"bond_type,omitempty" validate:"omitempty,oneof=All SLIPS FLIPS"`
	MaxYearsToMaturity  *float64 `json:"max_years_to_maturity,omitempty"`
	CreditRatings       []string `json:"credit_ratings"`
	MinCouponPct        *float64 `json:"min_coupon_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxCouponPct        *float64 `json:"max_coupon_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
	SecurityTypes       []string `json:"security_types"`
	PaymentFrequencies  []string `json:"payment_frequencies"`
	MinYieldPct         *float64 `json:"min_yield_pct,omitempty" validate:"omitempty,gte=-100,lte=100"`
	YieldBasis          string   `json:"yield_basis,omitempty" validate:"omitempty,oneof=offer real"`
	Industries          []string `json:"industries"`
	RiskLevels          []string `json:"risk_levels"`
	InflationLinkedOnly bool     `json:"inflation_linked_only,omitempty"`
}

// Check reports cross-field problems that struct tags cannot express.
func (c Criteria) Check() error {
	if c.MinCouponPct != nil && c.MaxCouponPct != nil && *c.MinCouponPct > *c.MaxCouponPct {
		return fmt.Errorf("min_coupon_pct %.2f is greater than max_coupon_pct %.2f", *c.MinCouponPct, *c.MaxCouponPct)
	}
	switch c.BondType {
	case "", BondTypeAll, string(domain.BondTypeSLIPS), string(domain.BondTypeFLIPS):
	default:
		return fmt.Errorf("unknown bond type %q", c.BondType)
	}
	switch c.YieldBasis {
	case "", YieldBasisOffer, YieldBasisReal:
	default:
		return fmt.Errorf("unknown yield basis %q", c.YieldBasis)
	}
	return nil
}
