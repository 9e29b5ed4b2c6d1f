package filtering

import (
	"sort"

	"bondscreen/pkg/contracts/domain"
)

// Slider bounds and defaults of the screening controls
const (
	DefaultMaxYears  = 3.0
	MaxYearsBound    = 5.0
	MaxYearsStep     = 0.25
	DefaultMinCoupon = 5.0
	DefaultMaxCoupon = 12.0
	CouponBound      = 15.0
	CouponStep       = 0.1
)

// Options lists the selectable values of each control for one dataset.
type Options struct {
	BondTypes          []string `json:"bond_types"`
	CreditRatings      []string `json:"credit_ratings"`
	SecurityTypes      []string `json:"security_types"`
	PaymentFrequencies []string `json:"payment_frequencies"`
	Industries         []string `json:"industries"`
	RiskLevels         []string `json:"risk_levels"`
	MaxYears           Range    `json:"max_years"`
	CouponPct          Range    `json:"coupon_pct"`
	Defaults           Criteria `json:"defaults"`
}

// Range describes a numeric slider.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// BuildOptions collects the distinct values present in ds.
func BuildOptions(ds *domain.Dataset) Options {
	var records []domain.BondRecord
	if ds != nil {
		records = ds.Records
	}

	ratings := map[string]bool{}
	security := map[string]bool{}
	frequencies := map[string]bool{}
	industries := map[string]bool{}
	risks := map[domain.RiskLevel]bool{}

	for _, r := range records {
		ratings[r.CreditRating] = true
		if r.SecuredFlag != "" {
			security[string(r.SecuredFlag)] = true
		}
		if r.InterestPaymentFrequency != "" {
			frequencies[r.InterestPaymentFrequency] = true
		}
		industries[string(r.Industry)] = true
		risks[r.RiskLevel] = true
	}

	var riskLevels []string
	for _, level := range domain.RiskLevels {
		if risks[level] {
			riskLevels = append(riskLevels, string(level))
		}
	}

	return Options{
		BondTypes:          []string{BondTypeAll, string(domain.BondTypeSLIPS), string(domain.BondTypeFLIPS)},
		CreditRatings:      sortedKeys(ratings),
		SecurityTypes:      sortedKeys(security),
		PaymentFrequencies: orderFrequencies(frequencies),
		Industries:         sortedKeys(industries),
		RiskLevels:         nonNil(riskLevels),
		MaxYears:           Range{Min: 0, Max: MaxYearsBound, Step: MaxYearsStep},
		CouponPct:          Range{Min: 0, Max: CouponBound, Step: CouponStep},
		Defaults:           DefaultCriteria(ds),
	}
}

// DefaultCriteria reproduces the initial state of the screening controls:
// all bond types, at most three years to maturity, every credit rating
// present in the dataset and a 5-12% coupon band.
func DefaultCriteria(ds *domain.Dataset) Criteria {
	ratings := map[string]bool{}
	if ds != nil {
		for _, r := range ds.Records {
			ratings[r.CreditRating] = true
		}
	}
	maxYears, minCoupon, maxCoupon := DefaultMaxYears, DefaultMinCoupon, DefaultMaxCoupon
	return Criteria{
		BondType:           BondTypeAll,
		MaxYearsToMaturity: &maxYears,
		CreditRatings:      sortedKeys(ratings),
		MinCouponPct:       &minCoupon,
		MaxCouponPct:       &maxCoupon,
	}
}

// orderFrequencies puts known frequencies in their natural order and appends
// any others alphabetically.
func orderFrequencies(set map[string]bool) []string {
	out := []string{}
	for _, f := range domain.PaymentFrequencies {
		if set[f] {
			out = append(out, f)
			delete(set, f)
		}
	}
	return append(out, sortedKeys(set)...)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
