package filtering

import (
	"fmt"

	"bondscreen/internal/dataprocessing"
	"bondscreen/pkg/contracts/domain"
)

// tolerance absorbs binary rounding when fractions are scaled to percent,
// e.g. 0.12*100 == 12.000000000000002.
const tolerance = 1e-9

// Predicate is one independent row test.
type Predicate struct {
	Name  string
	Match func(domain.BondRecord) bool
}

// View is the filtered subset of a dataset, in dataset order.
type View struct {
	DatasetID string                     `json:"dataset_id"`
	Criteria  Criteria                   `json:"criteria"`
	Total     int                        `json:"total"`
	Records   []domain.BondRecord        `json:"records"`
	Warning   *domain.EmptyResultWarning `json:"warning,omitempty"`
}

// Predicates builds one predicate per active control in c.
// Numeric predicates reject rows whose value is unknown.
func Predicates(c Criteria) []Predicate {
	var preds []Predicate

	if c.BondType != "" && c.BondType != BondTypeAll {
		want := domain.BondType(c.BondType)
		preds = append(preds, Predicate{Name: "bond_type", Match: func(r domain.BondRecord) bool {
			return r.BondType == want
		}})
	}

	if c.MaxYearsToMaturity != nil {
		limit := *c.MaxYearsToMaturity
		preds = append(preds, Predicate{Name: "max_years_to_maturity", Match: func(r domain.BondRecord) bool {
			return r.YearsToMaturity != nil && *r.YearsToMaturity <= limit
		}})
	}

	if c.CreditRatings != nil {
		set := stringSet(c.CreditRatings)
		preds = append(preds, Predicate{Name: "credit_ratings", Match: func(r domain.BondRecord) bool {
			return set[r.CreditRating]
		}})
	}

	if c.MinCouponPct != nil || c.MaxCouponPct != nil {
		lo, hi := c.MinCouponPct, c.MaxCouponPct
		preds = append(preds, Predicate{Name: "coupon_range", Match: func(r domain.BondRecord) bool {
			if r.Coupon == nil {
				return false
			}
			pct := *r.Coupon * 100
			if lo != nil && pct < *lo-tolerance {
				return false
			}
			if hi != nil && pct > *hi+tolerance {
				return false
			}
			return true
		}})
	}

	if c.SecurityTypes != nil {
		set := stringSet(c.SecurityTypes)
		preds = append(preds, Predicate{Name: "security_types", Match: func(r domain.BondRecord) bool {
			return set[string(r.SecuredFlag)]
		}})
	}

	if c.PaymentFrequencies != nil {
		set := stringSet(c.PaymentFrequencies)
		preds = append(preds, Predicate{Name: "payment_frequencies", Match: func(r domain.BondRecord) bool {
			return set[r.InterestPaymentFrequency]
		}})
	}

	if c.MinYieldPct != nil {
		min := *c.MinYieldPct
		real := c.YieldBasis == YieldBasisReal
		preds = append(preds, Predicate{Name: "min_yield", Match: func(r domain.BondRecord) bool {
			y := r.OfferYield
			if real {
				y = r.EstimatedRealYield
			}
			return y != nil && *y*100 >= min-tolerance
		}})
	}

	if c.Industries != nil {
		set := stringSet(c.Industries)
		preds = append(preds, Predicate{Name: "industries", Match: func(r domain.BondRecord) bool {
			return set[string(r.Industry)]
		}})
	}

	if c.RiskLevels != nil {
		set := stringSet(c.RiskLevels)
		preds = append(preds, Predicate{Name: "risk_levels", Match: func(r domain.BondRecord) bool {
			return set[string(r.RiskLevel)]
		}})
	}

	if c.InflationLinkedOnly {
		preds = append(preds, Predicate{Name: "inflation_linked_only", Match: func(r domain.BondRecord) bool {
			return dataprocessing.IsInflationLinked(r.SpecialFeature)
		}})
	}

	return preds
}

// Select keeps the records matching every predicate. The input is not modified.
func Select(records []domain.BondRecord, preds ...Predicate) []domain.BondRecord {
	out := make([]domain.BondRecord, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if !p.Match(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Apply filters ds by c. It never fails; an empty result carries a warning.
func Apply(ds *domain.Dataset, c Criteria) View {
	v := View{Criteria: c, Records: []domain.BondRecord{}}
	if ds == nil {
		v.Warning = emptyWarning(0)
		return v
	}

	v.DatasetID = ds.ID
	v.Total = ds.Len()
	v.Records = Select(ds.Records, Predicates(c)...)
	if len(v.Records) == 0 {
		v.Warning = emptyWarning(v.Total)
	}
	return v
}

func emptyWarning(total int) *domain.EmptyResultWarning {
	return &domain.EmptyResultWarning{
		Message: fmt.Sprintf("no bonds match the selected filters (0 of %d)", total),
		Total:   total,
	}
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
