package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"bondscreen/internal/dataprocessing"
	"bondscreen/pkg/contracts/domain"
)

// Dimension names a categorical column to group by.
type Dimension string

// Supported grouping dimensions
const (
	ByBondType         Dimension = "bond_type"
	ByCreditRating     Dimension = "credit_rating"
	ByRiskLevel        Dimension = "risk_level"
	ByIndustry         Dimension = "industry"
	BySecurityType     Dimension = "security_type"
	ByPaymentFrequency Dimension = "payment_frequency"
)

// Dimensions lists every supported dimension.
var Dimensions = []Dimension{
	ByBondType, ByCreditRating, ByRiskLevel, ByIndustry, BySecurityType, ByPaymentFrequency,
}

// UnknownGroup labels rows with an empty group key.
const UnknownGroup = "Unknown"

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown group dimension %q", s)
}

// Group is one bucket of a grouped aggregate.
type Group struct {
	Key            string          `json:"key"`
	Count          int             `json:"count"`
	MeanCoupon     *float64        `json:"mean_coupon"`
	MeanOfferYield *float64        `json:"mean_offer_yield"`
	TotalFaceValue decimal.Decimal `json:"total_face_value"`
}

type bucket struct {
	key    string
	rank   int
	count  int
	coupon mean
	offer  mean
	total  decimal.Decimal
}

// GroupBy aggregates records per value of dim.
//
// Credit ratings are ordered by letter grade from best to worst, risk levels
// from safest to riskiest and payment frequencies from most to least frequent
// payer. Values without a natural rank, and all other dimensions, keep the
// order in which they first appear.
func GroupBy(records []domain.BondRecord, dim Dimension) ([]Group, error) {
	keyOf, rankOf, err := accessors(dim)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*bucket)
	var order []*bucket
	for _, r := range records {
		key := keyOf(r)
		if key == "" {
			key = UnknownGroup
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key, rank: rankOf(r), total: decimal.Zero}
			buckets[key] = b
			order = append(order, b)
		}
		b.count++
		b.coupon.add(r.Coupon)
		b.offer.add(r.OfferYield)
		if r.TotalQtyFaceValue != nil {
			b.total = b.total.Add(decimal.NewFromFloat(*r.TotalQtyFaceValue))
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].rank < order[j].rank
	})

	groups := make([]Group, 0, len(order))
	for _, b := range order {
		groups = append(groups, Group{
			Key:            b.key,
			Count:          b.count,
			MeanCoupon:     b.coupon.value(),
			MeanOfferYield: b.offer.value(),
			TotalFaceValue: b.total,
		})
	}
	return groups, nil
}

// unranked sorts after every ranked value; ties keep first-seen order.
const unranked = 1 << 30

func accessors(dim Dimension) (func(domain.BondRecord) string, func(domain.BondRecord) int, error) {
	flat := func(domain.BondRecord) int { return 0 }

	switch dim {
	case ByBondType:
		return func(r domain.BondRecord) string { return string(r.BondType) }, flat, nil
	case ByIndustry:
		return func(r domain.BondRecord) string { return string(r.Industry) }, flat, nil
	case BySecurityType:
		return func(r domain.BondRecord) string { return string(r.SecuredFlag) }, flat, nil
	case ByCreditRating:
		return func(r domain.BondRecord) string { return r.CreditRating },
			func(r domain.BondRecord) int {
				if rank, ok := dataprocessing.RatingRank(r.RatingCategory); ok {
					return rank
				}
				return unranked
			}, nil
	case ByRiskLevel:
		return func(r domain.BondRecord) string { return string(r.RiskLevel) },
			func(r domain.BondRecord) int { return r.RiskLevel.Rank() }, nil
	case ByPaymentFrequency:
		return func(r domain.BondRecord) string { return r.InterestPaymentFrequency },
			func(r domain.BondRecord) int {
				for i, f := range domain.PaymentFrequencies {
					if f == r.InterestPaymentFrequency {
						return i
					}
				}
				return unranked
			}, nil
	}
	return nil, nil, fmt.Errorf("unknown group dimension %q", dim)
}
