package analytics

import (
	"github.com/shopspring/decimal"

	"bondscreen/pkg/contracts/domain"
)

// NoDataMessage is reported instead of means when a view is empty.
const NoDataMessage = "No bonds match the current filters"

// Summary holds the scalar metrics of a filtered view.
// Means are nil when no row carries a known value for the field.
type Summary struct {
	Count                int             `json:"count"`
	HasData              bool            `json:"has_data"`
	MeanCoupon           *float64        `json:"mean_coupon"`
	MeanOfferYield       *float64        `json:"mean_offer_yield"`
	MeanRealYield        *float64        `json:"mean_real_yield"`
	MeanYearsToMaturity  *float64        `json:"mean_years_to_maturity"`
	TotalFaceValue       decimal.Decimal `json:"total_face_value"`
	TotalFaceValueText   string          `json:"total_face_value_text"`
	ModePaymentFrequency string          `json:"mode_payment_frequency,omitempty"`
	Message              string          `json:"message,omitempty"`
}

// Summarize computes count, means, the face value total and the most common
// payment frequency over records.
func Summarize(records []domain.BondRecord) Summary {
	s := Summary{
		Count:          len(records),
		HasData:        len(records) > 0,
		TotalFaceValue: decimal.Zero,
	}
	if !s.HasData {
		s.Message = NoDataMessage
		s.TotalFaceValueText = FormatINR(decimal.Zero)
		return s
	}

	var coupon, offer, real, years mean
	total := decimal.Zero
	for _, r := range records {
		coupon.add(r.Coupon)
		offer.add(r.OfferYield)
		real.add(r.EstimatedRealYield)
		years.add(r.YearsToMaturity)
		if r.TotalQtyFaceValue != nil {
			total = total.Add(decimal.NewFromFloat(*r.TotalQtyFaceValue))
		}
	}

	s.MeanCoupon = coupon.value()
	s.MeanOfferYield = offer.value()
	s.MeanRealYield = real.value()
	s.MeanYearsToMaturity = years.value()
	s.TotalFaceValue = total
	s.TotalFaceValueText = FormatINR(total)
	s.ModePaymentFrequency = ModePaymentFrequency(records)
	return s
}

// ModePaymentFrequency returns the most frequent non-empty payment frequency.
// Ties go to the value seen first.
func ModePaymentFrequency(records []domain.BondRecord) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		f := r.InterestPaymentFrequency
		if f == "" {
			continue
		}
		if counts[f] == 0 {
			order = append(order, f)
		}
		counts[f]++
	}

	best, bestCount := "", 0
	for _, f := range order {
		if counts[f] > bestCount {
			best, bestCount = f, counts[f]
		}
	}
	return best
}

// mean accumulates known values only.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}
