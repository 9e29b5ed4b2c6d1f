package analytics

import (
	"strconv"

	"bondscreen/pkg/contracts/domain"
)

// DetailDateLayout is the day-first layout used in bond detail cards.
const DetailDateLayout = "02-01-2006"

// BondDetail is the display form of a single bond.
type BondDetail struct {
	ISIN                string `json:"isin"`
	IssuerName          string `json:"issuer_name"`
	BondType            string `json:"bond_type"`
	Coupon              string `json:"coupon"`
	OfferYield          string `json:"offer_yield"`
	RealYield           string `json:"real_yield"`
	Maturity            string `json:"maturity"`
	YearsToMaturity     string `json:"years_to_maturity"`
	CreditRating        string `json:"credit_rating"`
	RiskLevel           string `json:"risk_level"`
	Outlook             string `json:"outlook"`
	PaymentFrequency    string `json:"payment_frequency"`
	PrincipalRedemption string `json:"principal_redemption"`
	SpecialFeature      string `json:"special_feature"`
	FaceValue           string `json:"face_value"`
	TotalValue          string `json:"total_value"`
}

// Detail formats r for display. Unknown values render as "-".
func Detail(r domain.BondRecord) BondDetail {
	d := BondDetail{
		ISIN:                r.ISIN,
		IssuerName:          r.IssuerName,
		BondType:            string(r.BondType),
		Coupon:              FormatPercent(r.Coupon),
		OfferYield:          FormatPercent(r.OfferYield),
		RealYield:           FormatPercent(r.EstimatedRealYield),
		Maturity:            "-",
		YearsToMaturity:     "-",
		CreditRating:        orDash(r.CreditRating),
		RiskLevel:           string(r.RiskLevel),
		Outlook:             orDash(r.Outlook),
		PaymentFrequency:    orDash(r.InterestPaymentFrequency),
		PrincipalRedemption: orDash(r.PrincipalRedemption),
		SpecialFeature:      orDash(r.SpecialFeature),
		FaceValue:           orDash(FormatINRFloat(r.FaceValue)),
		TotalValue:          orDash(FormatINRFloat(r.TotalValue)),
	}
	if r.RedemptionDate != nil {
		d.Maturity = r.RedemptionDate.Format(DetailDateLayout)
	}
	if r.YearsToMaturity != nil {
		d.YearsToMaturity = strconv.FormatFloat(*r.YearsToMaturity, 'f', 2, 64)
	}
	return d
}

// FormatPercent renders a fraction as a percentage with two decimals.
func FormatPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v*100, 'f', 2, 64) + "%"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
