package domain

import (
	"time"
)

// BondType is the two-way inflation classification of a bond
type BondType string

const (
	BondTypeSLIPS BondType = "SLIPS"
	BondTypeFLIPS BondType = "FLIPS"
)

// SecurityType mirrors the "Secured / Unsecured" column
type SecurityType string

const (
	SecurityTypeSecured   SecurityType = "Secured"
	SecurityTypeUnsecured SecurityType = "Unsecured"
)

// RiskLevel is the coarse risk bucket derived from the rating category
type RiskLevel string

const (
	RiskLevelVeryLow  RiskLevel = "Very Low"
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelVeryHigh RiskLevel = "Very High"
	RiskLevelUnknown  RiskLevel = "Unknown"
)

// RiskLevels lists every risk level from safest to riskiest, Unknown last.
var RiskLevels = []RiskLevel{
	RiskLevelVeryLow,
	RiskLevelLow,
	RiskLevelMedium,
	RiskLevelHigh,
	RiskLevelVeryHigh,
	RiskLevelUnknown,
}

// Rank returns the position of the level in RiskLevels.
func (r RiskLevel) Rank() int {
	for i, level := range RiskLevels {
		if level == r {
			return i
		}
	}
	return len(RiskLevels)
}

// Industry is a coarse issuer classifier
type Industry string

const (
	IndustryFinance        Industry = "Finance"
	IndustryInfrastructure Industry = "Infrastructure"
	IndustryBanking        Industry = "Banking"
	IndustryGovernment     Industry = "Government"
	IndustryOther          Industry = "Other"
)

// Interest payment frequencies as they appear in source data
const (
	FrequencyMonthly      = "Monthly"
	FrequencyQuarterly    = "Quarterly"
	FrequencySemiAnnually = "Semi - Annually"
	FrequencyAnnually     = "Annually"
	FrequencyOnMaturity   = "On Maturity"
)

// PaymentFrequencies is the natural ordering of payment frequencies.
var PaymentFrequencies = []string{
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencySemiAnnually,
	FrequencyAnnually,
	FrequencyOnMaturity,
}

// BondRecord is one enriched row of a bond dataset.
// Pointer fields are nil when the source value was missing or could not be parsed.
type BondRecord struct {
	Row int `json:"row"`

	ISIN                     string       `json:"isin"`
	IssuerName               string       `json:"issuer_name"`
	Coupon                   *float64     `json:"coupon"`
	RedemptionDate           *time.Time   `json:"redemption_date"`
	CallPutDate              *time.Time   `json:"call_put_date,omitempty"`
	CallPutRaw               string       `json:"call_put_raw,omitempty"`
	FaceValue                *float64     `json:"face_value"`
	ResidualTenure           string       `json:"residual_tenure,omitempty"`
	SecuredFlag              SecurityType `json:"secured_flag"`
	SpecialFeature           string       `json:"special_feature"`
	TotalQty                 *float64     `json:"total_qty"`
	TotalQtyFaceValue        *float64     `json:"total_qty_face_value"`
	OfferYield               *float64     `json:"offer_yield"`
	CreditRating             string       `json:"credit_rating"`
	Outlook                  string       `json:"outlook,omitempty"`
	InterestPaymentFrequency string       `json:"interest_payment_frequency,omitempty"`
	PrincipalRedemption      string       `json:"principal_redemption,omitempty"`

	DaysToMaturity     *int      `json:"days_to_maturity"`
	YearsToMaturity    *float64  `json:"years_to_maturity"`
	BondType           BondType  `json:"bond_type"`
	RatingCategory     string    `json:"rating_category,omitempty"`
	RiskLevel          RiskLevel `json:"risk_level"`
	Industry           Industry  `json:"industry"`
	EstimatedRealYield *float64  `json:"estimated_real_yield"`
	TotalValue         *float64  `json:"total_value"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Date returns a pointer to the UTC midnight of the given calendar day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
