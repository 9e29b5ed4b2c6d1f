package dataprocessing

// Source column headers. Matching is exact and case-sensitive.
const (
	ColISIN                     = "ISIN"
	ColIssuerName               = "Issuer Name"
	ColCoupon                   = "Coupon"
	ColRedemptionDate           = "Redemption Date"
	ColCallPutDate              = "Call/Put Date"
	ColFaceValue                = "Face Value"
	ColResidualTenure           = "Residual Tenure"
	ColSecuredFlag              = "Secured / Unsecured"
	ColSpecialFeature           = "Special Feature"
	ColTotalQty                 = "Total Qty"
	ColTotalQtyFV               = "Total Qty FV"
	ColOfferYield               = "Offer Yield"
	ColCreditRating             = "Credit Rating"
	ColOutlook                  = "Outlook"
	ColInterestPaymentFrequency = "Interest Payment Frequency"
	ColPrincipalRedemption      = "Principal Redemption"
)

// Derived column headers used on export.
const (
	ColDaysToMaturity     = "Days to Maturity"
	ColYearsToMaturity    = "Years to Maturity"
	ColBondType           = "Bond Type"
	ColRatingCategory     = "Rating Category"
	ColRiskLevel          = "Risk Level"
	ColIndustry           = "Industry"
	ColEstimatedRealYield = "Estimated Real Yield"
	ColTotalValue         = "Total Value"
)

// RequiredColumns must all be present for a load to proceed.
var RequiredColumns = []string{
	ColISIN,
	ColIssuerName,
	ColCoupon,
	ColRedemptionDate,
	ColFaceValue,
	ColSecuredFlag,
	ColSpecialFeature,
	ColTotalQty,
	ColTotalQtyFV,
	ColOfferYield,
	ColCreditRating,
}

// SourceColumns lists every source column in the canonical order.
var SourceColumns = []string{
	ColISIN,
	ColIssuerName,
	ColCoupon,
	ColRedemptionDate,
	ColCallPutDate,
	ColFaceValue,
	ColResidualTenure,
	ColSecuredFlag,
	ColSpecialFeature,
	ColTotalQty,
	ColTotalQtyFV,
	ColOfferYield,
	ColCreditRating,
	ColOutlook,
	ColInterestPaymentFrequency,
	ColPrincipalRedemption,
}

// DerivedColumns lists the computed columns in export order.
var DerivedColumns = []string{
	ColDaysToMaturity,
	ColYearsToMaturity,
	ColBondType,
	ColRatingCategory,
	ColRiskLevel,
	ColIndustry,
	ColEstimatedRealYield,
	ColTotalValue,
}

// AllColumns returns the source columns followed by the derived ones.
func AllColumns() []string {
	cols := make([]string, 0, len(SourceColumns)+len(DerivedColumns))
	cols = append(cols, SourceColumns...)
	return append(cols, DerivedColumns...)
}

// IsKnownColumn reports whether name is a source or derived column.
func IsKnownColumn(name string) bool {
	for _, c := range SourceColumns {
		if c == name {
			return true
		}
	}
	for _, c := range DerivedColumns {
		if c == name {
			return true
		}
	}
	return false
}
