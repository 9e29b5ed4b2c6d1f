package exporter

import (
	"strconv"
	"time"

	"bondscreen/internal/dataprocessing"
	"bondscreen/pkg/contracts/domain"
)

// DateLayout is the ISO layout used for every exported date.
const DateLayout = "2006-01-02"

// formatFloat writes the shortest representation that parses back to v,
// so a re-import sees the same value.
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// Cell renders one column of r. Unknown values and columns render as "".
func Cell(r domain.BondRecord, column string) string {
	switch column {
	case dataprocessing.ColISIN:
		return r.ISIN
	case dataprocessing.ColIssuerName:
		return r.IssuerName
	case dataprocessing.ColCoupon:
		return formatFloat(r.Coupon)
	case dataprocessing.ColRedemptionDate:
		return formatDate(r.RedemptionDate)
	case dataprocessing.ColCallPutDate:
		if r.CallPutDate != nil {
			return formatDate(r.CallPutDate)
		}
		return r.CallPutRaw
	case dataprocessing.ColFaceValue:
		return formatFloat(r.FaceValue)
	case dataprocessing.ColResidualTenure:
		return r.ResidualTenure
	case dataprocessing.ColSecuredFlag:
		return string(r.SecuredFlag)
	case dataprocessing.ColSpecialFeature:
		return r.SpecialFeature
	case dataprocessing.ColTotalQty:
		return formatFloat(r.TotalQty)
	case dataprocessing.ColTotalQtyFV:
		return formatFloat(r.TotalQtyFaceValue)
	case dataprocessing.ColOfferYield:
		return formatFloat(r.OfferYield)
	case dataprocessing.ColCreditRating:
		return r.CreditRating
	case dataprocessing.ColOutlook:
		return r.Outlook
	case dataprocessing.ColInterestPaymentFrequency:
		return r.InterestPaymentFrequency
	case dataprocessing.ColPrincipalRedemption:
		return r.PrincipalRedemption
	case dataprocessing.ColDaysToMaturity:
		return formatInt(r.DaysToMaturity)
	case dataprocessing.ColYearsToMaturity:
		return formatFloat(r.YearsToMaturity)
	case dataprocessing.ColBondType:
		return string(r.BondType)
	case dataprocessing.ColRatingCategory:
		return r.RatingCategory
	case dataprocessing.ColRiskLevel:
		return string(r.RiskLevel)
	case dataprocessing.ColIndustry:
		return string(r.Industry)
	case dataprocessing.ColEstimatedRealYield:
		return formatFloat(r.EstimatedRealYield)
	case dataprocessing.ColTotalValue:
		return formatFloat(r.TotalValue)
	}
	return ""
}
