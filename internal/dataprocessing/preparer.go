package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bondscreen/pkg/contracts/domain"
)

// DefaultInflationDeduction is the flat inflation assumption subtracted from offer yield.
const DefaultInflationDeduction = 0.02

// PreparerOptions configures a Preparer
type PreparerOptions struct {
	// Now supplies the reference instant, read once per load.
	Now                func() time.Time
	InflationDeduction *float64
	PercentPolicy      PercentPolicy
	Logger             *slog.Logger
}

// Preparer turns raw bond tables into enriched datasets.
type Preparer struct {
	now       func() time.Time
	deduction float64
	policy    PercentPolicy
	logger    *slog.Logger
}

// NewPreparer creates a preparer. Zero options fall back to wall-clock time,
// the default inflation deduction and percent coercion. A non-nil zero
// deduction is kept.
func NewPreparer(opts PreparerOptions) *Preparer {
	p := &Preparer{
		now:       opts.Now,
		deduction: DefaultInflationDeduction,
		policy:    opts.PercentPolicy,
		logger:    opts.Logger,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if opts.InflationDeduction != nil {
		p.deduction = *opts.InflationDeduction
	}
	if p.policy == "" {
		p.policy = PercentCoerce
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With(slog.String("component", "preparer"))
	return p
}

// Prepare validates the schema, normalizes every row and computes the derived
// fields against a single reference instant. On a SchemaError it returns an
// empty dataset together with the error and processes no rows.
func (p *Preparer) Prepare(ctx context.Context, table RawTable) (*domain.Dataset, error) {
	ref := p.now().UTC()
	ds := &domain.Dataset{
		ID:            table.Fingerprint(),
		Source:        table.Source,
		ReferenceTime: ref,
		Columns:       AllColumns(),
		Records:       []domain.BondRecord{},
		Warnings:      []domain.DataQualityWarning{},
	}

	if err := ValidateSchema(table.Headers); err != nil {
		p.logger.WarnContext(ctx, "schema validation failed",
			slog.String("source", table.Source),
			slog.String("error", err.Error()))
		return ds, err
	}

	idx := table.index()
	ds.Records = make([]domain.BondRecord, 0, len(table.Rows))
	for i, cells := range table.Rows {
		if err := ctx.Err(); err != nil {
			return ds, err
		}
		rp := rowParser{
			cells:  cells,
			idx:    idx,
			row:    i + 2,
			policy: p.policy,
		}
		rec := rp.record()
		p.derive(&rec, ref)
		ds.Records = append(ds.Records, rec)
		ds.Warnings = append(ds.Warnings, rp.warnings...)
	}

	p.logger.InfoContext(ctx, "dataset prepared",
		slog.String("dataset_id", ds.ID),
		slog.String("source", table.Source),
		slog.Int("rows", len(ds.Records)),
		slog.Int("warnings", len(ds.Warnings)),
		slog.Time("reference_time", ref))

	return ds, nil
}

// derive fills the computed fields of rec. It never touches source fields.
func (p *Preparer) derive(rec *domain.BondRecord, ref time.Time) {
	rec.BondType = ClassifyBondType(rec.SpecialFeature)
	rec.RatingCategory = RatingCategory(rec.CreditRating)
	rec.RiskLevel = RiskLevelFor(rec.RatingCategory)
	rec.Industry = ClassifyIndustry(rec.IssuerName)

	if rec.RedemptionDate != nil {
		days := DaysBetween(ref, *rec.RedemptionDate)
		rec.DaysToMaturity = domain.Int(days)
		rec.YearsToMaturity = domain.Float(float64(days) / 365)
	}

	if rec.OfferYield != nil {
		rec.EstimatedRealYield = domain.Float(*rec.OfferYield - p.deduction)
	}

	if rec.TotalQtyFaceValue != nil && rec.Coupon != nil && rec.YearsToMaturity != nil {
		rec.TotalValue = domain.Float(*rec.TotalQtyFaceValue * (1 + *rec.Coupon**rec.YearsToMaturity))
	}
}

// rowParser maps one raw row onto a BondRecord and collects warnings.
type rowParser struct {
	cells    []string
	idx      map[string]int
	row      int
	policy   PercentPolicy
	isin     string
	warnings []domain.DataQualityWarning
}

func (rp *rowParser) record() domain.BondRecord {
	rp.isin = rp.text(ColISIN)

	rec := domain.BondRecord{
		Row:                      rp.row,
		ISIN:                     rp.isin,
		IssuerName:               rp.text(ColIssuerName),
		Coupon:                   rp.rate(ColCoupon),
		RedemptionDate:           rp.date(ColRedemptionDate),
		FaceValue:                rp.amount(ColFaceValue),
		ResidualTenure:           rp.text(ColResidualTenure),
		SpecialFeature:           rp.text(ColSpecialFeature),
		TotalQty:                 rp.amount(ColTotalQty),
		TotalQtyFaceValue:        rp.amount(ColTotalQtyFV),
		OfferYield:               rp.rate(ColOfferYield),
		CreditRating:             rp.text(ColCreditRating),
		Outlook:                  rp.text(ColOutlook),
		InterestPaymentFrequency: rp.text(ColInterestPaymentFrequency),
		PrincipalRedemption:      rp.text(ColPrincipalRedemption),
	}

	rec.CallPutRaw = rp.text(ColCallPutDate)
	if rec.CallPutRaw != "" && rec.CallPutRaw != "-" {
		rec.CallPutDate = rp.date(ColCallPutDate)
	}

	secured := rp.text(ColSecuredFlag)
	flag, ok := NormalizeSecurityType(secured)
	if !ok && secured != "" {
		rp.warn(ColSecuredFlag, secured, domain.WarningUnknownValue, "expected Secured or Unsecured")
	}
	rec.SecuredFlag = flag

	return rec
}

func (rp *rowParser) cell(col string) (string, bool) {
	i, ok := rp.idx[col]
	if !ok {
		return "", false
	}
	if i >= len(rp.cells) {
		return "", true
	}
	return rp.cells[i], true
}

func (rp *rowParser) text(col string) string {
	v, _ := rp.cell(col)
	return strings.TrimSpace(v)
}

func (rp *rowParser) date(col string) *time.Time {
	raw, present := rp.cell(col)
	if !present || strings.TrimSpace(raw) == "" {
		return nil
	}
	res := ParseDate(raw)
	if !res.OK {
		rp.warn(col, raw, domain.WarningUnparseableDate, "date is not DD-MM-YYYY, YYYY-MM-DD or an Excel serial")
		return nil
	}
	if res.Clamped {
		rp.warn(col, raw, domain.WarningDateClamped, fmt.Sprintf("clamped to %s", MaxDate.Format("2006-01-02")))
	}
	d := res.Date
	return &d
}

func (rp *rowParser) amount(col string) *float64 {
	raw, present := rp.cell(col)
	if !present || strings.TrimSpace(raw) == "" {
		return nil
	}
	res := ParseNumber(raw, false)
	if !res.OK {
		rp.warn(col, raw, domain.WarningNonNumeric, "value is not numeric")
		return nil
	}
	return domain.Float(res.Value)
}

// rate parses a fractional rate such as a coupon or yield.
func (rp *rowParser) rate(col string) *float64 {
	raw, present := rp.cell(col)
	if !present || strings.TrimSpace(raw) == "" {
		return nil
	}
	res := ParseNumber(raw, true)
	if !res.OK {
		rp.warn(col, raw, domain.WarningNonNumeric, "value is not numeric")
		return nil
	}
	if res.Percent {
		if rp.policy == PercentReject {
			rp.warn(col, raw, domain.WarningPercentRejected, "percentage strings are ambiguous and were left unknown")
			return nil
		}
		rp.warn(col, raw, domain.WarningPercentCoerced,
			fmt.Sprintf("percentage string is ambiguous, read as fraction %g", res.Value))
	}
	return domain.Float(res.Value)
}

func (rp *rowParser) warn(field, value, code, msg string) {
	rp.warnings = append(rp.warnings, domain.DataQualityWarning{
		Row:     rp.row,
		ISIN:    rp.isin,
		Field:   field,
		Value:   value,
		Code:    code,
		Message: msg,
	})
}
