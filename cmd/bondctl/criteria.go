package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"bondscreen/internal/filtering"
	"bondscreen/pkg/contracts/domain"
)

// criteriaFlags binds one flag per screening control. Flags left unset keep
// their control out of the filter.
type criteriaFlags struct {
	defaults        bool
	bondType        string
	maxYears        float64
	ratings         []string
	minCoupon       float64
	maxCoupon       float64
	securityTypes   []string
	frequencies     []string
	minYield        float64
	yieldBasis      string
	industries      []string
	riskLevels      []string
	inflationLinked bool
}

func addCriteriaFlags(cmd *cobra.Command) *criteriaFlags {
	c := &criteriaFlags{}
	f := cmd.Flags()
	f.BoolVar(&c.defaults, "defaults", false, "start from the default screen (3 years, 5-12% coupon, every rating)")
	f.StringVar(&c.bondType, "bond-type", "", "All, SLIPS or FLIPS")
	f.Float64Var(&c.maxYears, "max-years", 0, "maximum years to maturity")
	f.StringSliceVar(&c.ratings, "rating", nil, "credit rating to include (repeatable)")
	f.Float64Var(&c.minCoupon, "min-coupon", 0, "minimum coupon in percent")
	f.Float64Var(&c.maxCoupon, "max-coupon", 0, "maximum coupon in percent")
	f.StringSliceVar(&c.securityTypes, "security-type", nil, "security type to include (repeatable)")
	f.StringSliceVar(&c.frequencies, "frequency", nil, "interest payment frequency to include (repeatable)")
	f.Float64Var(&c.minYield, "min-yield", 0, "minimum yield in percent")
	f.StringVar(&c.yieldBasis, "yield-basis", "", "yield compared by --min-yield: offer or real")
	f.StringSliceVar(&c.industries, "industry", nil, "industry to include (repeatable)")
	f.StringSliceVar(&c.riskLevels, "risk", nil, "risk level to include (repeatable)")
	f.BoolVar(&c.inflationLinked, "inflation-linked", false, "only inflation-linked bonds")
	return c
}

// build turns the parsed flags into Criteria for ds.
func (c *criteriaFlags) build(flags *pflag.FlagSet, ds *domain.Dataset) filtering.Criteria {
	var crit filtering.Criteria
	if c.defaults {
		crit = filtering.DefaultCriteria(ds)
	}

	if flags.Changed("bond-type") {
		crit.BondType = c.bondType
	}
	if flags.Changed("max-years") {
		crit.MaxYearsToMaturity = domain.Float(c.maxYears)
	}
	if flags.Changed("rating") {
		crit.CreditRatings = c.ratings
	}
	if flags.Changed("min-coupon") {
		crit.MinCouponPct = domain.Float(c.minCoupon)
	}
	if flags.Changed("max-coupon") {
		crit.MaxCouponPct = domain.Float(c.maxCoupon)
	}
	if flags.Changed("security-type") {
		crit.SecurityTypes = c.securityTypes
	}
	if flags.Changed("frequency") {
		crit.PaymentFrequencies = c.frequencies
	}
	if flags.Changed("min-yield") {
		crit.MinYieldPct = domain.Float(c.minYield)
	}
	if flags.Changed("yield-basis") {
		crit.YieldBasis = c.yieldBasis
	}
	if flags.Changed("industry") {
		crit.Industries = c.industries
	}
	if flags.Changed("risk") {
		crit.RiskLevels = c.riskLevels
	}
	crit.InflationLinkedOnly = c.inflationLinked

	return crit
}
