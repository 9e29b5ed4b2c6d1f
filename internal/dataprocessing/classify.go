package dataprocessing

import (
	"regexp"
	"strings"

	"bondscreen/pkg/contracts/domain"
)

// RatingScale is the letter-grade scale from best to worst.
var RatingScale = []string{
	"AAA",
	"AA+", "AA", "AA-",
	"A+", "A", "A-",
	"BBB+", "BBB", "BBB-",
	"BB+", "BB", "BB-",
	"B+", "B", "B-",
	"CCC+", "CCC", "CCC-",
	"CC", "C", "D",
}

var (
	ratingRank = func() map[string]int {
		m := make(map[string]int, len(RatingScale))
		for i, r := range RatingScale {
			m[r] = i
		}
		return m
	}()

	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	gradeToken    = regexp.MustCompile(`^(AAA|AA|A|BBB|BB|B|CCC|CC|C|D)[+-]?$`)
)

// ClassifyBondType returns FLIPS when the special feature mentions CPI or
// inflation in any letter case, SLIPS otherwise.
func ClassifyBondType(specialFeature string) domain.BondType {
	if IsInflationLinked(specialFeature) {
		return domain.BondTypeFLIPS
	}
	return domain.BondTypeSLIPS
}

// IsInflationLinked reports whether a special feature text references CPI or inflation.
func IsInflationLinked(specialFeature string) bool {
	s := strings.ToLower(specialFeature)
	return strings.Contains(s, "cpi") || strings.Contains(s, "inflation")
}

// RatingCategory extracts the letter grade from an agency rating such as
// "CRISIL AA+(CE)", "[ICRA]A-" or "IND AA-/Stable". It returns "" when no
// grade is found.
func RatingCategory(creditRating string) string {
	s := parenthetical.ReplaceAllString(strings.ToUpper(creditRating), " ")
	s = strings.NewReplacer("[", " ", "]", " ", "/", " ").Replace(s)
	fields := strings.Fields(s)
	for i := len(fields) - 1; i >= 0; i-- {
		if gradeToken.MatchString(fields[i]) {
			if _, ok := ratingRank[fields[i]]; ok {
				return fields[i]
			}
		}
	}
	return ""
}

// RatingRank returns the position of a rating category on RatingScale.
func RatingRank(category string) (int, bool) {
	rank, ok := ratingRank[category]
	return rank, ok
}

// RiskLevelFor maps a rating category onto a risk bucket.
func RiskLevelFor(category string) domain.RiskLevel {
	rank, ok := ratingRank[category]
	if !ok {
		return domain.RiskLevelUnknown
	}
	switch {
	case rank <= 2:
		return domain.RiskLevelVeryLow
	case rank <= 5:
		return domain.RiskLevelLow
	case rank <= 8:
		return domain.RiskLevelMedium
	case rank <= 11:
		return domain.RiskLevelHigh
	default:
		return domain.RiskLevelVeryHigh
	}
}

// industryRules are checked in order; the first match wins.
var industryRules = []struct {
	needle   string
	industry domain.Industry
}{
	{"FINANCE", domain.IndustryFinance},
	{"INFRA", domain.IndustryInfrastructure},
	{"BANK", domain.IndustryBanking},
	{"GOVERNMENT", domain.IndustryGovernment},
}

// ClassifyIndustry derives the industry from the issuer name.
func ClassifyIndustry(issuerName string) domain.Industry {
	name := strings.ToUpper(issuerName)
	for _, rule := range industryRules {
		if strings.Contains(name, rule.needle) {
			return rule.industry
		}
	}
	return domain.IndustryOther
}

// NormalizeSecurityType canonicalises the secured flag. Unrecognised values
// are returned trimmed with ok=false.
func NormalizeSecurityType(raw string) (domain.SecurityType, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "secured":
		return domain.SecurityTypeSecured, true
	case "unsecured":
		return domain.SecurityTypeUnsecured, true
	}
	return domain.SecurityType(s), false
}
