package filing

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Well-known disclosure tags consulted during metadata extraction.
const (
	tagRegistrantName    = "dei:EntityRegistrantName"
	tagFiscalYearFocus   = "dei:DocumentFiscalYearFocus"
	tagFiscalPeriodFocus = "dei:DocumentFiscalPeriodFocus"
	tagCentralIndexKey   = "dei:EntityCentralIndexKey"
	tagPeriodEndDate     = "dei:DocumentPeriodEndDate"
)

// Info holds the metadata extracted from a filing's facts. EntityName
// and Period are empty when undetermined; CIKs may be empty. ParentCIK
// is never inferred from document content; parent linkage is
// established only through explicit user action.
type Info struct {
	CIKs       []int
	ParentCIK  *int
	EntityName string
	Period     string
}

// Importable reports whether the extracted metadata is sufficient for
// an automatic import: at least one cik, a determined name, and a
// determined period. Anything less requires manual operator input.
func (i Info) Importable() bool {
	return len(i.CIKs) > 0 && i.EntityName != "" && i.Period != ""
}

// Missing lists the metadata fields that block an automatic import.
func (i Info) Missing() []string {
	var missing []string
	if len(i.CIKs) == 0 {
		missing = append(missing, "cik")
	}
	if i.EntityName == "" {
		missing = append(missing, "name")
	}
	if i.Period == "" {
		missing = append(missing, "period")
	}
	return missing
}

// ExtractInfo scans a filing's facts once and derives entity
// identifiers, entity name, and the normalized fiscal period.
//
// Period precedence:
//  1. fiscal-period-focus + fiscal-year-focus, with "fy" remapped to
//     "q4", concatenated as period+year (e.g. "q42019");
//  2. otherwise the document period end date YYYY-MM-DD, mapping month
//     03/06/09/12 to q1..q4 (any other month leaves the period
//     undetermined);
//  3. otherwise undetermined.
//
// Every cik disclosure is collected, not just the first: a combined
// filing may legitimately carry more than one entity identifier.
// Unparseable cik values are skipped rather than propagated.
func ExtractInfo(f *Filing) Info {
	var info Info
	if f == nil {
		return info
	}

	var yearFocus, periodFocus, endDate string
	for _, fact := range f.Facts {
		switch fact.Name {
		case tagRegistrantName:
			info.EntityName = norm.NFC.String(fact.Value)
		case tagFiscalYearFocus:
			yearFocus = fact.Value
		case tagFiscalPeriodFocus:
			periodFocus = strings.ToLower(fact.Value)
		case tagCentralIndexKey:
			if cik, err := strconv.Atoi(strings.TrimSpace(fact.Value)); err == nil {
				info.CIKs = append(info.CIKs, cik)
			}
		case tagPeriodEndDate:
			endDate = fact.Value
		}
	}

	switch {
	case periodFocus != "" && yearFocus != "":
		if periodFocus == "fy" {
			periodFocus = "q4"
		}
		info.Period = periodFocus + yearFocus
	case len(endDate) >= 7:
		year := endDate[0:4]
		switch endDate[5:7] {
		case "03":
			info.Period = "q1" + year
		case "06":
			info.Period = "q2" + year
		case "09":
			info.Period = "q3" + year
		case "12":
			info.Period = "q4" + year
		}
	}

	return info
}

// ParsePeriod splits a 6-character period token "qNYYYY" into its
// 4-digit year and quarter ("q1".."q4"). Tokens are lower-cased before
// the quarter prefix comparison. ok is false for anything else.
func ParsePeriod(period string) (year, quarter string, ok bool) {
	period = strings.ToLower(period)
	if len(period) != 6 {
		return "", "", false
	}
	quarter = period[0:2]
	switch quarter {
	case "q1", "q2", "q3", "q4":
	default:
		return "", "", false
	}
	year = period[2:6]
	if !IsYear(year) {
		return "", "", false
	}
	return year, quarter, true
}

// PeriodToken builds the canonical "qNYYYY" token.
func PeriodToken(year, quarter string) string {
	return quarter + year
}

// IsYear reports whether s is a 4-digit year.
func IsYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseCIK coerces a string to an integer cik. Coercion failures are
// reported as absent rather than propagated.
func ParseCIK(s string) (int, bool) {
	cik, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return cik, true
}

// FormatCIK renders a cik in its ten-digit zero-padded display form.
func FormatCIK(cik int) string {
	return fmt.Sprintf("%010d", cik)
}
