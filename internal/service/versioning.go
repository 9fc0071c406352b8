package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"governance/internal/model"

	"github.com/shopspring/decimal"
)

// fallbackRecordVersion is used when a stored version cannot be parsed.
const fallbackRecordVersion = "2.0"

var approvalVersionPattern = regexp.MustCompile(`^u(\d+)$`)

// NextRecordVersion bumps a "major.minor" version parsed as a float64, which
// is how stored versions have always been computed. Minor adds 0.1 and rounds
// the float to one decimal, so "1.9" becomes "2.0". Major keeps the integer
// part plus one.
func NextRecordVersion(current string, kind model.VersionKind) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(current), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallbackRecordVersion
	}

	switch kind {
	case model.VersionMajor:
		return strconv.FormatFloat(math.Trunc(v)+1, 'f', 1, 64)
	case model.VersionMinor:
		return strconv.FormatFloat(v+0.1, 'f', 1, 64)
	}
	return fallbackRecordVersion
}

// NextApprovalVersion returns "u{max+1}" over the versions that look like
// "u{N}". Anything else is ignored.
func NextApprovalVersion(existing []string) string {
	highest := 0
	for _, v := range existing {
		if n, ok := parseApprovalVersion(v); ok && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("u%d", highest+1)
}

func parseApprovalVersion(v string) (int, bool) {
	m := approvalVersionPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// editApprovalVersion names the review request spawned by an edit after the
// record version it reviews.
func editApprovalVersion(recordVersion string) string {
	return "u" + recordVersion
}

// compareRecordVersions orders versions numerically with exact decimals, so
// "1.9" sorts above "1.10"; unparsable versions sort below every parsable one.
func compareRecordVersions(a, b string) int {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return da.Cmp(db)
}

// highestRecordVersion returns the largest version in versions, or "" when empty.
func highestRecordVersion(versions []model.Compliance) string {
	best := ""
	for _, c := range versions {
		if best == "" || compareRecordVersions(c.Version, best) > 0 {
			best = c.Version
		}
	}
	return best
}
