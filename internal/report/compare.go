package report

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

// compareText orders two values numerically when both are numbers,
// chronologically when both are dates and case-insensitively otherwise.
func compareText(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)

	if fa, errA := strconv.ParseFloat(a, 64); errA == nil {
		if fb, errB := strconv.ParseFloat(b, 64); errB == nil {
			return cmp.Compare(fa, fb)
		}
	}

	if da, errA := domain.ParseDate(a); errA == nil {
		if db, errB := domain.ParseDate(b); errB == nil {
			return da.Compare(db.Time)
		}
	}

	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareValues(a, b any) int {
	return compareText(FormatValue(a), FormatValue(b))
}
