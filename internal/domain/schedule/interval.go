package schedule

import (
	"strconv"
	"strings"
)

// ParseInterval interprets free-text maintenance interval input and returns
// the interval length in months.  Sub-month cadences are expressed as
// fractions (weekly = 0.25, biweekly = 0.5).
//
// Recognised forms, checked in order:
//
//	"biannual", "semi-annual", "twice yearly"  → 6
//	"annual", "yearly"                         → 12
//	"quarter"                                  → 3
//	"monthly" / "N months"                     → whole months (default 1)
//	"biweekly"                                 → 0.5
//	"weekly"                                   → 0.25
//	bare number ("3", "12")                    → whole months
//
// Numeric month counts are truncated toward zero, so "1.5 months" → 1 and a
// bare "0.5" → 0.  Anything unrecognised yields (0, false); a zero interval
// means the task does not recur.
func ParseInterval(raw string) (months float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	// Semi-annual must be tested before annual: "biannual" contains "annual".
	if strings.Contains(s, "biannual") || strings.Contains(s, "semi-annual") ||
		strings.Contains(s, "twice yearly") {
		return 6, true
	}
	if strings.Contains(s, "annual") || strings.Contains(s, "yearly") {
		return 12, true
	}
	if strings.Contains(s, "quarter") {
		return 3, true
	}
	if strings.Contains(s, "month") {
		if s == "monthly" || s == "month" {
			return 1, true
		}
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "months", ""), "month", ""))
		if cleaned == "" {
			return 1, true
		}
		if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return float64(int(n)), true
		}
		return 1, true
	}
	if strings.Contains(s, "week") {
		if strings.Contains(s, "biweek") || strings.Contains(s, "bi-week") {
			return 0.5, true
		}
		if s == "weekly" || s == "week" {
			return 0.25, true
		}
		// Other "week" phrasings fall through to the numeric parse below.
	}

	// Bare numbers are taken as whole month counts.
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return float64(int(n)), true
	}

	return 0, false
}
