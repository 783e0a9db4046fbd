package schedule

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
)

// fallbackDays is the interval applied when a due date cannot be computed
// from its inputs.
const fallbackDays = 30

// FallbackCounter receives one increment per due-date calculation that had
// to fall back to the default interval.  prometheus.Counter satisfies it.
type FallbackCounter interface {
	Inc()
}

// AdjustForWeekend moves a date that lands on a weekend back to the
// preceding Friday.  Weekday dates are returned unchanged.
func AdjustForWeekend(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, -2)
	default:
		return t
	}
}

// AddMonths adds whole calendar months to t, clamping the day-of-month to
// the last day of the target month.  This differs from time.AddDate, which
// lets Jan 31 + 1 month spill into March.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if last := daysInMonth(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, t.Location())
}

// daysInMonth returns the number of days in the given month.  Day 0 of the
// following month normalises to that month's last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate accepts the date formats that reach the service over the wire:
// plain ISO dates ("2024-01-05") and RFC 3339 timestamps with or without a
// zone suffix.  The result is normalised to a date-only UTC value.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("schedule: unrecognised date %q", raw)
}

// Calculator computes weekend-adjusted signoff due dates.  Failed
// calculations fall back to fallbackDays from now and are observable via
// both the injected counter and a fallback_used log field.
type Calculator struct {
	log      logging.Logger
	fallback FallbackCounter
	now      func() time.Time
}

// NewCalculator builds a Calculator.  log must be non-nil; fallback may be
// nil when fallback observability is not wanted (tests).
func NewCalculator(log logging.Logger, fallback FallbackCounter) *Calculator {
	return &Calculator{
		log:      log,
		fallback: fallback,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DueDate returns the next due date intervalMonths after base.  Fractional
// intervals below one month are converted to days at 30 days per month;
// whole-month intervals use calendar month addition with day clamping.  The
// result always avoids weekends.
func (c *Calculator) DueDate(base time.Time, intervalMonths float64) time.Time {
	var next time.Time
	if intervalMonths < 1 {
		days := int(math.Round(intervalMonths * 30))
		next = base.AddDate(0, 0, days)
	} else {
		next = AddMonths(base, int(intervalMonths))
	}
	return AdjustForWeekend(next)
}

// DueDateFromString is DueDate for wire-format base dates.  When baseDate
// cannot be parsed the calculator falls back to fallbackDays from now,
// weekend-adjusted, logs the original error, and increments the fallback
// counter.
func (c *Calculator) DueDateFromString(baseDate string, intervalMonths float64) time.Time {
	base, err := ParseDate(baseDate)
	if err != nil {
		c.log.Error("failed to calculate due date",
			logging.Err(err),
			logging.String("base_date", baseDate),
			logging.Float64("interval_months", intervalMonths),
			logging.Bool("fallback_used", true),
		)
		if c.fallback != nil {
			c.fallback.Inc()
		}
		return AdjustForWeekend(c.now().AddDate(0, 0, fallbackDays))
	}
	return c.DueDate(base, intervalMonths)
}
