package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInterval_TextForms(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"Annually", 12},
		{"yearly", 12},
		{"ANNUAL", 12},
		{"Biannually", 6},
		{"semi-annually", 6},
		{"twice yearly", 6},
		{"Quarterly", 3},
		{"every quarter", 3},
		{"Monthly", 1},
		{"month", 1},
		{"3 months", 3},
		{"12 months", 12},
		{"1.5 months", 1},
		{"0.5 months", 0},
		{"  6 Months  ", 6},
		{"Weekly", 0.25},
		{"week", 0.25},
		{"Biweekly", 0.5},
		{"bi-weekly", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseInterval(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// "biannually" contains "annual"; it must resolve to 6 months, not 12.
func TestParseInterval_BiannualBeatsAnnual(t *testing.T) {
	got, ok := ParseInterval("biannually")
	assert.True(t, ok)
	assert.Equal(t, float64(6), got)
}

func TestParseInterval_BareNumbers(t *testing.T) {
	got, ok := ParseInterval("3")
	assert.True(t, ok)
	assert.Equal(t, float64(3), got)

	// Bare fractional numbers truncate to zero (non-recurring).
	got, ok = ParseInterval("0.5")
	assert.True(t, ok)
	assert.Equal(t, float64(0), got)
}

func TestParseInterval_Unparseable(t *testing.T) {
	for _, in := range []string{"", "   ", "whenever", "every 2 weeks", "n/a"} {
		got, ok := ParseInterval(in)
		assert.False(t, ok, "input %q", in)
		assert.Equal(t, float64(0), got)
	}
}
