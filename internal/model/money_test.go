package model

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsFinite(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  float64
		want bool
	}{
		{"zero", 0, true},
		{"positive", 42.5, true},
		{"negative", -1.25, true},
		{"nan", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}

	for _, tc := range cases {
		if got := IsFinite(tc.raw); got != tc.want {
			t.Errorf("IsFinite(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRoundAmount_HalfUp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  float64
		want string
	}{
		{30.005, "30.01"},
		{30.004, "30.00"},
		{0.125, "0.13"},
		{100, "100.00"},
		{99.999, "100.00"},
	}

	for _, tc := range cases {
		got := RoundAmount(tc.raw)
		if FormatAmount(got) != tc.want {
			t.Errorf("RoundAmount(%v) = %s, want %s", tc.raw, FormatAmount(got), tc.want)
		}
	}
}

func TestRoundAmount_Idempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []float64{30.005, -12.345, 0.004999, 1e9 + 0.555, 0} {
		once := RoundAmount(raw)
		f, _ := once.Float64()
		twice := RoundAmount(f)
		if !once.Equal(twice) {
			t.Errorf("RoundAmount not idempotent for %v: %s then %s", raw, once, twice)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	if got := FormatAmount(decimal.NewFromInt(5)); got != "5.00" {
		t.Errorf("FormatAmount(5) = %q, want \"5.00\"", got)
	}
}
