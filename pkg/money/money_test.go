package money

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{199.999, 200},
		{0.005, 0.01},
		{-12.345, -12.35},
		{123.454999, 123.45},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Fatalf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRound2PtrPreservesNil(t *testing.T) {
	if Round2Ptr(nil) != nil {
		t.Fatal("nil must stay nil")
	}
	v := 10.005
	if got := Round2Ptr(&v); got == nil || *got != 10.01 {
		t.Fatalf("unexpected rounding: %v", got)
	}
}
