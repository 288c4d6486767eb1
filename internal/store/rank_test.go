package store

import (
	"errors"
	"math"
	"testing"
)

func TestRankBetween_Midpoint(t *testing.T) {
	cases := []struct {
		lo, hi, want int64
	}{
		{0, 10, 5},
		{-10, 10, 0},
		{1, 3, 2},
		{math.MinInt64, math.MaxInt64, -1},
		{math.MaxInt64 - 4, math.MaxInt64, math.MaxInt64 - 2},
	}
	for _, tc := range cases {
		got, err := RankBetween(tc.lo, tc.hi)
		if err != nil {
			t.Fatalf("RankBetween(%d, %d): %v", tc.lo, tc.hi, err)
		}
		if got != tc.want {
			t.Fatalf("RankBetween(%d, %d) = %d, want %d", tc.lo, tc.hi, got, tc.want)
		}
		if got <= tc.lo || got >= tc.hi {
			t.Fatalf("RankBetween(%d, %d) = %d is not strictly inside", tc.lo, tc.hi, got)
		}
	}
}

func TestRankBetween_AdjacentBounds_NoSpace(t *testing.T) {
	if _, err := RankBetween(7, 8); !errors.Is(err, ErrNoRankSpace) {
		t.Fatalf("expected ErrNoRankSpace for adjacent bounds, got %v", err)
	}
	if _, err := RankBetween(8, 8); err == nil {
		t.Fatalf("expected error for equal bounds")
	}
}

func TestRankAfterBefore_Overflow(t *testing.T) {
	if _, err := RankAfter(math.MaxInt64 - 1); !errors.Is(err, ErrNoRankSpace) {
		t.Fatalf("expected ErrNoRankSpace near MaxInt64, got %v", err)
	}
	if _, err := RankBefore(math.MinInt64 + 1); !errors.Is(err, ErrNoRankSpace) {
		t.Fatalf("expected ErrNoRankSpace near MinInt64, got %v", err)
	}
	if r, err := RankAfter(0); err != nil || r != RankStep {
		t.Fatalf("RankAfter(0) = %d, %v", r, err)
	}
	if r, err := RankBefore(0); err != nil || r != -RankStep {
		t.Fatalf("RankBefore(0) = %d, %v", r, err)
	}
}

func TestRanksBetween_ClosedRangeIsStrictlyIncreasing(t *testing.T) {
	got, err := ranksBetween(0, 100, true, true, 9)
	if err != nil {
		t.Fatalf("ranksBetween: %v", err)
	}
	if len(got) != 9 {
		t.Fatalf("expected 9 ranks, got %d", len(got))
	}
	prev := int64(0)
	for _, r := range got {
		if r <= prev || r >= 100 {
			t.Fatalf("rank %d out of order in %v", r, got)
		}
		prev = r
	}

	if _, err := ranksBetween(0, 5, true, true, 5); !errors.Is(err, ErrNoRankSpace) {
		t.Fatalf("expected ErrNoRankSpace for 5 slots in (0,5), got %v", err)
	}
}

func TestEvenRanks(t *testing.T) {
	got := EvenRanks(3)
	want := []int64{RankStep, 2 * RankStep, 3 * RankStep}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EvenRanks(3) = %v, want %v", got, want)
		}
	}
	if RankInitial() != RankStep {
		t.Fatalf("RankInitial = %d", RankInitial())
	}
}
