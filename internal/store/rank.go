package store

import (
	"errors"
	"math"
)

// RankStep is the spacing used past either end of a sibling group and when renumbering.
const RankStep int64 = 1 << 20

// ErrNoRankSpace reports that no integer rank fits strictly between two bounds.
var ErrNoRankSpace = errors.New("no space between ranks")

// RankBetween returns the midpoint strictly between lo and hi.
//
// The difference is computed unsigned so bounds near the int64 limits do not overflow.
func RankBetween(lo, hi int64) (int64, error) {
	if lo >= hi {
		return 0, errors.New("RankBetween requires lo < hi")
	}
	gap := uint64(hi) - uint64(lo)
	if gap < 2 {
		return 0, ErrNoRankSpace
	}
	return lo + int64(gap/2), nil
}

// RankAfter returns a rank one step above hi.
func RankAfter(hi int64) (int64, error) {
	if hi > math.MaxInt64-RankStep {
		return 0, ErrNoRankSpace
	}
	return hi + RankStep, nil
}

// RankBefore returns a rank one step below lo.
func RankBefore(lo int64) (int64, error) {
	if lo < math.MinInt64+RankStep {
		return 0, ErrNoRankSpace
	}
	return lo - RankStep, nil
}

// RankInitial is the rank given to the first item of an empty sibling group.
func RankInitial() int64 { return RankStep }

// EvenRanks returns n strictly increasing ranks spaced RankStep apart.
func EvenRanks(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i+1) * RankStep
	}
	return out
}

// ranksBetween returns n strictly increasing ranks inside the open interval (lo, hi).
// hasLo/hasHi mark open-ended bounds, which are filled with RankStep spacing.
func ranksBetween(lo, hi int64, hasLo, hasHi bool, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]int64, 0, n)
	switch {
	case !hasLo && !hasHi:
		return EvenRanks(n), nil

	case hasLo && !hasHi:
		cur := lo
		for i := 0; i < n; i++ {
			r, err := RankAfter(cur)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
			cur = r
		}
		return out, nil

	case !hasLo && hasHi:
		cur := hi
		for i := 0; i < n; i++ {
			r, err := RankBefore(cur)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
			cur = r
		}
		// Built downwards from hi.
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out, nil
	}

	if lo >= hi {
		return nil, ErrNoRankSpace
	}
	gap := uint64(hi) - uint64(lo)
	step := gap / uint64(n+1)
	if step < 1 {
		return nil, ErrNoRankSpace
	}
	for i := 1; i <= n; i++ {
		out = append(out, lo+int64(step*uint64(i)))
	}
	return out, nil
}
