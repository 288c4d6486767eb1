package store

import (
	"errors"
	"sort"

	"prioritize/internal/model"
)

// ReorderResult describes the ranks needed to place new slots into a sibling group.
//
// Ranks holds one rank per placed slot, in order. RankByID holds rank rewrites for existing
// siblings and is only populated when the group had to be renumbered.
type ReorderResult struct {
	Ranks        []int64
	RankByID     map[string]int64
	UsedFallback bool
}

// SortItemsByRank sorts items in place by rank, then ID.
func SortItemsByRank(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return CompareItemsByRank(items[i], items[j]) < 0
	})
}

// CompareItemsByRank orders by rank, breaking ties by ID so equal ranks still sort deterministically.
func CompareItemsByRank(a, b model.Item) int {
	switch {
	case a.Rank < b.Rank:
		return -1
	case a.Rank > b.Rank:
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// PlanReorderRanks plans the rank for a single item placed at insertAt.
//
// sibs is the sibling group in rank order, *excluding* the item being placed.
func PlanReorderRanks(sibs []model.Item, insertAt int) (ReorderResult, error) {
	return PlanSpliceRanks(sibs, insertAt, 1)
}

// PlanSpliceRanks plans ranks for n consecutive slots inserted at insertAt.
//
// Behavior:
//   - Prefer assigning only the new slots (midpoint between neighbors, or a fixed step past an end).
//   - If the neighbors leave no room, renumber the whole final group with EvenRanks.
//     Existing siblings then appear in RankByID and UsedFallback is set.
func PlanSpliceRanks(sibs []model.Item, insertAt int, n int) (ReorderResult, error) {
	if n <= 0 {
		return ReorderResult{}, errors.New("splice requires at least one slot")
	}
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(sibs) {
		insertAt = len(sibs)
	}

	var lo, hi int64
	hasLo := insertAt > 0
	hasHi := insertAt < len(sibs)
	if hasLo {
		lo = sibs[insertAt-1].Rank
	}
	if hasHi {
		hi = sibs[insertAt].Rank
	}

	// Fast path: only the new slots get ranks.
	if !hasLo || !hasHi || lo < hi {
		ranks, err := ranksBetween(lo, hi, hasLo, hasHi, n)
		if err == nil {
			return ReorderResult{Ranks: ranks, RankByID: map[string]int64{}}, nil
		}
		if !errors.Is(err, ErrNoRankSpace) {
			return ReorderResult{}, err
		}
	}

	// Fallback: renumber the whole group, new slots included.
	even := EvenRanks(len(sibs) + n)
	res := ReorderResult{
		Ranks:        make([]int64, 0, n),
		RankByID:     map[string]int64{},
		UsedFallback: true,
	}
	idx := 0
	for i := 0; i < insertAt; i++ {
		if sibs[i].Rank != even[idx] {
			res.RankByID[sibs[i].ID] = even[idx]
		}
		idx++
	}
	for i := 0; i < n; i++ {
		res.Ranks = append(res.Ranks, even[idx])
		idx++
	}
	for i := insertAt; i < len(sibs); i++ {
		if sibs[i].Rank != even[idx] {
			res.RankByID[sibs[i].ID] = even[idx]
		}
		idx++
	}
	return res, nil
}
