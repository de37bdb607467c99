// Package selection implements fair winner selection under the recent-winner
// cooldown constraint. It is pure: callers supply the participant set, the
// blocked set, and a randomness source, and get back an ordered winner list.
package selection

import (
	"fmt"
	"sort"
	"time"

	"giveaway-bot-backend/internal/utils/random"
)

// Result holds the outcome of a single draw.
type Result struct {
	Winners      []int64  `json:"winners"`
	UsedFallback bool     `json:"used_fallback"`
	Trail        []string `json:"trail,omitempty"`
}

// Select draws up to winnersCount winners from participants.
//
// Entrants in blocked (user ID -> most recent win timestamp) are excluded
// while enough eligible entrants remain. When they do not, remaining slots
// are filled from blocked participants ordered by oldest win first, ties
// broken by user ID, and UsedFallback is set. An empty participant set yields
// an empty winner list; that is not an error. Winners are never duplicated
// or fabricated, so fewer than winnersCount may be returned.
func Select(participants []int64, blocked map[int64]time.Time, winnersCount int, src random.Source) (Result, error) {
	res := Result{}
	if winnersCount < 0 {
		winnersCount = 0
	}
	if len(participants) == 0 || winnersCount == 0 {
		res.Trail = append(res.Trail, "no participants or zero winner slots, nothing to draw")
		return res, nil
	}

	eligible := make([]int64, 0, len(participants))
	ineligible := make([]int64, 0)
	for _, id := range participants {
		if _, isBlocked := blocked[id]; isBlocked {
			ineligible = append(ineligible, id)
		} else {
			eligible = append(eligible, id)
		}
	}
	res.Trail = append(res.Trail, fmt.Sprintf("%d participants, %d eligible, %d on cooldown", len(participants), len(eligible), len(ineligible)))

	if len(eligible) >= winnersCount {
		drawn, err := draw(eligible, winnersCount, src)
		if err != nil {
			return Result{}, err
		}
		res.Winners = drawn
		res.Trail = append(res.Trail, fmt.Sprintf("drew %d winner(s) from eligible pool", len(drawn)))
		return res, nil
	}

	// Not enough eligible entrants: take them all, then fill from the
	// cooldown-blocked pool, oldest win first.
	winners := make([]int64, 0, winnersCount)
	if len(eligible) > 0 {
		drawn, err := draw(eligible, len(eligible), src)
		if err != nil {
			return Result{}, err
		}
		winners = append(winners, drawn...)
	}

	sort.SliceStable(ineligible, func(i, j int) bool {
		wi, wj := blocked[ineligible[i]], blocked[ineligible[j]]
		if wi.Equal(wj) {
			return ineligible[i] < ineligible[j]
		}
		return wi.Before(wj)
	})

	for _, id := range ineligible {
		if len(winners) >= winnersCount {
			break
		}
		winners = append(winners, id)
		res.Trail = append(res.Trail, fmt.Sprintf("fallback pick %d (last win %s)", id, blocked[id].Format(time.RFC3339)))
	}

	res.Winners = winners
	res.UsedFallback = true
	return res, nil
}

// draw picks count entrants uniformly without replacement.
func draw(pool []int64, count int, src random.Source) ([]int64, error) {
	shuffled := append([]int64(nil), pool...)
	if err := random.Shuffle(shuffled, src); err != nil {
		return nil, fmt.Errorf("failed to shuffle pool: %w", err)
	}
	return shuffled[:count], nil
}
