// Package planner implements the itinerary allocation engine: a pure,
// deterministic function from a pool of candidate activities, a trip length,
// and an interest profile to a per-day activity partition. It performs no I/O
// and holds no state, so it is safe to call from any number of concurrent
// requests.
package planner

import (
	"fmt"
	"sort"

	"github.com/avelis/tripweaver/backend/internal/domain"
)

// DailyCapacityHours is the maximum summed activity duration per day.
// An activity whose single duration exceeds this can never be placed and is
// silently skipped.
const DailyCapacityHours = 8.0

// interestScore is added to an activity whose category token appears in the
// traveler's interest profile.
const interestScore = 2

// Allocate partitions activities across daysCount days.
//
// Activities are scored (+2 when their category matches the interest profile)
// and visited in score-descending order, ties broken by ascending price level
// then ascending name, so the result is identical for identical inputs — no
// randomness anywhere. Each activity goes into the first day whose running
// duration total still has room for it; activities that fit nowhere are
// skipped. Per-day output order is placement order and becomes the persisted
// 1-based order index.
//
// An empty pool is legal and yields all-empty days plus a warning, as does
// any shortfall that leaves days empty. The only error is a non-positive
// daysCount, which is a caller bug, not a business condition.
func Allocate(activities []domain.Activity, daysCount int, interests domain.InterestProfile) (domain.ItineraryPlan, error) {
	if daysCount < 1 {
		return domain.ItineraryPlan{}, fmt.Errorf("planner.Allocate: %w: daysCount must be positive, got %d", domain.ErrValidation, daysCount)
	}

	// Sort a copy; callers hand us catalog slices they may reuse.
	pool := make([]domain.Activity, len(activities))
	copy(pool, activities)
	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := score(pool[i], interests), score(pool[j], interests)
		if si != sj {
			return si > sj
		}
		if pool[i].PriceLevel != pool[j].PriceLevel {
			return pool[i].PriceLevel < pool[j].PriceLevel
		}
		return pool[i].Name < pool[j].Name
	})

	days := make([][]domain.Activity, daysCount)
	loads := make([]float64, daysCount)

	for _, act := range pool {
		if act.DurationHours <= 0 || act.DurationHours > DailyCapacityHours {
			continue
		}
		for d := 0; d < daysCount; d++ {
			if loads[d]+act.DurationHours <= DailyCapacityHours {
				days[d] = append(days[d], act)
				loads[d] += act.DurationHours
				break
			}
		}
	}

	plan := domain.ItineraryPlan{Days: days}

	empty := 0
	for _, day := range days {
		if len(day) == 0 {
			empty++
		}
	}
	if empty > 0 {
		plan.Warning = fmt.Sprintf("insufficient activities for %d of %d days", empty, daysCount)
	}

	return plan, nil
}

// score returns the greedy ordering score for one activity.
func score(act domain.Activity, interests domain.InterestProfile) int {
	if interests.Contains(act.Category) {
		return interestScore
	}
	return 0
}
