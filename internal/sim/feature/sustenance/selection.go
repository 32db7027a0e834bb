package sustenance

import (
	"sort"

	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tuning"
)

// PickFood selects the item the policy eats today. accepts filters items the
// character's sustenance variant can consume at all.
func PickFood(items []model.Item, policy model.FoodPolicy, accepts func(model.Item) bool) (model.Item, bool) {
	var edible []model.Item
	for _, it := range items {
		if it.Quantity <= 0 || (accepts != nil && !accepts(it)) {
			continue
		}
		edible = append(edible, it)
	}
	if len(edible) == 0 {
		return model.Item{}, false
	}

	switch policy.Priority {
	case model.PriorityBestFirst:
		sort.SliceStable(edible, func(i, j int) bool { return bestFirstLess(edible[i], edible[j]) })
		return edible[0], true
	case model.PrioritySpecificItem:
		sortExpiringFirst(edible)
		for _, it := range edible {
			if policy.PreferredTemplateID != "" && it.TemplateID == policy.PreferredTemplateID {
				return it, true
			}
		}
		return edible[0], true
	case model.PriorityCategoryOnly:
		sortExpiringFirst(edible)
		for _, it := range edible {
			if policy.Category != "" && it.Category == policy.Category {
				return it, true
			}
		}
		return model.Item{}, false
	default:
		sortExpiringFirst(edible)
		return edible[0], true
	}
}

func sortExpiringFirst(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if da, db := expiry(a), expiry(b); da != db {
			return da < db
		}
		if a.Buffed() != b.Buffed() {
			return !a.Buffed()
		}
		return a.ID < b.ID
	})
}

func bestFirstLess(a, b model.Item) bool {
	if a.Buffed() != b.Buffed() {
		return a.Buffed()
	}
	if da, db := expiry(a), expiry(b); da != db {
		return da < db
	}
	return a.ID < b.ID
}

// expiry orders non-perishables after every perishable.
func expiry(it model.Item) int {
	if it.DaysRemaining == nil {
		return int(^uint(0) >> 1)
	}
	return *it.DaysRemaining
}

// HungerStateFor maps days without a meal onto the hunger state.
func HungerStateFor(days int, t tuning.HungerTuning) model.HungerState {
	switch {
	case days >= t.IncapacitatedAfterDays:
		return model.HungerIncapacitated
	case days >= t.StarvingAfterDays:
		return model.HungerStarving
	case days >= t.HungryAfterDays:
		return model.HungerHungry
	default:
		return model.HungerFed
	}
}

// NextDecayStage advances a counter variant by one miss, or resets it on a meal.
func NextDecayStage(current int, consumed bool, limit int) int {
	if consumed {
		return 0
	}
	if current < limit {
		return current + 1
	}
	return limit
}
