package usecase

import "github.com/macrolens/diettracker/internal/domain"

// NutritionAggregator computes goal and eaten totals from the plan and the day's state.
// It holds no state of its own.
type NutritionAggregator struct {
	table *NutritionTable
}

// NewNutritionAggregator creates an aggregator that resolves planned items through table
func NewNutritionAggregator(table *NutritionTable) *NutritionAggregator {
	return &NutritionAggregator{table: table}
}

// LineItems returns the rows of category: planned items in the given order, then custom items.
func (a *NutritionAggregator) LineItems(
	category domain.MealCategory,
	planned []domain.PlannedItem,
	state domain.DailyState,
) []domain.LineItem {
	var lines []domain.LineItem
	for _, item := range planned {
		if item.Category != category {
			continue
		}
		lines = append(lines, domain.PlannedLine(item, state.IsConsumed(item.ID), state.IsHidden(item.ID)))
	}
	for _, item := range state.CustomItems {
		if item.Category != category {
			continue
		}
		lines = append(lines, domain.CustomLine(item, state.IsConsumed(item.ID), state.IsHidden(item.ID)))
	}
	return lines
}

// LineFacts returns the unrounded nutrition of a row
func (a *NutritionAggregator) LineFacts(line domain.LineItem) (domain.NutritionFacts, bool) {
	if line.Kind == domain.LineCustom {
		return line.Custom.Nutrition, true
	}
	return a.table.FactsFor(*line.Planned)
}

// MealTotals sums category. Each item is rounded to whole numbers before it is added.
// Only built-in items count towards the goal; master-list items are listed but never summed.
func (a *NutritionAggregator) MealTotals(
	category domain.MealCategory,
	source domain.PlannedItemSource,
	state domain.DailyState,
) domain.Totals {
	var planned, consumed domain.NutritionFacts

	for _, line := range a.LineItems(category, source.ResolvedPlannedItems(), state) {
		if line.Kind == domain.LinePlanned && isUserAdded(*line.Planned) {
			continue
		}

		facts, ok := a.LineFacts(line)
		if !ok {
			continue
		}
		rounded := facts.Rounded()

		if line.Kind == domain.LinePlanned {
			planned = planned.Add(rounded)
		}
		if line.CountsTowardsConsumed() {
			consumed = consumed.Add(rounded)
		}
	}

	return domain.Totals{
		Planned:   planned,
		Consumed:  consumed,
		Remaining: Remaining(planned, consumed),
	}
}

// DailyTotals sums MealTotals over every category
func (a *NutritionAggregator) DailyTotals(source domain.PlannedItemSource, state domain.DailyState) domain.Totals {
	var planned, consumed domain.NutritionFacts
	for _, category := range domain.MealCategories {
		t := a.MealTotals(category, source, state)
		planned = planned.Add(t.Planned)
		consumed = consumed.Add(t.Consumed)
	}
	return domain.Totals{
		Planned:   planned,
		Consumed:  consumed,
		Remaining: Remaining(planned, consumed),
	}
}

// Snapshot bundles every meal's totals with the daily totals
func (a *NutritionAggregator) Snapshot(source domain.PlannedItemSource, state domain.DailyState) domain.Snapshot {
	snap := domain.Snapshot{Date: state.Date}
	for _, category := range domain.MealCategories {
		t := a.MealTotals(category, source, state)
		snap.Meals = append(snap.Meals, domain.MealSnapshot{
			Category: category,
			Totals:   t,
			Complete: t.Complete(),
		})
	}
	snap.Daily = a.DailyTotals(source, state)
	snap.Complete = snap.Daily.Complete()
	return snap
}

// Remaining is planned minus consumed per field. Negative values mean over goal.
func Remaining(planned, consumed domain.NutritionFacts) domain.NutritionFacts {
	return planned.Sub(consumed)
}

func isUserAdded(item domain.PlannedItem) bool {
	return item.IsUserAdded || domain.IsUserItem(item.ID)
}
