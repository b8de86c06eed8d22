package usecase

import "github.com/macrolens/diettracker/internal/domain"

func entry(id string, size float64, unit domain.UnitCode, protein, carbs, fat, fiber, calories float64) domain.NutritionTableEntry {
	return domain.NutritionTableEntry{
		ItemID:      id,
		ServingSize: size,
		ServingUnit: unit,
		Facts: domain.NutritionFacts{
			Protein:  protein,
			Carbs:    carbs,
			Fat:      fat,
			Fiber:    fiber,
			Calories: calories,
		},
	}
}

// BuiltInNutritionEntries returns the per-serving table shipped with the tracker.
// Milk and banana have one entry per meal so each planned row keeps a distinct id.
func BuiltInNutritionEntries() []domain.NutritionTableEntry {
	g, pc, sc := domain.UnitGram, domain.UnitPiece, domain.UnitScoop
	return []domain.NutritionTableEntry{
		// Breakfast
		entry("powderedGreens", 1, sc, 2, 6, 0, 2, 32),
		entry("sourdough", 35, g, 3, 19, 0, 0, 88),
		entry("peanutButter", 32, g, 7, 6, 16, 0, 196),
		entry("wheyIsolate", 32.5, g, 25, 3, 1, 0, 121),
		entry("vitaminGummy", 2, pc, 4, 0, 0, 0, 16),
		entry("breakfastMilk", 240, g, 8, 12, 9, 0, 161),
		entry("lunchMilk", 240, g, 8, 12, 9, 0, 161),
		entry("dinnerMilk", 240, g, 8, 12, 9, 0, 161),
		entry("dessertMilk", 240, g, 8, 12, 9, 0, 161),
		entry("breakfastBanana", 118, g, 1.3, 27, 0.4, 0, 116.8),
		entry("dessertBanana", 118, g, 1.3, 27, 0.4, 0, 116.8),
		// Lunch
		entry("sweetPotato", 133, g, 2, 27, 0, 0, 116),
		entry("chickenThighs", 112, g, 21, 0, 6, 0, 138),
		entry("butter", 14, g, 0, 0, 11, 0, 99),
		entry("broccoli", 90, g, 2, 6, 0, 2, 32),
		// Dinner
		entry("whiteRice", 45, g, 3, 37, 0, 0, 160),
		entry("spinach", 100, g, 2.9, 3.6, 0.4, 0, 29.6),
		entry("sirloin", 84, g, 19, 1, 5, 0, 125),
		entry("eggs", 1, pc, 6.3, 0.4, 4.8, 0, 70),
		// Dessert
		entry("yogurt", 170, g, 18, 5, 0, 0, 92),
		entry("creatine", 5, g, 0, 0, 0, 0, 0),
		entry("ancientGrains", 55, g, 5, 39, 9, 0, 257),
		entry("almondButter", 32, g, 6, 7, 17, 0, 205),
	}
}

func planned(id, name string, category domain.MealCategory, amount float64, unit domain.UnitCode) domain.PlannedItem {
	return domain.PlannedItem{ID: id, Name: name, Category: category, Amount: amount, Unit: unit}
}

// BuiltInPlannedItems returns the fixed daily plan.
func BuiltInPlannedItems() []domain.PlannedItem {
	g, pc, sc := domain.UnitGram, domain.UnitPiece, domain.UnitScoop
	return []domain.PlannedItem{
		planned("powderedGreens", "Powdered Greens", domain.Breakfast, 1, sc),
		planned("sourdough", "Sourdough", domain.Breakfast, 50, g),
		planned("peanutButter", "Peanut Butter", domain.Breakfast, 25, g),
		planned("wheyIsolate", "MyProtein Whey Isolate", domain.Breakfast, 25, g),
		planned("vitaminGummy", "Multivitamin Gummy", domain.Breakfast, 1, pc),
		planned("breakfastMilk", "Milk", domain.Breakfast, 400, g),
		planned("breakfastBanana", "Banana", domain.Breakfast, 100, g),

		planned("sweetPotato", "Sweet Potato", domain.Lunch, 200, g),
		planned("lunchMilk", "Milk", domain.Lunch, 220, g),
		planned("chickenThighs", "Chicken Thighs", domain.Lunch, 150, g),
		planned("butter", "Butter", domain.Lunch, 4, g),
		planned("broccoli", "Broccoli", domain.Lunch, 100, g),

		planned("whiteRice", "White Rice", domain.Dinner, 50, g),
		planned("spinach", "Spinach", domain.Dinner, 100, g),
		planned("sirloin", "Sous-Vide Sirloin", domain.Dinner, 125, g),
		planned("dinnerMilk", "Milk", domain.Dinner, 200, g),
		planned("eggs", "Eggs", domain.Dinner, 2, pc),

		planned("yogurt", "Yogurt 0%", domain.Dessert, 250, g),
		planned("creatine", "MyProtein Creatine", domain.Dessert, 5, g),
		planned("dessertMilk", "Milk", domain.Dessert, 100, g),
		planned("ancientGrains", "Kirkland Ancient Grains", domain.Dessert, 25, g),
		planned("dessertBanana", "Banana", domain.Dessert, 100, g),
		planned("almondButter", "Almond Butter", domain.Dessert, 25, g),
	}
}
