package domain

import "math"

// UnitCode identifies the unit an amount is measured in (e.g. "gram", "piece", "scoop")
type UnitCode string

const (
	UnitGram  UnitCode = "gram"
	UnitPiece UnitCode = "piece"
	UnitScoop UnitCode = "scoop"
)

// NutritionFacts holds the macronutrients and energy of an amount of food
type NutritionFacts struct {
	Protein  float64 `json:"protein"`  // grams
	Carbs    float64 `json:"carbs"`    // grams
	Fat      float64 `json:"fat"`      // grams
	Fiber    float64 `json:"fiber"`    // grams
	Calories float64 `json:"calories"` // kcal
}

// NutritionTableEntry is the per-serving nutrition of a known item.
// Entries are defined once at startup and never mutated.
type NutritionTableEntry struct {
	ItemID      string         `json:"itemId"`
	ServingSize float64        `json:"servingSize"`
	ServingUnit UnitCode       `json:"servingUnit"`
	Facts       NutritionFacts `json:"facts"`
}

// Add returns the per-field sum of n and o.
func (n NutritionFacts) Add(o NutritionFacts) NutritionFacts {
	return NutritionFacts{
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
		Calories: n.Calories + o.Calories,
	}
}

// Sub returns the per-field difference n - o. Results may be negative.
func (n NutritionFacts) Sub(o NutritionFacts) NutritionFacts {
	return NutritionFacts{
		Protein:  n.Protein - o.Protein,
		Carbs:    n.Carbs - o.Carbs,
		Fat:      n.Fat - o.Fat,
		Fiber:    n.Fiber - o.Fiber,
		Calories: n.Calories - o.Calories,
	}
}

// Rounded rounds every field to the nearest integer, halves rounding up.
func (n NutritionFacts) Rounded() NutritionFacts {
	return NutritionFacts{
		Protein:  RoundHalfUp(n.Protein),
		Carbs:    RoundHalfUp(n.Carbs),
		Fat:      RoundHalfUp(n.Fat),
		Fiber:    RoundHalfUp(n.Fiber),
		Calories: RoundHalfUp(n.Calories),
	}
}

// Valid reports whether every field is finite and non-negative.
func (n NutritionFacts) Valid() bool {
	for _, v := range []float64{n.Protein, n.Carbs, n.Fat, n.Fiber, n.Calories} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// DeriveCalories estimates energy from macros: 4 kcal/g protein and carbs, 9 kcal/g fat.
func DeriveCalories(protein, carbs, fat float64) float64 {
	return protein*4 + carbs*4 + fat*9
}

// RoundHalfUp rounds x to the nearest integer with ties going towards +Inf,
// so -2.5 becomes -2 and 2.5 becomes 3.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundTenth rounds x to one decimal place with ties going towards +Inf.
func RoundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
