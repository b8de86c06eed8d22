package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MealCategory groups items into one of the four daily meals
type MealCategory string

const (
	Breakfast MealCategory = "breakfast"
	Lunch     MealCategory = "lunch"
	Dinner    MealCategory = "dinner"
	Dessert   MealCategory = "dessert"
)

// MealCategories lists every category in display order.
var MealCategories = []MealCategory{Breakfast, Lunch, Dinner, Dessert}

// ParseMealCategory normalizes s and checks it names a known category.
func ParseMealCategory(s string) (MealCategory, error) {
	c := MealCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of MealCategories.
func (c MealCategory) Valid() bool {
	switch c {
	case Breakfast, Lunch, Dinner, Dessert:
		return true
	}
	return false
}

// Id prefixes for generated items.
const (
	UserItemPrefix   = "user_"
	CustomItemPrefix = "custom_"
)

// PlannedItem is a baseline food entry for a meal. Built-in items are compiled in;
// user-added items come from the persisted master list and carry absolute nutrition.
type PlannedItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    MealCategory    `json:"category"`
	Amount      float64         `json:"amount"`
	Unit        UnitCode        `json:"unit"`
	Nutrition   *NutritionFacts `json:"nutrition,omitempty"`
	IsUserAdded bool            `json:"isUserAdded,omitempty"`
	DateAdded   *time.Time      `json:"dateAdded,omitempty"`
	LastUsed    *time.Time      `json:"lastUsed,omitempty"`
}

// IsUserItem reports whether the id belongs to the master list.
func IsUserItem(id string) bool {
	return strings.HasPrefix(id, UserItemPrefix)
}

// CustomItem is an ad-hoc item added for the current day only.
// Nutrition is absolute for Amount, not per serving.
type CustomItem struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  MealCategory   `json:"category"`
	Amount    float64        `json:"amount"`
	Unit      UnitCode       `json:"unit"`
	Nutrition NutritionFacts `json:"nutrition"`
	IsCustom  bool           `json:"isCustom"`
}

// LineKind tags the variant held by a LineItem.
type LineKind int

const (
	LinePlanned LineKind = iota
	LineCustom
)

func (k LineKind) String() string {
	if k == LineCustom {
		return "custom"
	}
	return "planned"
}

// LineItem is one row of a meal: either a planned item or a custom item.
// Exactly one of Planned and Custom is set, selected by Kind.
type LineItem struct {
	Kind     LineKind
	Planned  *PlannedItem
	Custom   *CustomItem
	Consumed bool
	Hidden   bool
}

// PlannedLine wraps a planned item.
func PlannedLine(item PlannedItem, consumed, hidden bool) LineItem {
	return LineItem{Kind: LinePlanned, Planned: &item, Consumed: consumed, Hidden: hidden}
}

// CustomLine wraps a custom item.
func CustomLine(item CustomItem, consumed, hidden bool) LineItem {
	return LineItem{Kind: LineCustom, Custom: &item, Consumed: consumed, Hidden: hidden}
}

// ID returns the id of the wrapped item.
func (l LineItem) ID() string {
	if l.Kind == LineCustom {
		return l.Custom.ID
	}
	return l.Planned.ID
}

// Category returns the meal category of the wrapped item.
func (l LineItem) Category() MealCategory {
	if l.Kind == LineCustom {
		return l.Custom.Category
	}
	return l.Planned.Category
}

// CountsTowardsConsumed reports whether the line adds to consumed totals.
func (l LineItem) CountsTowardsConsumed() bool {
	return l.Consumed && !l.Hidden
}

// ItemSource selects where a new item's nutrition comes from.
// Exactly one field must be set.
type ItemSource struct {
	CatalogRef *CatalogRef  `json:"catalogRef,omitempty"`
	Manual     *ManualEntry `json:"manual,omitempty"`
}

// CatalogRef points at a nutrition table entry; nutrition is scaled from it.
type CatalogRef struct {
	ItemID string `json:"itemId"`
}

// ManualEntry carries user-typed macros. Calories defaults to DeriveCalories when nil.
type ManualEntry struct {
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    float64  `json:"fiber,omitempty"`
	Calories *float64 `json:"calories,omitempty"`
}

// Facts resolves the manual entry to absolute nutrition.
func (m ManualEntry) Facts() NutritionFacts {
	calories := DeriveCalories(m.Protein, m.Carbs, m.Fat)
	if m.Calories != nil {
		calories = *m.Calories
	}
	return NutritionFacts{
		Protein:  m.Protein,
		Carbs:    m.Carbs,
		Fat:      m.Fat,
		Fiber:    m.Fiber,
		Calories: calories,
	}
}

// NewItemRequest is the validated input of the add-item dialog.
type NewItemRequest struct {
	Name             string       `json:"name"`
	Category         MealCategory `json:"category"`
	Source           ItemSource   `json:"source"`
	Amount           float64      `json:"amount"`
	Unit             UnitCode     `json:"unit"`
	SaveToMasterList bool         `json:"saveToMasterList"`
}

// Validate rejects requests that must not reach any state.
func (r NewItemRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "please enter a name")
	}
	if !r.Category.Valid() {
		return NewValidationError("category", "please select a meal category")
	}
	if !positiveFinite(r.Amount) {
		return NewValidationError("amount", "please enter an amount greater than zero")
	}

	switch {
	case r.Source.CatalogRef != nil && r.Source.Manual != nil:
		return NewValidationError("source", "choose either a known item or manual entry, not both")
	case r.Source.CatalogRef != nil:
		if strings.TrimSpace(r.Source.CatalogRef.ItemID) == "" {
			return NewValidationError("source.catalogRef.itemId", "please select an item from the list")
		}
	case r.Source.Manual != nil:
		if strings.TrimSpace(string(r.Unit)) == "" {
			return NewValidationError("unit", "please enter a unit")
		}
		m := r.Source.Manual
		fields := []struct {
			name  string
			value float64
		}{
			{"source.manual.protein", m.Protein},
			{"source.manual.carbs", m.Carbs},
			{"source.manual.fat", m.Fat},
			{"source.manual.fiber", m.Fiber},
		}
		for _, f := range fields {
			if !nonNegativeFinite(f.value) {
				return NewValidationError(f.name, "must be a non-negative number")
			}
		}
		if m.Calories != nil && !nonNegativeFinite(*m.Calories) {
			return NewValidationError("source.manual.calories", "must be a non-negative number")
		}
	default:
		return NewValidationError("source", "choose a known item or enter nutrition manually")
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func nonNegativeFinite(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// CatalogSuggestion is one autocomplete hit: a known item with its suggested amount.
type CatalogSuggestion struct {
	ItemID      string         `json:"itemId"`
	Name        string         `json:"name"`
	Amount      float64        `json:"amount"`
	Unit        UnitCode       `json:"unit"`
	Facts       NutritionFacts `json:"facts"`
	IsUserAdded bool           `json:"isUserAdded,omitempty"`
}
