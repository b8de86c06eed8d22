package domain

// DateLayout renders a calendar day the way the persisted record stores it, e.g. "Mon Jan 01 2024".
const DateLayout = "Mon Jan 02 2006"

// DailyState is the consumed/hidden flags and custom items of one calendar day.
// Date identifies the local day the state applies to.
type DailyState struct {
	ConsumedFlags map[string]bool
	HiddenFlags   map[string]bool
	CustomItems   []CustomItem
	Date          string
}

// NewDailyState returns an empty state for date.
func NewDailyState(date string) DailyState {
	return DailyState{
		ConsumedFlags: make(map[string]bool),
		HiddenFlags:   make(map[string]bool),
		CustomItems:   []CustomItem{},
		Date:          date,
	}
}

// IsConsumed reports the consumed flag of id; absent means false.
func (s DailyState) IsConsumed(id string) bool {
	return s.ConsumedFlags[id]
}

// IsHidden reports the hidden flag of id; absent means false.
func (s DailyState) IsHidden(id string) bool {
	return s.HiddenFlags[id]
}

// Clone returns a deep copy so callers cannot mutate the owner's maps.
func (s DailyState) Clone() DailyState {
	out := DailyState{
		ConsumedFlags: make(map[string]bool, len(s.ConsumedFlags)),
		HiddenFlags:   make(map[string]bool, len(s.HiddenFlags)),
		CustomItems:   make([]CustomItem, len(s.CustomItems)),
		Date:          s.Date,
	}
	for k, v := range s.ConsumedFlags {
		out.ConsumedFlags[k] = v
	}
	for k, v := range s.HiddenFlags {
		out.HiddenFlags[k] = v
	}
	copy(out.CustomItems, s.CustomItems)
	return out
}

// FindCustomItem returns the custom item with id, if any.
func (s DailyState) FindCustomItem(id string) (CustomItem, bool) {
	for _, item := range s.CustomItems {
		if item.ID == id {
			return item, true
		}
	}
	return CustomItem{}, false
}

// PersistedDailyState is the storage schema of the daily record.
type PersistedDailyState struct {
	State PersistedFlags `json:"state"`
	Date  string         `json:"date"`
}

// PersistedFlags is the inner "state" object of the daily record.
type PersistedFlags struct {
	Consumed    map[string]bool `json:"consumed"`
	Checked     map[string]bool `json:"checked,omitempty"` // browser exports; read only
	Hidden      map[string]bool `json:"hidden,omitempty"`
	CustomItems []CustomItem    `json:"customItems"`
}

// Totals compares goal nutrition against eaten nutrition for a meal or a whole day.
// All values are integers.
type Totals struct {
	Planned   NutritionFacts `json:"planned"`
	Consumed  NutritionFacts `json:"consumed"`
	Remaining NutritionFacts `json:"remaining"`
}

// Complete reports whether the calorie goal is met or exceeded.
func (t Totals) Complete() bool {
	return t.Remaining.Calories <= 0
}

// Over lists the fields whose remaining value is negative.
func (t Totals) Over() []string {
	var over []string
	r := t.Remaining
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"calories", r.Calories},
		{"protein", r.Protein},
		{"carbs", r.Carbs},
		{"fat", r.Fat},
	} {
		if f.value < 0 {
			over = append(over, f.name)
		}
	}
	return over
}

// MealSnapshot is the computed view of one meal.
type MealSnapshot struct {
	Category MealCategory `json:"category"`
	Totals   Totals       `json:"totals"`
	Complete bool         `json:"complete"`
}

// Snapshot is pushed to presentation adapters after every load or mutation.
type Snapshot struct {
	Date     string         `json:"date"`
	Meals    []MealSnapshot `json:"meals"`
	Daily    Totals         `json:"daily"`
	Complete bool           `json:"complete"`
}
