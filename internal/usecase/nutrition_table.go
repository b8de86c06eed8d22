package usecase

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/macrolens/diettracker/internal/domain"
)

// NutritionTable is the read-only registry of per-serving nutrition keyed by item id
type NutritionTable struct {
	entries map[string]domain.NutritionTableEntry
	order   []string
	logger  *zap.Logger
}

// NewNutritionTable builds a table from entries, rejecting duplicates and non-positive serving sizes
func NewNutritionTable(entries []domain.NutritionTableEntry, logger *zap.Logger) (*NutritionTable, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &NutritionTable{
		entries: make(map[string]domain.NutritionTableEntry, len(entries)),
		order:   make([]string, 0, len(entries)),
		logger:  logger,
	}

	for _, e := range entries {
		if e.ItemID == "" {
			return nil, fmt.Errorf("nutrition entry without item id")
		}
		if _, dup := t.entries[e.ItemID]; dup {
			return nil, fmt.Errorf("duplicate nutrition entry %q", e.ItemID)
		}
		if !positive(e.ServingSize) {
			return nil, fmt.Errorf("nutrition entry %q: serving size must be positive", e.ItemID)
		}
		if !e.Facts.Valid() {
			return nil, fmt.Errorf("nutrition entry %q: facts must be non-negative", e.ItemID)
		}
		t.entries[e.ItemID] = e
		t.order = append(t.order, e.ItemID)
	}

	return t, nil
}

// DefaultNutritionTable returns the table of built-in items
func DefaultNutritionTable(logger *zap.Logger) *NutritionTable {
	t, err := NewNutritionTable(BuiltInNutritionEntries(), logger)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the entry for itemID or an error wrapping domain.ErrNotFound
func (t *NutritionTable) Lookup(itemID string) (domain.NutritionTableEntry, error) {
	entry, ok := t.entries[itemID]
	if !ok {
		return domain.NutritionTableEntry{}, fmt.Errorf("%w: %s", domain.ErrNotFound, itemID)
	}
	return entry, nil
}

// Entries returns all entries in definition order
func (t *NutritionTable) Entries() []domain.NutritionTableEntry {
	out := make([]domain.NutritionTableEntry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.entries[id])
	}
	return out
}

// Len returns the number of entries
func (t *NutritionTable) Len() int {
	return len(t.order)
}

// Scale converts a per-serving entry to the nutrition of amount, each fact rounded to one decimal.
func Scale(entry domain.NutritionTableEntry, amount float64) domain.NutritionFacts {
	m := amount / entry.ServingSize
	f := entry.Facts
	return domain.NutritionFacts{
		Protein:  domain.RoundTenth(f.Protein * m),
		Carbs:    domain.RoundTenth(f.Carbs * m),
		Fat:      domain.RoundTenth(f.Fat * m),
		Fiber:    domain.RoundTenth(f.Fiber * m),
		Calories: domain.RoundTenth(f.Calories * m),
	}
}

// FactsFor resolves the nutrition of a planned item.
// Master-list items (user_ prefix) carry absolute nutrition and skip the table.
// A miss is logged and reported as false; the item then contributes nothing.
func (t *NutritionTable) FactsFor(item domain.PlannedItem) (domain.NutritionFacts, bool) {
	if domain.IsUserItem(item.ID) {
		if item.Nutrition == nil {
			t.logger.Warn("user item has no stored nutrition", zap.String("item_id", item.ID))
			return domain.NutritionFacts{}, false
		}
		return *item.Nutrition, true
	}

	entry, err := t.Lookup(item.ID)
	if err != nil {
		t.logger.Warn("no nutrition info found", zap.String("item_id", item.ID))
		return domain.NutritionFacts{}, false
	}
	return Scale(entry, item.Amount), true
}

// ScaleForNewItem scales itemID to amount the way the add-item form does:
// macros and fiber to one decimal, calories to a whole number.
func (t *NutritionTable) ScaleForNewItem(itemID string, amount float64) (domain.NutritionFacts, domain.UnitCode, error) {
	entry, err := t.Lookup(itemID)
	if err != nil {
		return domain.NutritionFacts{}, "", err
	}
	facts := Scale(entry, amount)
	facts.Calories = domain.RoundHalfUp(entry.Facts.Calories * amount / entry.ServingSize)
	return facts, entry.ServingUnit, nil
}

// Search returns up to limit entries whose display name or id contains query, in table order.
func (t *NutritionTable) Search(query string, limit int) []domain.CatalogSuggestion {
	q := normalizeSearchText(query)
	if q == "" || limit <= 0 {
		return nil
	}

	var out []domain.CatalogSuggestion
	for _, id := range t.order {
		if len(out) >= limit {
			break
		}
		name := DisplayName(id)
		if !strings.Contains(normalizeSearchText(name), q) && !strings.Contains(strings.ToLower(id), q) {
			continue
		}
		e := t.entries[id]
		out = append(out, domain.CatalogSuggestion{
			ItemID: id,
			Name:   name,
			Amount: e.ServingSize,
			Unit:   e.ServingUnit,
			Facts:  e.Facts,
		})
	}
	return out
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
