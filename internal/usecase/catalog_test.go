package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolens/diettracker/internal/domain"
)

func newTestCatalog(store domain.KeyValueStore) *ItemCatalog {
	return NewItemCatalog(store, BuiltInPlannedItems(), ItemCatalogConfig{Now: fixedClock(jan1)}, nil)
}

func TestItemCatalog_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("absent master list", func(t *testing.T) {
		catalog := newTestCatalog(NewMockKeyValueStore())
		require.NoError(t, catalog.Load(ctx))
		assert.Equal(t, BuiltInPlannedItems(), catalog.ResolvedPlannedItems())
		assert.Empty(t, catalog.MasterItems())
	})

	t.Run("stored items are appended after built-ins", func(t *testing.T) {
		store := NewMockKeyValueStore()
		store.data[DefaultMasterItemsKey] = `[{"id":"user_1","name":"Oats","category":"breakfast","amount":40,"unit":"gram","nutrition":{"protein":5,"carbs":27,"fat":3,"fiber":4,"calories":150}}]`

		catalog := newTestCatalog(store)
		require.NoError(t, catalog.Load(ctx))

		resolved := catalog.ResolvedPlannedItems()
		require.Len(t, resolved, len(BuiltInPlannedItems())+1)
		last := resolved[len(resolved)-1]
		assert.Equal(t, "user_1", last.ID)
		assert.True(t, last.IsUserAdded)
		assert.Equal(t, 150.0, last.Nutrition.Calories)
	})

	t.Run("corrupted master list is ignored", func(t *testing.T) {
		logger, logs := observedLogger()
		store := NewMockKeyValueStore()
		store.data[DefaultMasterItemsKey] = `{not json`

		catalog := NewItemCatalog(store, BuiltInPlannedItems(), ItemCatalogConfig{}, logger)
		require.NoError(t, catalog.Load(ctx))
		assert.Empty(t, catalog.MasterItems())
		assert.Equal(t, 1, logs.FilterMessage("ignoring master list").Len())
	})

	t.Run("read failure is returned", func(t *testing.T) {
		store := NewMockKeyValueStore()
		store.getError = errors.New("disk unavailable")

		catalog := newTestCatalog(store)
		assert.Error(t, catalog.Load(ctx))
		assert.Empty(t, catalog.MasterItems())
	})
}

func TestItemCatalog_PlannedItems_SortedByAmount(t *testing.T) {
	catalog := newTestCatalog(NewMockKeyValueStore())

	var ids []string
	for _, item := range catalog.PlannedItems(domain.Breakfast) {
		ids = append(ids, item.ID)
	}

	assert.Equal(t, []string{
		"breakfastMilk",
		"breakfastBanana",
		"sourdough",
		"peanutButter",
		"wheyIsolate",
		"powderedGreens",
		"vitaminGummy",
	}, ids)
}

func TestItemCatalog_AddMasterItem(t *testing.T) {
	ctx := context.Background()
	store := NewMockKeyValueStore()
	catalog := newTestCatalog(store)
	require.NoError(t, catalog.Load(ctx))

	req := domain.NewItemRequest{Name: " Oats ", Category: domain.Breakfast, Amount: 40, Unit: domain.UnitGram}
	facts := domain.NutritionFacts{Protein: 5, Carbs: 27, Fat: 3, Calories: 150}

	first, err := catalog.AddMasterItem(ctx, req, facts)
	require.NoError(t, err)
	second, err := catalog.AddMasterItem(ctx, req, facts)
	require.NoError(t, err)

	assert.Equal(t, "user_1704110400000", first.ID)
	assert.Equal(t, "user_1704110400001", second.ID, "ids stay unique within one millisecond")
	assert.Equal(t, "Oats", first.Name)
	assert.True(t, first.IsUserAdded)
	require.NotNil(t, first.DateAdded)
	assert.Equal(t, jan1, *first.DateAdded)

	var stored []domain.PlannedItem
	require.NoError(t, json.Unmarshal([]byte(store.data[DefaultMasterItemsKey]), &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, first.ID, stored[0].ID)
	assert.Equal(t, 150.0, stored[0].Nutrition.Calories)

	reloaded := newTestCatalog(store)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.MasterItems(), 2)
}

func TestItemCatalog_AddMasterItem_PersistFailure(t *testing.T) {
	ctx := context.Background()
	store := NewMockKeyValueStore()
	store.setError = domain.ErrQuotaExceeded
	catalog := newTestCatalog(store)

	item, err := catalog.AddMasterItem(ctx, domain.NewItemRequest{Name: "Oats", Category: domain.Lunch, Amount: 40, Unit: domain.UnitGram}, domain.NutritionFacts{})
	assert.True(t, errors.Is(err, domain.ErrPersist))

	found, ok := catalog.FindItem(item.ID)
	assert.True(t, ok, "item stays usable for the session")
	assert.Equal(t, domain.Lunch, found.Category)
}

func TestItemCatalog_Search(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(NewMockKeyValueStore())
	_, err := catalog.AddMasterItem(ctx, domain.NewItemRequest{Name: "Overnight Oats", Category: domain.Breakfast, Amount: 40, Unit: domain.UnitGram}, domain.NutritionFacts{Calories: 150})
	require.NoError(t, err)

	got := catalog.Search("oats", 5)
	require.Len(t, got, 1)
	assert.Equal(t, "Overnight Oats", got[0].Name)
	assert.True(t, got[0].IsUserAdded)
	assert.Equal(t, 150.0, got[0].Facts.Calories)

	assert.Empty(t, catalog.Search("rice", 5))
}
