package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolens/diettracker/internal/domain"
)

type trackerFixture struct {
	service   *TrackerService
	store     *MockKeyValueStore
	publisher *recordingPublisher
}

func newTrackerFixture(t *testing.T) trackerFixture {
	t.Helper()
	store := NewMockKeyValueStore()
	publisher := &recordingPublisher{}

	service := NewTrackerService(
		DefaultNutritionTable(nil),
		NewItemCatalog(store, BuiltInPlannedItems(), ItemCatalogConfig{Now: fixedClock(jan1)}, nil),
		NewDailyStateStore(store, DailyStateStoreConfig{Location: time.UTC, Now: fixedClock(jan1)}, nil),
		publisher,
		TrackerServiceConfig{Now: fixedClock(jan1)},
		nil,
	)
	require.NoError(t, service.Load(context.Background()))
	return trackerFixture{service: service, store: store, publisher: publisher}
}

func manualRequest(category domain.MealCategory) domain.NewItemRequest {
	return domain.NewItemRequest{
		Name:     "Protein Bar",
		Category: category,
		Amount:   1,
		Unit:     domain.UnitPiece,
		Source:   domain.ItemSource{Manual: &domain.ManualEntry{Protein: 20, Carbs: 30, Fat: 5}},
	}
}

func TestTrackerService_Load_Publishes(t *testing.T) {
	f := newTrackerFixture(t)

	require.Len(t, f.publisher.snapshots, 1)
	assert.Equal(t, "Mon Jan 01 2024", f.publisher.last().Date)
	assert.Equal(t, "Mon Jan 01 2024", f.service.Today())
}

func TestTrackerService_SubmitNewItem_Manual(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	before := f.service.GetDailyTotals()

	item, err := f.service.SubmitNewItem(ctx, manualRequest(domain.Lunch))
	require.NoError(t, err)

	assert.Equal(t, "custom_1704110400000", item.ID)
	assert.Equal(t, 245.0, item.Nutrition.Calories)
	assert.True(t, item.IsCustom)
	assert.True(t, f.service.IsConsumed(item.ID))

	lunch, err := f.service.GetMealTotals(domain.Lunch)
	require.NoError(t, err)
	daily := f.service.GetDailyTotals()

	assert.Equal(t, 245.0, lunch.Consumed.Calories)
	assert.Equal(t, before.Consumed.Calories+245, daily.Consumed.Calories)
	assert.Equal(t, before.Planned, daily.Planned)

	custom, err := f.service.GetCustomItems(domain.Lunch)
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, item, custom[0])

	assert.Equal(t, 245.0, f.publisher.last().Daily.Consumed.Calories)
}

func TestTrackerService_SubmitNewItem_ExplicitCaloriesOverride(t *testing.T) {
	f := newTrackerFixture(t)
	req := manualRequest(domain.Dinner)
	calories := 180.0
	req.Source.Manual.Calories = &calories

	item, err := f.service.SubmitNewItem(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 180.0, item.Nutrition.Calories)
}

func TestTrackerService_SubmitNewItem_CatalogRef(t *testing.T) {
	f := newTrackerFixture(t)

	item, err := f.service.SubmitNewItem(context.Background(), domain.NewItemRequest{
		Name:     "Sourdough",
		Category: domain.Dinner,
		Amount:   70,
		Source:   domain.ItemSource{CatalogRef: &domain.CatalogRef{ItemID: "sourdough"}},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.UnitGram, item.Unit)
	assert.Equal(t, domain.NutritionFacts{Protein: 6, Carbs: 38, Fat: 0, Fiber: 0, Calories: 176}, item.Nutrition)
}

func TestTrackerService_SubmitNewItem_UnknownCatalogRef(t *testing.T) {
	f := newTrackerFixture(t)
	writes := f.store.setCalls

	_, err := f.service.SubmitNewItem(context.Background(), domain.NewItemRequest{
		Name:     "Kale",
		Category: domain.Dinner,
		Amount:   70,
		Source:   domain.ItemSource{CatalogRef: &domain.CatalogRef{ItemID: "kale"}},
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, writes, f.store.setCalls)
}

func TestTrackerService_SubmitNewItem_ValidationChangesNothing(t *testing.T) {
	f := newTrackerFixture(t)
	published := len(f.publisher.snapshots)

	req := manualRequest(domain.Lunch)
	req.Amount = 0

	_, err := f.service.SubmitNewItem(context.Background(), req)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "amount", ve.Field)

	custom, _ := f.service.GetCustomItems(domain.Lunch)
	assert.Empty(t, custom)
	assert.Equal(t, 0, f.store.setCalls)
	assert.Len(t, f.publisher.snapshots, published)
}

func TestTrackerService_SubmitNewItem_SaveToMasterList(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	plannedBefore, err := f.service.GetMealTotals(domain.Breakfast)
	require.NoError(t, err)

	req := manualRequest(domain.Breakfast)
	req.SaveToMasterList = true
	_, err = f.service.SubmitNewItem(ctx, req)
	require.NoError(t, err)

	planned, err := f.service.GetPlannedItems(domain.Breakfast)
	require.NoError(t, err)
	var master []domain.PlannedItem
	for _, item := range planned {
		if item.IsUserAdded {
			master = append(master, item)
		}
	}
	require.Len(t, master, 1)
	assert.Equal(t, "user_1704110400000", master[0].ID)
	assert.Equal(t, domain.UnitPiece, master[0].Unit)

	after, err := f.service.GetMealTotals(domain.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, plannedBefore.Planned, after.Planned, "master items never join the goal")

	t.Run("master item can seed another custom item", func(t *testing.T) {
		item, err := f.service.SubmitNewItem(ctx, domain.NewItemRequest{
			Name:     "Protein Bar",
			Category: domain.Dessert,
			Amount:   2,
			Source:   domain.ItemSource{CatalogRef: &domain.CatalogRef{ItemID: master[0].ID}},
		})
		require.NoError(t, err)
		assert.Equal(t, 490.0, item.Nutrition.Calories)
		assert.Equal(t, 40.0, item.Nutrition.Protein)
		assert.Equal(t, "custom_1704110400001", item.ID)
	})
}

func TestTrackerService_SubmitNewItem_PersistFailure(t *testing.T) {
	f := newTrackerFixture(t)
	f.store.setError = domain.ErrQuotaExceeded

	item, err := f.service.SubmitNewItem(context.Background(), manualRequest(domain.Lunch))
	assert.True(t, errors.Is(err, domain.ErrPersist))
	assert.NotEmpty(t, item.ID)

	custom, _ := f.service.GetCustomItems(domain.Lunch)
	assert.Len(t, custom, 1, "the item stays in memory for the session")
}

func TestTrackerService_ToggleConsumed(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	consumed, err := f.service.ToggleConsumed(ctx, "sourdough")
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.True(t, f.service.IsConsumed("sourdough"))

	breakfast, err := f.service.GetMealTotals(domain.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, 126.0, breakfast.Consumed.Calories)

	_, err = f.service.ToggleConsumed(ctx, "kale")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTrackerService_SetConsumedAndHidden(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	require.NoError(t, f.service.SetConsumed(ctx, "eggs", true))
	require.NoError(t, f.service.SetHidden(ctx, "eggs", true))

	dinner, err := f.service.GetMealTotals(domain.Dinner)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dinner.Consumed.Calories)

	assert.True(t, errors.Is(f.service.SetHidden(ctx, "kale", true), domain.ErrNotFound))
	assert.True(t, errors.Is(f.service.SetConsumed(ctx, "kale", true), domain.ErrNotFound))
}

func TestTrackerService_UnknownCategory(t *testing.T) {
	f := newTrackerFixture(t)

	_, err := f.service.GetPlannedItems("brunch")
	assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
	_, err = f.service.GetMealTotals("brunch")
	assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
	_, err = f.service.GetLineItems("brunch")
	assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
}

func TestTrackerService_GetLineItems(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	item, err := f.service.SubmitNewItem(ctx, manualRequest(domain.Dessert))
	require.NoError(t, err)

	lines, err := f.service.GetLineItems(domain.Dessert)
	require.NoError(t, err)
	require.Len(t, lines, 7)

	assert.Equal(t, "yogurt", lines[0].ID())
	last := lines[len(lines)-1]
	assert.Equal(t, domain.LineCustom, last.Kind)
	assert.Equal(t, item.ID, last.ID())
	assert.True(t, last.Consumed)

	facts, ok := f.service.LineFacts(last)
	require.True(t, ok)
	assert.Equal(t, 245.0, facts.Calories)
}

func TestTrackerService_ResetAll(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	req := manualRequest(domain.Lunch)
	req.SaveToMasterList = true
	_, err := f.service.SubmitNewItem(ctx, req)
	require.NoError(t, err)
	_, err = f.service.ToggleConsumed(ctx, "sourdough")
	require.NoError(t, err)

	require.NoError(t, f.service.ResetAll(ctx))

	assert.False(t, f.service.IsConsumed("sourdough"))
	custom, _ := f.service.GetCustomItems(domain.Lunch)
	assert.Empty(t, custom)
	assert.Equal(t, 0.0, f.service.GetDailyTotals().Consumed.Calories)

	_, stateKept := f.store.data[DefaultDailyStateKey]
	_, masterKept := f.store.data[DefaultMasterItemsKey]
	assert.False(t, stateKept)
	assert.True(t, masterKept)
}

func TestTrackerService_SearchCatalog(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	req := manualRequest(domain.Lunch)
	req.Name = "Buttermilk Pancakes"
	req.SaveToMasterList = true
	_, err := f.service.SubmitNewItem(ctx, req)
	require.NoError(t, err)

	got := f.service.SearchCatalog("butter", 0)
	require.Len(t, got, 4)
	assert.Equal(t, "peanutButter", got[0].ItemID)
	assert.Equal(t, "Buttermilk Pancakes", got[3].Name)
	assert.True(t, got[3].IsUserAdded)

	assert.Len(t, f.service.SearchCatalog("butter", 2), 2)
	assert.Empty(t, f.service.SearchCatalog("", 5))
}

func TestTrackerService_RolloverOnLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMockKeyValueStore()
	store.data[DefaultDailyStateKey] = `{"state":{"consumed":{"sourdough":true},"customItems":[]},"date":"Sun Dec 31 2023"}`

	service := NewTrackerService(
		DefaultNutritionTable(nil),
		NewItemCatalog(store, BuiltInPlannedItems(), ItemCatalogConfig{}, nil),
		NewDailyStateStore(store, DailyStateStoreConfig{Location: time.UTC, Now: fixedClock(jan1)}, nil),
		nil,
		TrackerServiceConfig{},
		nil,
	)
	require.NoError(t, service.Load(ctx))

	assert.False(t, service.IsConsumed("sourdough"))
	assert.Contains(t, store.data[DefaultDailyStateKey], `"date":"Mon Jan 01 2024"`)
}

func TestTrackerService_RolloverOnNextCall(t *testing.T) {
	ctx := context.Background()
	clock := &movableClock{now: jan1}
	store := NewMockKeyValueStore()
	publisher := &recordingPublisher{}

	service := NewTrackerService(
		DefaultNutritionTable(nil),
		NewItemCatalog(store, BuiltInPlannedItems(), ItemCatalogConfig{Now: clock.Now}, nil),
		NewDailyStateStore(store, DailyStateStoreConfig{Location: time.UTC, Now: clock.Now}, nil),
		publisher,
		TrackerServiceConfig{Now: clock.Now},
		nil,
	)
	require.NoError(t, service.Load(ctx))

	_, err := service.ToggleConsumed(ctx, "sourdough")
	require.NoError(t, err)
	custom, err := service.SubmitNewItem(ctx, manualRequest(domain.Lunch))
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	published := len(publisher.snapshots)

	t.Run("queries see the new day", func(t *testing.T) {
		assert.Equal(t, "Wed Jan 03 2024", service.Today())
		assert.False(t, service.IsConsumed("sourdough"))
		assert.Equal(t, 0.0, service.GetDailyTotals().Consumed.Calories)
		items, err := service.GetCustomItems(domain.Lunch)
		require.NoError(t, err)
		assert.Empty(t, items)

		assert.Equal(t, published+1, len(publisher.snapshots), "rollover publishes once")
		assert.Equal(t, "Wed Jan 03 2024", publisher.last().Date)
	})

	t.Run("yesterday's custom items are gone", func(t *testing.T) {
		_, err := service.ToggleConsumed(ctx, custom.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("mutations persist under the new date", func(t *testing.T) {
		require.NoError(t, service.SetConsumed(ctx, "butter", true))

		record := storedRecord(t, store)
		assert.Equal(t, "Wed Jan 03 2024", record.Date)
		assert.Equal(t, map[string]bool{"butter": true}, record.State.Consumed)
		assert.Empty(t, record.State.CustomItems)
	})
}

func TestTrackerService_DayView(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	require.NoError(t, f.service.SetConsumed(ctx, "sourdough", true))

	view := f.service.DayView()
	assert.Equal(t, "Mon Jan 01 2024", view.Date)
	require.Len(t, view.Meals, len(domain.MealCategories))
	assert.Equal(t, domain.Breakfast, view.Meals[0].Category)
	assert.Equal(t, 779.0, view.Meals[0].Totals.Planned.Calories)
	assert.Equal(t, f.service.GetDailyTotals(), view.Daily)

	meal, err := f.service.MealView(domain.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, view.Meals[0], meal)

	_, err = f.service.MealView(domain.MealCategory("brunch"))
	assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
}
