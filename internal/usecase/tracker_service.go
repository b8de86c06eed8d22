package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/macrolens/diettracker/internal/domain"
)

// DefaultSearchLimit caps catalog suggestions when the caller passes no limit
const DefaultSearchLimit = 5

// TrackerServiceConfig holds configuration for the tracker service
type TrackerServiceConfig struct {
	Now func() time.Time
}

// TrackerService is the command and query surface used by presentation adapters.
// Calls are serialized so concurrent adapters see a single writer.
type TrackerService struct {
	mu         sync.Mutex
	table      *NutritionTable
	catalog    *ItemCatalog
	days       *DailyStateStore
	aggregator *NutritionAggregator
	publisher  domain.TotalsPublisher
	now        func() time.Time
	logger     *zap.Logger
}

// NewTrackerService wires the core components. publisher may be nil.
func NewTrackerService(
	table *NutritionTable,
	catalog *ItemCatalog,
	days *DailyStateStore,
	publisher domain.TotalsPublisher,
	config TrackerServiceConfig,
	logger *zap.Logger,
) *TrackerService {
	if logger == nil {
		logger = zap.NewNop()
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &TrackerService{
		table:      table,
		catalog:    catalog,
		days:       days,
		aggregator: NewNutritionAggregator(table),
		publisher:  publisher,
		now:        now,
		logger:     logger,
	}
}

// Load reads the master list and today's state, then publishes totals.
// Neither a failed read nor a failed rollover write prevents the tracker from running.
func (s *TrackerService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalogErr := s.catalog.Load(ctx)
	_, stateErr := s.days.Load(ctx)

	s.publishLocked(ctx)
	return errors.Join(catalogErr, stateErr)
}

// Today returns the date of the state being tracked
func (s *TrackerService) Today() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())
	return s.days.state.Date
}

// GetPlannedItems returns the planned items of category, largest amount first
func (s *TrackerService) GetPlannedItems(category domain.MealCategory) ([]domain.PlannedItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.PlannedItems(category), nil
}

// GetCustomItems returns today's custom items of category in insertion order
func (s *TrackerService) GetCustomItems(category domain.MealCategory) ([]domain.CustomItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())

	var out []domain.CustomItem
	for _, item := range s.days.state.CustomItems {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out, nil
}

// GetLineItems returns the rows of category with their flags
func (s *TrackerService) GetLineItems(category domain.MealCategory) ([]domain.LineItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())
	return s.aggregator.LineItems(category, s.catalog.PlannedItems(category), s.days.state), nil
}

// LineFacts returns the nutrition shown on a row
func (s *TrackerService) LineFacts(line domain.LineItem) (domain.NutritionFacts, bool) {
	return s.aggregator.LineFacts(line)
}

// IsConsumed reports the consumed flag of id
func (s *TrackerService) IsConsumed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())
	return s.days.IsConsumed(id)
}

// ToggleConsumed flips the consumed flag of a known item and returns the new value
func (s *TrackerService) ToggleConsumed(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(ctx)

	if !s.knownLocked(id) {
		return false, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	consumed, err := s.days.ToggleConsumed(ctx, id)
	s.publishLocked(ctx)
	return consumed, err
}

// SetConsumed sets the consumed flag of a known item
func (s *TrackerService) SetConsumed(ctx context.Context, id string, consumed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(ctx)

	if !s.knownLocked(id) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	err := s.days.SetConsumed(ctx, id, consumed)
	s.publishLocked(ctx)
	return err
}

// SetHidden hides or shows a known item for the rest of the day
func (s *TrackerService) SetHidden(ctx context.Context, id string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(ctx)

	if !s.knownLocked(id) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	err := s.days.SetHidden(ctx, id, hidden)
	s.publishLocked(ctx)
	return err
}

// SubmitNewItem validates req and adds a consumed custom item for today.
// With SaveToMasterList the item is also appended to the master list.
// Validation failures change nothing. Persist failures return the created item
// together with an ErrPersist error.
func (s *TrackerService) SubmitNewItem(ctx context.Context, req domain.NewItemRequest) (domain.CustomItem, error) {
	if err := req.Validate(); err != nil {
		return domain.CustomItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(ctx)

	facts, unit, err := s.resolveSourceLocked(req)
	if err != nil {
		return domain.CustomItem{}, err
	}
	req.Unit = unit

	id := uniqueID(domain.CustomItemPrefix, s.now().UnixMilli(), func(id string) bool {
		_, exists := s.days.state.FindCustomItem(id)
		return exists
	})

	item := domain.CustomItem{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Category:  req.Category,
		Amount:    req.Amount,
		Unit:      unit,
		Nutrition: facts,
		IsCustom:  true,
	}

	stateErr := s.days.AddCustomItem(ctx, item)

	var masterErr error
	if req.SaveToMasterList {
		_, masterErr = s.catalog.AddMasterItem(ctx, req, facts)
	}

	s.logger.Info("custom item added",
		zap.String("item_id", item.ID),
		zap.String("category", string(item.Category)),
		zap.Bool("saved_to_master_list", req.SaveToMasterList),
	)

	s.publishLocked(ctx)
	return item, errors.Join(stateErr, masterErr)
}

// resolveSourceLocked returns the absolute nutrition and unit of a new item
func (s *TrackerService) resolveSourceLocked(req domain.NewItemRequest) (domain.NutritionFacts, domain.UnitCode, error) {
	if req.Source.Manual != nil {
		return req.Source.Manual.Facts(), domain.UnitCode(strings.TrimSpace(string(req.Unit))), nil
	}

	ref := req.Source.CatalogRef.ItemID
	if domain.IsUserItem(ref) {
		item, ok := s.catalog.FindItem(ref)
		if !ok || item.Nutrition == nil || item.Amount <= 0 {
			return domain.NutritionFacts{}, "", domain.NewValidationError("source.catalogRef.itemId", "please select an item from the list")
		}
		facts := Scale(domain.NutritionTableEntry{
			ItemID:      item.ID,
			ServingSize: item.Amount,
			ServingUnit: item.Unit,
			Facts:       *item.Nutrition,
		}, req.Amount)
		facts.Calories = domain.RoundHalfUp(item.Nutrition.Calories * req.Amount / item.Amount)
		return facts, item.Unit, nil
	}

	facts, unit, err := s.table.ScaleForNewItem(ref, req.Amount)
	if err != nil {
		s.logger.Warn("no nutrition info found", zap.String("item_id", ref))
		return domain.NutritionFacts{}, "", domain.NewValidationError("source.catalogRef.itemId", "please select an item from the list")
	}
	return facts, unit, nil
}

// GetMealTotals returns the goal, eaten and remaining totals of category
func (s *TrackerService) GetMealTotals(category domain.MealCategory) (domain.Totals, error) {
	if !category.Valid() {
		return domain.Totals{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())
	return s.aggregator.MealTotals(category, s.catalog, s.days.state), nil
}

// GetDailyTotals returns the goal, eaten and remaining totals of the whole day
func (s *TrackerService) GetDailyTotals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())
	return s.aggregator.DailyTotals(s.catalog, s.days.state)
}

// Snapshot returns every meal's totals and the daily totals
func (s *TrackerService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())
	return s.aggregator.Snapshot(s.catalog, s.days.state)
}

// MealView is one meal's rows and totals read under a single lock
type MealView struct {
	Category domain.MealCategory
	Lines    []domain.LineItem
	Totals   domain.Totals
}

// DayView is every meal plus the daily totals read under a single lock
type DayView struct {
	Date  string
	Meals []MealView
	Daily domain.Totals
}

// DayView returns a consistent view of the whole day
func (s *TrackerService) DayView() DayView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())

	view := DayView{
		Date:  s.days.state.Date,
		Meals: make([]MealView, 0, len(domain.MealCategories)),
		Daily: s.aggregator.DailyTotals(s.catalog, s.days.state),
	}
	for _, category := range domain.MealCategories {
		view.Meals = append(view.Meals, s.mealViewLocked(category))
	}
	return view
}

// MealView returns a consistent view of one meal
func (s *TrackerService) MealView(category domain.MealCategory) (MealView, error) {
	if !category.Valid() {
		return MealView{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(context.Background())
	return s.mealViewLocked(category), nil
}

func (s *TrackerService) mealViewLocked(category domain.MealCategory) MealView {
	return MealView{
		Category: category,
		Lines:    s.aggregator.LineItems(category, s.catalog.PlannedItems(category), s.days.state),
		Totals:   s.aggregator.MealTotals(category, s.catalog, s.days.state),
	}
}

// ResetAll clears today's flags and custom items. The master list is kept.
func (s *TrackerService) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.days.Reset(ctx)
	s.logger.Info("daily state reset")
	s.publishLocked(ctx)
	return err
}

// SearchCatalog suggests known items for query: table entries first, then master-list items.
func (s *TrackerService) SearchCatalog(query string, limit int) []domain.CatalogSuggestion {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.table.Search(query, limit)
	if len(out) < limit {
		out = append(out, s.catalog.Search(query, limit-len(out))...)
	}
	return out
}

// rolloverLocked reloads the daily state once the calendar day has moved past the tracked date.
// A failed rollover write is logged; the next mutation writes the record again.
func (s *TrackerService) rolloverLocked(ctx context.Context) {
	if s.days.Today() == s.days.state.Date {
		return
	}
	if _, err := s.days.Load(ctx); err != nil {
		s.logger.Error("failed to persist rolled over daily state", zap.Error(err))
	}
	s.publishLocked(ctx)
}

func (s *TrackerService) knownLocked(id string) bool {
	if _, ok := s.catalog.FindItem(id); ok {
		return true
	}
	_, ok := s.days.state.FindCustomItem(id)
	return ok
}

func (s *TrackerService) publishLocked(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishTotals(ctx, s.aggregator.Snapshot(s.catalog, s.days.state))
}
