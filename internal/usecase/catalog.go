package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/macrolens/diettracker/internal/domain"
)

// DefaultMasterItemsKey is the storage key of the master list
const DefaultMasterItemsKey = "dietTrackerUserItems"

// ItemCatalogConfig holds configuration for the item catalog
type ItemCatalogConfig struct {
	MasterItemsKey string
	Now            func() time.Time
}

// ItemCatalog owns the built-in plan and the persisted master list of user items
type ItemCatalog struct {
	store    domain.KeyValueStore
	builtIns []domain.PlannedItem
	master   []domain.PlannedItem
	key      string
	now      func() time.Time
	logger   *zap.Logger
}

// NewItemCatalog creates a catalog over builtIns. Call Load to read the master list.
func NewItemCatalog(
	store domain.KeyValueStore,
	builtIns []domain.PlannedItem,
	config ItemCatalogConfig,
	logger *zap.Logger,
) *ItemCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}

	key := config.MasterItemsKey
	if key == "" {
		key = DefaultMasterItemsKey
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	items := make([]domain.PlannedItem, len(builtIns))
	copy(items, builtIns)

	return &ItemCatalog{
		store:    store,
		builtIns: items,
		key:      key,
		now:      now,
		logger:   logger,
	}
}

// Load reads the master list. An absent or corrupted record leaves the list empty;
// only a failing read is returned.
func (c *ItemCatalog) Load(ctx context.Context) error {
	c.master = nil

	raw, err := c.store.Get(ctx, c.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		c.logger.Error("failed to read master list", zap.String("key", c.key), zap.Error(err))
		return fmt.Errorf("read master list: %w", err)
	}

	var items []domain.PlannedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("ignoring master list",
			zap.String("key", c.key),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrParse, err)),
		)
		return nil
	}

	for _, item := range items {
		if !domain.IsUserItem(item.ID) || !item.Category.Valid() {
			c.logger.Warn("skipping invalid master item", zap.String("item_id", item.ID))
			continue
		}
		item.IsUserAdded = true
		c.master = append(c.master, item)
	}

	c.logger.Info("master list loaded", zap.Int("items", len(c.master)))
	return nil
}

// ResolvedPlannedItems returns built-in items followed by master-list items
func (c *ItemCatalog) ResolvedPlannedItems() []domain.PlannedItem {
	out := make([]domain.PlannedItem, 0, len(c.builtIns)+len(c.master))
	out = append(out, c.builtIns...)
	out = append(out, c.master...)
	return out
}

// MasterItems returns the user-added items in insertion order
func (c *ItemCatalog) MasterItems() []domain.PlannedItem {
	out := make([]domain.PlannedItem, len(c.master))
	copy(out, c.master)
	return out
}

// PlannedItems returns the items of category ordered by amount, largest first.
// Ties keep their resolved order.
func (c *ItemCatalog) PlannedItems(category domain.MealCategory) []domain.PlannedItem {
	var out []domain.PlannedItem
	for _, item := range c.ResolvedPlannedItems() {
		if item.Category == category {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}

// FindItem returns the planned item with id
func (c *ItemCatalog) FindItem(id string) (domain.PlannedItem, bool) {
	for _, item := range c.builtIns {
		if item.ID == id {
			return item, true
		}
	}
	for _, item := range c.master {
		if item.ID == id {
			return item, true
		}
	}
	return domain.PlannedItem{}, false
}

// AddMasterItem appends a user item with absolute nutrition and writes the whole list.
// On a failed write the item stays in memory and an ErrPersist error is returned with it.
func (c *ItemCatalog) AddMasterItem(
	ctx context.Context,
	req domain.NewItemRequest,
	nutrition domain.NutritionFacts,
) (domain.PlannedItem, error) {
	now := c.now().UTC()
	id := uniqueID(domain.UserItemPrefix, now.UnixMilli(), func(id string) bool {
		_, exists := c.FindItem(id)
		return exists
	})

	facts := nutrition
	item := domain.PlannedItem{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Amount:      req.Amount,
		Unit:        req.Unit,
		Nutrition:   &facts,
		IsUserAdded: true,
		DateAdded:   &now,
		LastUsed:    &now,
	}
	c.master = append(c.master, item)

	if err := c.persist(ctx); err != nil {
		return item, err
	}
	return item, nil
}

// Search returns up to limit master items whose name contains query
func (c *ItemCatalog) Search(query string, limit int) []domain.CatalogSuggestion {
	q := normalizeSearchText(query)
	if q == "" || limit <= 0 {
		return nil
	}

	var out []domain.CatalogSuggestion
	for _, item := range c.master {
		if len(out) >= limit {
			break
		}
		if !strings.Contains(normalizeSearchText(item.Name), q) {
			continue
		}
		s := domain.CatalogSuggestion{
			ItemID:      item.ID,
			Name:        item.Name,
			Amount:      item.Amount,
			Unit:        item.Unit,
			IsUserAdded: true,
		}
		if item.Nutrition != nil {
			s.Facts = *item.Nutrition
		}
		out = append(out, s)
	}
	return out
}

func (c *ItemCatalog) persist(ctx context.Context) error {
	data, err := json.Marshal(c.master)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		c.logger.Error("failed to save master list", zap.String("key", c.key), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	return nil
}

// uniqueID returns prefix+millis, bumping millis until exists reports false
func uniqueID(prefix string, millis int64, exists func(string) bool) string {
	for {
		id := prefix + strconv.FormatInt(millis, 10)
		if !exists(id) {
			return id
		}
		millis++
	}
}
