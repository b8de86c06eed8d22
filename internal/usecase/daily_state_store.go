package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/macrolens/diettracker/internal/domain"
)

// DefaultDailyStateKey is the storage key of the daily record
const DefaultDailyStateKey = "dietTrackerState"

// DailyStateStoreConfig holds configuration for the daily state store
type DailyStateStoreConfig struct {
	Key      string
	Location *time.Location
	Now      func() time.Time
}

// DailyStateStore owns the consumed flags and custom items of the current day.
// Every mutation rewrites the whole record. Rollover is detected only by Load.
type DailyStateStore struct {
	store    domain.KeyValueStore
	key      string
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
	state    domain.DailyState
}

// NewDailyStateStore creates a store holding an empty state for today
func NewDailyStateStore(store domain.KeyValueStore, config DailyStateStoreConfig, logger *zap.Logger) *DailyStateStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	key := config.Key
	if key == "" {
		key = DefaultDailyStateKey
	}

	location := config.Location
	if location == nil {
		location = time.Local
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	s := &DailyStateStore{
		store:    store,
		key:      key,
		location: location,
		now:      now,
		logger:   logger,
	}
	s.state = domain.NewDailyState(s.Today())
	return s
}

// Today returns the current calendar day in the configured timezone, e.g. "Mon Jan 01 2024"
func (s *DailyStateStore) Today() string {
	return s.now().In(s.location).Format(domain.DateLayout)
}

// Load reads the persisted record.
// Absent, unreadable or corrupted records yield an empty state for today without a write.
// A record from another day is discarded and the empty state is persisted before returning.
func (s *DailyStateStore) Load(ctx context.Context) (domain.DailyState, error) {
	today := s.Today()

	record, ok := s.read(ctx)
	if !ok {
		s.state = domain.NewDailyState(today)
		return s.state.Clone(), nil
	}

	if record.Date != today {
		s.logger.Info("new day detected, resetting daily state",
			zap.String("stored_date", record.Date),
			zap.String("today", today),
		)
		s.state = domain.NewDailyState(today)
		return s.state.Clone(), s.persist(ctx)
	}

	state := domain.NewDailyState(today)
	for id, v := range record.State.Checked {
		state.ConsumedFlags[id] = v
	}
	for id, v := range record.State.Consumed {
		state.ConsumedFlags[id] = v
	}
	for id, v := range record.State.Hidden {
		state.HiddenFlags[id] = v
	}
	for _, item := range record.State.CustomItems {
		item.IsCustom = true
		state.CustomItems = append(state.CustomItems, item)
	}
	s.state = state
	return s.state.Clone(), nil
}

func (s *DailyStateStore) read(ctx context.Context) (domain.PersistedDailyState, bool) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.PersistedDailyState{}, false
	}
	if err != nil {
		s.logger.Error("failed to read daily state", zap.String("key", s.key), zap.Error(err))
		return domain.PersistedDailyState{}, false
	}

	var record domain.PersistedDailyState
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Warn("ignoring daily state",
			zap.String("key", s.key),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrParse, err)),
		)
		return domain.PersistedDailyState{}, false
	}
	if record.Date == "" {
		s.logger.Warn("ignoring daily state",
			zap.String("key", s.key),
			zap.Error(fmt.Errorf("%w: missing date", domain.ErrParse)),
		)
		return domain.PersistedDailyState{}, false
	}
	return record, true
}

// State returns a copy of the in-memory state
func (s *DailyStateStore) State() domain.DailyState {
	return s.state.Clone()
}

// IsConsumed reports the consumed flag of id
func (s *DailyStateStore) IsConsumed(id string) bool {
	return s.state.IsConsumed(id)
}

// SetConsumed sets the consumed flag of id and persists
func (s *DailyStateStore) SetConsumed(ctx context.Context, id string, consumed bool) error {
	s.state.ConsumedFlags[id] = consumed
	return s.persist(ctx)
}

// ToggleConsumed flips the consumed flag of id, persists and returns the new value
func (s *DailyStateStore) ToggleConsumed(ctx context.Context, id string) (bool, error) {
	consumed := !s.state.IsConsumed(id)
	return consumed, s.SetConsumed(ctx, id, consumed)
}

// SetHidden sets the hidden flag of id and persists
func (s *DailyStateStore) SetHidden(ctx context.Context, id string, hidden bool) error {
	s.state.HiddenFlags[id] = hidden
	return s.persist(ctx)
}

// AddCustomItem appends item, marks it consumed and persists
func (s *DailyStateStore) AddCustomItem(ctx context.Context, item domain.CustomItem) error {
	item.IsCustom = true
	s.state.CustomItems = append(s.state.CustomItems, item)
	s.state.ConsumedFlags[item.ID] = true
	return s.persist(ctx)
}

// Persist writes the whole record
func (s *DailyStateStore) Persist(ctx context.Context) error {
	return s.persist(ctx)
}

// Reset deletes the persisted record and starts an empty state for today
func (s *DailyStateStore) Reset(ctx context.Context) error {
	s.state = domain.NewDailyState(s.Today())
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to clear daily state", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	return nil
}

// persist stores the state under its own date, which differs from Today only until the next Load.
func (s *DailyStateStore) persist(ctx context.Context) error {
	record := domain.PersistedDailyState{
		State: domain.PersistedFlags{
			Consumed:    s.state.ConsumedFlags,
			Hidden:      s.state.HiddenFlags,
			CustomItems: s.state.CustomItems,
		},
		Date: s.state.Date,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Error("failed to save daily state", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	return nil
}
