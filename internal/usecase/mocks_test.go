package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/macrolens/diettracker/internal/domain"
)

// MockKeyValueStore is a mock implementation of domain.KeyValueStore
type MockKeyValueStore struct {
	data        map[string]string
	getError    error
	setError    error
	deleteError error
	setCalls    int
	deleteCalls int
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string]string)}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	if m.getError != nil {
		return "", m.getError
	}
	value, ok := m.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value string) error {
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	m.deleteCalls++
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.data, key)
	return nil
}

func (m *MockKeyValueStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// recordingPublisher keeps every snapshot it receives
type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []domain.Snapshot
}

func (p *recordingPublisher) PublishTotals(ctx context.Context, snapshot domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
}

func (p *recordingPublisher) last() domain.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshots[len(p.snapshots)-1]
}

// staticPlan is a fixed domain.PlannedItemSource
type staticPlan []domain.PlannedItem

func (p staticPlan) ResolvedPlannedItems() []domain.PlannedItem {
	return p
}

// jan1 is noon UTC on Mon Jan 01 2024
var jan1 = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// movableClock is a test clock that only moves when told to
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}
