package domain

import "context"

// KeyValueStore is the persistence port. Values are opaque strings (serialized JSON records).
// Get returns ErrKeyNotFound when key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TotalsPublisher receives freshly computed totals for display.
type TotalsPublisher interface {
	PublishTotals(ctx context.Context, snapshot Snapshot)
}

// PlannedItemSource yields the resolved planned items of the day.
type PlannedItemSource interface {
	ResolvedPlannedItems() []PlannedItem
}
