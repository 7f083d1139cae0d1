package domain

import "context"

// UserRepository is the durable account store.
// It is read once at startup and written back once at shutdown.
type UserRepository interface {
	// LoadAll retrieves every persisted user record
	LoadAll(ctx context.Context) ([]UserRecord, error)

	// SaveAll replaces the persisted records with the given set
	SaveAll(ctx context.Context, records []UserRecord) error
}

// PriceFeed fetches the latest asset listings from an external source
type PriceFeed interface {
	FetchAssets(ctx context.Context) ([]Asset, error)
}
