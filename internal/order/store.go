package order

import "context"

// ItemWriter persists resolved line items and assigns their ids.
type ItemWriter interface {
	CreateItem(ctx context.Context, it *Item) error
}

// Store persists orders and their items. Writes made inside WithTx become
// visible together or not at all.
type Store interface {
	ItemWriter

	Ping(ctx context.Context) error
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateOrder assigns o.ID. A clash on o.IdempotencyKey reports
	// ErrDuplicateKey, possibly only when the surrounding tx commits.
	CreateOrder(ctx context.Context, o *Order) error
	Get(ctx context.Context, id int64) (Order, bool, error)
	FindByIdempotencyKey(ctx context.Context, key string) (Order, bool, error)
}
