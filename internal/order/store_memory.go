package order

import (
	"context"
	"sync"
	"sync/atomic"
)

type MemStore struct {
	mu      sync.RWMutex
	orders  map[int64]Order
	items   map[int64][]Item
	byKey   map[string]int64
	orderID atomic.Int64
	itemID  atomic.Int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		orders: map[int64]Order{},
		items:  map[int64][]Item{},
		byKey:  map[string]int64{},
	}
}

func NewStore() Store {
	return NewMemStore()
}

type memTx struct {
	orders []Order
	items  []Item
}

type memTxKey struct{}

func memTxFromContext(ctx context.Context) *memTx {
	tx, _ := ctx.Value(memTxKey{}).(*memTx)
	return tx
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

// WithTx stages every write made through ctx and applies them under a single
// lock once fn succeeds. Nested calls join the outer transaction.
func (s *MemStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if memTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx := &memTx{}
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *MemStore) CreateOrder(ctx context.Context, o *Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.ID = s.orderID.Add(1)

	stored := *o
	stored.Items = nil

	if tx := memTxFromContext(ctx); tx != nil {
		tx.orders = append(tx.orders, stored)
		return nil
	}
	return s.commit(&memTx{orders: []Order{stored}})
}

func (s *MemStore) CreateItem(ctx context.Context, it *Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	it.ID = s.itemID.Add(1)

	if tx := memTxFromContext(ctx); tx != nil {
		tx.items = append(tx.items, *it)
		return nil
	}
	return s.commit(&memTx{items: []Item{*it}})
}

func (s *MemStore) Get(ctx context.Context, id int64) (Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(id)
}

func (s *MemStore) FindByIdempotencyKey(ctx context.Context, key string) (Order, bool, error) {
	if key == "" {
		return Order{}, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return Order{}, false, nil
	}
	return s.load(id)
}

func (s *MemStore) load(id int64) (Order, bool, error) {
	o, ok := s.orders[id]
	if !ok {
		return Order{}, false, nil
	}
	o.Items = append([]Item(nil), s.items[id]...)
	return o, true, nil
}

func (s *MemStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(tx.orders))
	for _, o := range tx.orders {
		if o.IdempotencyKey == "" {
			continue
		}
		if _, dup := s.byKey[o.IdempotencyKey]; dup {
			return ErrDuplicateKey
		}
		if _, dup := seen[o.IdempotencyKey]; dup {
			return ErrDuplicateKey
		}
		seen[o.IdempotencyKey] = struct{}{}
	}

	for _, o := range tx.orders {
		s.orders[o.ID] = o
		if o.IdempotencyKey != "" {
			s.byKey[o.IdempotencyKey] = o.ID
		}
	}
	for _, it := range tx.items {
		s.items[it.OrderID] = append(s.items[it.OrderID], it)
	}
	return nil
}
