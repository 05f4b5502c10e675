package order

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"OrderDesk/internal/clock"
)

// Service places orders: one transaction per submission covering the order
// row and every resolved item.
type Service struct {
	Store    Store
	Resolver *Resolver
	Clock    clock.Clock
	Log      *zap.Logger
	Metrics  *Metrics
}

func NewService(store Store, products ProductLookup, clk clock.Clock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Store:    store,
		Resolver: &Resolver{Products: products, Items: store, Log: log},
		Clock:    clk,
		Log:      log,
	}
}

type PlaceInput struct {
	Items          []ItemRequest
	IdempotencyKey string
}

type PlaceResult struct {
	Order   Order
	Created bool
}

// Place persists a new order dated today holding exactly the resolvable
// items of in. With an idempotency key that was used before, the earlier
// order is returned and nothing is written.
func (s *Service) Place(ctx context.Context, in PlaceInput) (PlaceResult, error) {
	if existing, found, err := s.Store.FindByIdempotencyKey(ctx, in.IdempotencyKey); err != nil {
		return PlaceResult{}, err
	} else if found {
		s.Metrics.observeReplayed()
		return PlaceResult{Order: existing}, nil
	}

	o := Order{
		DateCreated:    DateOf(s.Clock.Now()),
		IdempotencyKey: in.IdempotencyKey,
	}

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.Store.CreateOrder(ctx, &o); err != nil {
			return err
		}
		items, err := s.Resolver.Resolve(ctx, o.ID, in.Items)
		if err != nil {
			return err
		}
		o.Items = items
		return nil
	})
	if errors.Is(err, ErrDuplicateKey) {
		// a concurrent submission with the same key committed first
		existing, found, ferr := s.Store.FindByIdempotencyKey(ctx, in.IdempotencyKey)
		if ferr != nil {
			return PlaceResult{}, ferr
		}
		if found {
			s.Metrics.observeReplayed()
			return PlaceResult{Order: existing}, nil
		}
		return PlaceResult{}, err
	}
	if err != nil {
		return PlaceResult{}, fmt.Errorf("place order: %w", err)
	}

	s.Metrics.observePlaced(len(in.Items), len(o.Items))
	s.Log.Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.Int("items_requested", len(in.Items)),
		zap.Int("items_persisted", len(o.Items)),
		zap.String("total", o.TotalPrice().String()),
	)

	return PlaceResult{Order: o, Created: true}, nil
}

// Get returns a persisted order with its items, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	o, found, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	if !found {
		return Order{}, ErrNotFound
	}
	return o, nil
}
