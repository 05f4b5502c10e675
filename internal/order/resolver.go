package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"OrderDesk/internal/catalog"
)

// ProductLookup finds a product by id. A missing product is (zero, false, nil).
type ProductLookup interface {
	Get(ctx context.Context, id int64) (catalog.Product, bool, error)
}

// Resolver turns item requests into persisted line items of one order.
type Resolver struct {
	Products ProductLookup
	Items    ItemWriter
	Log      *zap.Logger
}

// Resolve persists one item per request whose product exists, in request
// order. Requests for unknown products are skipped. The returned slice is
// never longer than reqs.
func (r *Resolver) Resolve(ctx context.Context, orderID int64, reqs []ItemRequest) ([]Item, error) {
	out := make([]Item, 0, len(reqs))

	for _, req := range reqs {
		p, found, err := r.Products.Get(ctx, req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("lookup product %d: %w", req.ProductID, err)
		}
		if !found {
			if r.Log != nil {
				r.Log.Debug("dropping item for unknown product", zap.Int64("product_id", req.ProductID))
			}
			continue
		}

		it := Item{
			OrderID:   orderID,
			ProductID: p.ID,
			Quantity:  req.Quantity,
			UnitPrice: p.UnitPrice,
		}
		if err := r.Items.CreateItem(ctx, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}

	return out, nil
}
