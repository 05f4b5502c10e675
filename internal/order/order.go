package order

import (
	"github.com/shopspring/decimal"
)

// ItemRequest is one requested line: a product reference and a quantity.
type ItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Item is a persisted line item. ProductID references a catalog product;
// UnitPrice is that product's price as seen when the item was resolved.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
}

func (it Item) TotalPrice() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}

type Order struct {
	ID             int64
	DateCreated    Date
	Items          []Item
	IdempotencyKey string
}

func (o Order) TotalPrice() decimal.Decimal {
	return TotalPrice(o.Items)
}

// TotalPrice sums unit price × quantity over items. It is never cached.
func TotalPrice(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalPrice())
	}
	return sum
}
