package catalog

import "github.com/shopspring/decimal"

type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
}

// DefaultProducts is the fixed catalog every fresh store starts with.
func DefaultProducts() []Product {
	return []Product{
		{ID: 1, Name: "Screw A", UnitPrice: decimal.RequireFromString("0.99")},
		{ID: 2, Name: "Screw B", UnitPrice: decimal.RequireFromString("0.89")},
	}
}
