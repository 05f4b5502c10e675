package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPrice(t *testing.T) {
	testCases := map[string]struct {
		items []Item
		want  string
	}{
		"no items": {
			items: nil,
			want:  "0",
		},
		"screws": {
			items: []Item{
				{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("0.99")},
				{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("0.89")},
			},
			want: "2.87",
		},
		"same product twice": {
			items: []Item{
				{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("0.99")},
				{ProductID: 1, Quantity: 7, UnitPrice: decimal.RequireFromString("0.99")},
			},
			want: "9.9",
		},
		"zero quantity": {
			items: []Item{{ProductID: 1, Quantity: 0, UnitPrice: decimal.RequireFromString("0.99")}},
			want:  "0",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := TotalPrice(tc.items)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
			assert.True(t, Order{Items: tc.items}.TotalPrice().Equal(got))
		})
	}
}

func TestItemTotalPrice(t *testing.T) {
	it := Item{Quantity: 4, UnitPrice: decimal.RequireFromString("0.89")}
	assert.Equal(t, "3.56", it.TotalPrice().String())
}

func TestDate_JSON(t *testing.T) {
	d := DateOf(time.Date(2024, time.February, 9, 23, 30, 0, 0, time.FixedZone("CET", 3600)))
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 9}, d)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-02-09"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`"09.02.2024"`), &back))
	assert.True(t, Date{}.IsZero())
}
