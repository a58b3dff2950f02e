package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	return &Order{
		OrderUID:      "uid-1",
		CustomerName:  "Ivan",
		Number:        "+7 900 000-00-00",
		Product:       "Jersey",
		Quantity:      2,
		CostPrice:     100,
		SalePrice:     150,
		OrderStatus:   StatusPending,
		PaymentStatus: PaymentUnpaid,
		Date:          time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewOrder(t *testing.T) {
	o := NewOrder()

	assert.NotEmpty(t, o.OrderUID)
	assert.Equal(t, 1, o.Quantity)
	assert.Equal(t, StatusPending, o.OrderStatus)
	assert.Equal(t, PaymentUnpaid, o.PaymentStatus)
	assert.False(t, o.Date.IsZero())
}

func TestNormalize(t *testing.T) {
	o := &Order{CostPrice: 100, SalePrice: 175.5}
	o.Normalize()

	assert.NotEmpty(t, o.OrderUID)
	assert.False(t, o.Date.IsZero())
	assert.InDelta(t, 75.5, o.Profit, 0.0001)

	// уже заполненные идентификатор и дата не перетираются
	o2 := validOrder()
	o2.Normalize()
	assert.Equal(t, "uid-1", o2.OrderUID)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), o2.Date)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Order)
		wantErr string
	}{
		{
			name:   "valid order",
			mutate: func(o *Order) {},
		},
		{
			name:    "missing customer name",
			mutate:  func(o *Order) { o.CustomerName = "" },
			wantErr: "customer name is required",
		},
		{
			name:    "missing number",
			mutate:  func(o *Order) { o.Number = "" },
			wantErr: "contact number is required",
		},
		{
			name:    "missing product",
			mutate:  func(o *Order) { o.Product = "" },
			wantErr: "order name is required",
		},
		{
			name:    "zero quantity",
			mutate:  func(o *Order) { o.Quantity = 0 },
			wantErr: "quantity must be at least 1",
		},
		{
			name:    "negative cost price",
			mutate:  func(o *Order) { o.CostPrice = -1 },
			wantErr: "cost price cannot be negative",
		},
		{
			name:    "negative sale price",
			mutate:  func(o *Order) { o.SalePrice = -0.5 },
			wantErr: "sale price cannot be negative",
		},
		{
			name:    "unknown order status",
			mutate:  func(o *Order) { o.OrderStatus = "Lost" },
			wantErr: `unknown order status "Lost"`,
		},
		{
			name:    "unknown payment status",
			mutate:  func(o *Order) { o.PaymentStatus = "Refunded" },
			wantErr: `unknown payment status "Refunded"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := validOrder()
			tc.mutate(o)

			err := o.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestMonth(t *testing.T) {
	o := validOrder()
	assert.Equal(t, "2024-03", o.Month())
}

func TestScanValue(t *testing.T) {
	o := validOrder()

	value, err := o.Value()
	require.NoError(t, err)

	restored := &Order{}
	require.NoError(t, restored.Scan(value))
	assert.Equal(t, *o, *restored)

	// nil из базы означает пустой jsonb и не является ошибкой
	assert.NoError(t, restored.Scan(nil))

	assert.ErrorIs(t, restored.Scan(42), ErrConvertJSONB)
}
