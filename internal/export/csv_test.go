package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/domain"
)

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			OrderUID:       "uid-1",
			CustomerName:   "Ivan",
			Number:         "+7 900 000-00-00",
			Product:        "Jersey; Scarf",
			Quantity:       2,
			Nameset:        "MESSI 10",
			CostPrice:      100.5,
			SalePrice:      150,
			Profit:         49.5,
			OrderStatus:    domain.StatusShipped,
			PaymentStatus:  domain.PaymentPaid,
			TrackingDetail: "TRACK-42",
			Date:           time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			OrderUID:      "uid-2",
			CustomerName:  "Petr",
			Number:        "+7 911 111-11-11",
			Product:       "Cap",
			Quantity:      1,
			CostPrice:     10,
			SalePrice:     25,
			Profit:        15,
			OrderStatus:   domain.StatusPending,
			PaymentStatus: domain.PaymentUnpaid,
			Date:          time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	orders := sampleOrders()

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, orders))

	decoded, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, orders, decoded)
}

func TestDecodeCSVHeaderMismatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty file", input: ""},
		{name: "wrong columns", input: "Name,Phone\nIvan,123\n"},
		{name: "reordered columns", input: "Customer Name,Order UID,Number,Order,Quantity,Nameset,Cost Price,Sale Price,Profit,Order Status,Payment Status,Tracking Detail,Date\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, ErrHeaderMismatch)
		})
	}
}

func TestDecodeCSVLenientNumbers(t *testing.T) {
	// мусор в числовых ячейках не роняет импорт, а превращается
	// в значения по умолчанию
	input := strings.Join(Header, ",") + "\n" +
		"uid-1,Ivan,123,Jersey,garbage,,what,2.5,,Pending,Unpaid,,not-a-date\n"

	orders, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, 1, orders[0].Quantity)
	assert.Zero(t, orders[0].CostPrice)
	assert.InDelta(t, 2.5, orders[0].SalePrice, 0.0001)
	assert.Zero(t, orders[0].Profit)
	assert.True(t, orders[0].Date.IsZero())
}

func TestDecodeCSVWrongWidth(t *testing.T) {
	input := strings.Join(Header, ",") + "\n" +
		"uid-1,Ivan\n"

	_, err := DecodeCSV(strings.NewReader(input))
	assert.Error(t, err)
}

func TestTemplateCSV(t *testing.T) {
	decoded, err := DecodeCSV(bytes.NewReader(TemplateCSV()))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
