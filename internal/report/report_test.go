package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// фиксированная таблица, все ожидания ниже посчитаны руками
func sampleOrders() []domain.Order {
	return []domain.Order{
		{Product: "Jersey", Quantity: 2, SalePrice: 150, Profit: 50, Date: date(2024, 1, 5)},
		{Product: "Scarf", Quantity: 1, SalePrice: 40, Profit: 10, Date: date(2024, 1, 20)},
		{Product: "Jersey", Quantity: 3, SalePrice: 170, Profit: 70, Date: date(2024, 2, 2)},
		{Product: "Jersey", Quantity: 1, SalePrice: 130, Profit: -20, Date: date(2024, 2, 14)},
		{Product: "Cap", Quantity: 5, SalePrice: 25, Profit: 5, Date: date(2024, 2, 28)},
	}
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(sampleOrders())

	assert.Equal(t, 5, totals.Orders)
	assert.Equal(t, 12, totals.Quantity)
	assert.InDelta(t, 515, totals.Sales, 0.0001)
	assert.InDelta(t, 115, totals.Profit, 0.0001)
}

func TestComputeTotalsEmpty(t *testing.T) {
	assert.Equal(t, Totals{}, ComputeTotals(nil))
}

func TestMonthly(t *testing.T) {
	stats := Monthly(sampleOrders())

	require.Len(t, stats, 2)
	assert.Equal(t, MonthStat{Month: "2024-01", Profit: 60, Orders: 2, Quantity: 3}, stats[0])
	assert.Equal(t, MonthStat{Month: "2024-02", Profit: 55, Orders: 3, Quantity: 9}, stats[1])
}

func TestBuildInsights(t *testing.T) {
	insights, ok := BuildInsights(sampleOrders())
	require.True(t, ok)

	assert.Equal(t, "2024-02", insights.BestMonth)
	assert.Equal(t, 9, insights.BestMonthQuantity)
	assert.InDelta(t, 55, insights.BestMonthProfit, 0.0001)
	assert.Equal(t, "Jersey", insights.BestSeller)
	// (150 + 170 + 130) / 3
	assert.InDelta(t, 150, insights.BestSellerAvgPrice, 0.0001)
}

func TestBuildInsightsEmpty(t *testing.T) {
	_, ok := BuildInsights(nil)
	assert.False(t, ok)
}

func TestBuildInsightsTies(t *testing.T) {
	// при равном числе заказов побеждают более ранний месяц
	// и встреченный первым товар
	orders := []domain.Order{
		{Product: "Scarf", Quantity: 1, SalePrice: 40, Date: date(2024, 3, 1)},
		{Product: "Cap", Quantity: 2, SalePrice: 20, Date: date(2024, 4, 1)},
	}

	insights, ok := BuildInsights(orders)
	require.True(t, ok)
	assert.Equal(t, "2024-03", insights.BestMonth)
	assert.Equal(t, "Scarf", insights.BestSeller)
	assert.InDelta(t, 40, insights.BestSellerAvgPrice, 0.0001)
}
