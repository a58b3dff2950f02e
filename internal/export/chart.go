package export

import (
	"bytes"
	"errors"

	"github.com/wcharczuk/go-chart/v2"

	"orderflow/internal/report"
)

// ErrNoData графики не строятся по пустой таблице
var ErrNoData = errors.New("not enough data to render chart")

const (
	chartWidth  = 900
	chartHeight = 300
)

// ProfitChart линейный график прибыли по месяцам в формате PNG
func ProfitChart(stats []report.MonthStat) ([]byte, error) {
	if len(stats) == 0 {
		return nil, ErrNoData
	}

	xs := make([]float64, len(stats))
	ys := make([]float64, len(stats))
	ticks := make([]chart.Tick, len(stats))
	for i, stat := range stats {
		xs[i] = float64(i)
		ys[i] = stat.Profit
		ticks[i] = chart.Tick{Value: float64(i), Label: stat.Month}
	}

	graph := chart.Chart{
		Title:  "Profit by Month",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Ticks: ticks,
			// явный диапазон, иначе единственная точка дает нулевую ширину оси
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(stats)) - 0.5},
		},
		YAxis: chart.YAxis{
			Range: paddedRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Profit",
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OrdersChart столбчатый график числа заказов по месяцам в формате PNG
func OrdersChart(stats []report.MonthStat) ([]byte, error) {
	if len(stats) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, len(stats))
	max := 0.0
	for i, stat := range stats {
		bars[i] = chart.Value{Label: stat.Month, Value: float64(stat.Orders)}
		if float64(stat.Orders) > max {
			max = float64(stat.Orders)
		}
	}

	graph := chart.BarChart{
		Title:    "Orders by Month",
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max + 1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// paddedRange диапазон оси Y с запасом, плоская линия не должна давать
// вырожденный диапазон
func paddedRange(values []float64) *chart.ContinuousRange {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		min--
		max++
	}
	return &chart.ContinuousRange{Min: min, Max: max}
}
