package report

import (
	"sort"

	"orderflow/domain"
)

// Totals сводные показатели по всей таблице заказов
type Totals struct {
	Orders   int     `json:"orders"`
	Quantity int     `json:"quantity"`
	Sales    float64 `json:"sales"`
	Profit   float64 `json:"profit"`
}

// MonthStat агрегаты по одному месяцу, месяц в виде YYYY-MM
type MonthStat struct {
	Month    string  `json:"month"`
	Profit   float64 `json:"profit"`
	Orders   int     `json:"orders"`
	Quantity int     `json:"quantity"`
}

// Insights текстовая выжимка для дашборда
type Insights struct {
	BestMonth          string  `json:"best_month"`
	BestMonthQuantity  int     `json:"best_month_quantity"`
	BestMonthProfit    float64 `json:"best_month_profit"`
	BestSeller         string  `json:"best_seller"`
	BestSellerAvgPrice float64 `json:"best_seller_avg_price"`
}

// ComputeTotals считает количество заказов, суммарное количество товара,
// сумму продаж и сумму прибыли
func ComputeTotals(orders []domain.Order) Totals {
	t := Totals{Orders: len(orders)}
	for _, o := range orders {
		t.Quantity += o.Quantity
		t.Sales += o.SalePrice
		t.Profit += o.Profit
	}
	return t
}

// Monthly группирует заказы по месяцу даты: сумма прибыли, число заказов
// и суммарное количество, месяцы отсортированы по возрастанию
func Monthly(orders []domain.Order) []MonthStat {
	byMonth := make(map[string]*MonthStat)
	for _, o := range orders {
		month := o.Month()
		stat, ok := byMonth[month]
		if !ok {
			stat = &MonthStat{Month: month}
			byMonth[month] = stat
		}
		stat.Profit += o.Profit
		stat.Orders++
		stat.Quantity += o.Quantity
	}

	stats := make([]MonthStat, 0, len(byMonth))
	for _, stat := range byMonth {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Month < stats[j].Month
	})
	return stats
}

// BuildInsights находит месяц с наибольшим числом заказов и самый продаваемый
// товар. Возвращает false, если данных для выводов нет совсем
func BuildInsights(orders []domain.Order) (Insights, bool) {
	if len(orders) == 0 {
		return Insights{}, false
	}

	stats := Monthly(orders)

	// при равенстве побеждает более ранний месяц
	best := stats[0]
	for _, stat := range stats[1:] {
		if stat.Orders > best.Orders {
			best = stat
		}
	}

	// самый продаваемый товар по числу строк,
	// при равенстве побеждает встреченный первым
	counts := make(map[string]int)
	bestSeller := ""
	for _, o := range orders {
		counts[o.Product]++
		if bestSeller == "" || counts[o.Product] > counts[bestSeller] {
			bestSeller = o.Product
		}
	}

	var priceSum float64
	var priceCount int
	for _, o := range orders {
		if o.Product == bestSeller {
			priceSum += o.SalePrice
			priceCount++
		}
	}

	return Insights{
		BestMonth:          best.Month,
		BestMonthQuantity:  best.Quantity,
		BestMonthProfit:    best.Profit,
		BestSeller:         bestSeller,
		BestSellerAvgPrice: priceSum / float64(priceCount),
	}, true
}
