package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"orderflow/domain"
)

// ErrHeaderMismatch структура колонок входного файла не совпадает с шаблоном
var ErrHeaderMismatch = errors.New("column structure mismatch, use the provided template")

// Header колонки CSV файла заказов, порядок фиксирован
var Header = []string{
	"Order UID",
	"Customer Name",
	"Number",
	"Order",
	"Quantity",
	"Nameset",
	"Cost Price",
	"Sale Price",
	"Profit",
	"Order Status",
	"Payment Status",
	"Tracking Detail",
	"Date",
}

// Record превращает заказ в строку CSV в порядке Header
func Record(o domain.Order) []string {
	date := ""
	if !o.Date.IsZero() {
		date = o.Date.Format(domain.DateLayout)
	}
	return []string{
		o.OrderUID,
		o.CustomerName,
		o.Number,
		o.Product,
		strconv.Itoa(o.Quantity),
		o.Nameset,
		formatPrice(o.CostPrice),
		formatPrice(o.SalePrice),
		formatPrice(o.Profit),
		o.OrderStatus,
		o.PaymentStatus,
		o.TrackingDetail,
		date,
	}
}

// ParseRecord собирает заказ из строки CSV.
// Числовые ячейки разбираются мягко: мусор и пустые значения превращаются
// в значения по умолчанию, а не роняют весь импорт
func ParseRecord(record []string) (domain.Order, error) {
	if len(record) != len(Header) {
		return domain.Order{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(record))
	}

	o := domain.Order{
		OrderUID:       record[0],
		CustomerName:   record[1],
		Number:         record[2],
		Product:        record[3],
		Quantity:       safeInt(record[4], 1),
		Nameset:        record[5],
		CostPrice:      safeFloat(record[6], 0),
		SalePrice:      safeFloat(record[7], 0),
		Profit:         safeFloat(record[8], 0),
		OrderStatus:    record[9],
		PaymentStatus:  record[10],
		TrackingDetail: record[11],
	}

	if record[12] != "" {
		date, err := time.Parse(domain.DateLayout, record[12])
		if err == nil {
			o.Date = date
		}
	}

	return o, nil
}

// EncodeCSV пишет заголовок и все заказы в поток
func EncodeCSV(w io.Writer, orders []domain.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range orders {
		if err := cw.Write(Record(o)); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV читает заказы из потока, заголовок должен совпадать с Header один в один
func DecodeCSV(r io.Reader) ([]domain.Order, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrHeaderMismatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if !headerEqual(header) {
		return nil, ErrHeaderMismatch
	}

	var orders []domain.Order
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		o, err := ParseRecord(record)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// TemplateCSV пустой файл с одними заголовками, раздается как шаблон для импорта
func TemplateCSV() []byte {
	return []byte(strings.Join(Header, ",") + "\n")
}

func headerEqual(header []string) bool {
	if len(header) != len(Header) {
		return false
	}
	for i, col := range Header {
		if header[i] != col {
			return false
		}
	}
	return true
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func safeInt(value string, def int) int {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return int(f)
}

func safeFloat(value string, def float64) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return f
}
