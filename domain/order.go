package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrConvertJSONB = errors.New("cannot convert to JSONB")

// DateLayout формат даты заказа в CSV файле и в формах
const DateLayout = "2006-01-02"

// Статусы заказа
const (
	StatusPending      = "Pending"
	StatusInProduction = "In Production"
	StatusShipped      = "Shipped"
	StatusDelivered    = "Delivered"
	StatusCancelled    = "Cancelled"
)

// Статусы оплаты
const (
	PaymentUnpaid        = "Unpaid"
	PaymentPartiallyPaid = "Partially Paid"
	PaymentPaid          = "Paid"
)

// OrderStatuses допустимые статусы заказа, порядок важен для селектов в формах
func OrderStatuses() []string {
	return []string{StatusPending, StatusInProduction, StatusShipped, StatusDelivered, StatusCancelled}
}

// PaymentStatuses допустимые статусы оплаты
func PaymentStatuses() []string {
	return []string{PaymentUnpaid, PaymentPartiallyPaid, PaymentPaid}
}

// Order основная сущность в приложение, т.е. сам заказ.
// Один заказ соответствует одной строке CSV файла
type Order struct {
	OrderUID       string    `json:"order_uid"`
	CustomerName   string    `json:"customer_name"`
	Number         string    `json:"number"`
	Product        string    `json:"product"`
	Quantity       int       `json:"quantity"`
	Nameset        string    `json:"nameset"`
	CostPrice      float64   `json:"cost_price"`
	SalePrice      float64   `json:"sale_price"`
	Profit         float64   `json:"profit"`
	OrderStatus    string    `json:"order_status"`
	PaymentStatus  string    `json:"payment_status"`
	TrackingDetail string    `json:"tracking_detail"`
	Date           time.Time `json:"date"`
}

// NewOrder создает заказ с новым идентификатором и сегодняшней датой
func NewOrder() *Order {
	return &Order{
		OrderUID:      uuid.NewString(),
		Quantity:      1,
		OrderStatus:   StatusPending,
		PaymentStatus: PaymentUnpaid,
		Date:          Today(),
	}
}

// Today сегодняшняя дата без времени, чтобы группировка по месяцам была стабильной
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize приводит заказ к каноничному виду перед сохранением:
// выдает идентификатор и дату, если их нет, и пересчитывает прибыль из цен
func (o *Order) Normalize() {
	if o.OrderUID == "" {
		o.OrderUID = uuid.NewString()
	}
	if o.Date.IsZero() {
		o.Date = Today()
	}
	o.Profit = o.SalePrice - o.CostPrice
}

// Validate проверяет обязательные поля так же, как это делала бы форма заказа
func (o *Order) Validate() error {
	switch {
	case o.CustomerName == "":
		return errors.New("customer name is required")
	case o.Number == "":
		return errors.New("contact number is required")
	case o.Product == "":
		return errors.New("order name is required")
	case o.Quantity < 1:
		return errors.New("quantity must be at least 1")
	case o.CostPrice < 0:
		return errors.New("cost price cannot be negative")
	case o.SalePrice < 0:
		return errors.New("sale price cannot be negative")
	}
	if !contains(OrderStatuses(), o.OrderStatus) {
		return fmt.Errorf("unknown order status %q", o.OrderStatus)
	}
	if !contains(PaymentStatuses(), o.PaymentStatus) {
		return fmt.Errorf("unknown payment status %q", o.PaymentStatus)
	}
	return nil
}

// Month месяц заказа в виде YYYY-MM, ключ группировки на дашборде
func (o *Order) Month() string {
	return o.Date.Format("2006-01")
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

func (o *Order) Scan(dst interface{}) error {
	switch src := dst.(type) {
	case string:
		return json.Unmarshal([]byte(src), o)
	case []byte:
		return json.Unmarshal(src, o)
	case nil:
		return nil
	}
	return ErrConvertJSONB
}

func (o Order) Value() (driver.Value, error) {
	j, err := json.Marshal(o)
	if err != nil {
		return `{}`, err
	}
	return string(j), nil
}
