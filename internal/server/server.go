package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"orderflow/domain"
	"orderflow/internal/export"
	"orderflow/internal/report"
	"orderflow/internal/store"
	"orderflow/pkg/nats"
)

type Cache interface {
	Set(ctx context.Context, key string, value domain.Order, ttl time.Duration) error
	Get(ctx context.Context, key string) (domain.Order, bool, error)
	Has(_ context.Context, key string) bool
	Delete(ctx context.Context, key string)
}

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) (int64, error)
	Get(ctx context.Context, uid string) (domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, uid string) error
	List(ctx context.Context) ([]domain.Order, error)
	Append(ctx context.Context, orders []domain.Order) (int64, error)
}

// Handler является оберткой над http интерфейсом, инкапсулирующей внутри себя
// логику приема запросов от внешнего мира: html странички с формами,
// JSON API, выгрузки файлов и импорт
type Handler struct {
	store OrderStore
	cache Cache

	// nats может быть nil, тогда ручка publish отвечает 503
	nats    *nats.Client
	subject string
}

func NewHandler(
	store OrderStore,
	cache Cache,
	natsClient *nats.Client,
	subject string,
) *Handler {
	h := &Handler{
		store:   store,
		cache:   cache,
		nats:    natsClient,
		subject: subject,
	}
	return h
}

func (h *Handler) MountRoutes(app *fiber.App) {
	// html странички
	app.Get("/", h.list)
	app.Get("/orders/new", h.newOrderPage)
	app.Post("/orders", h.createForm)
	app.Get("/orders/:uid/edit", h.editPage)
	app.Post("/orders/:uid", h.updateForm)
	app.Post("/orders/:uid/delete", h.deleteForm)

	app.Get("/dashboard", h.dashboard)
	app.Get("/dashboard/charts/profit.png", h.profitChart)
	app.Get("/dashboard/charts/orders.png", h.ordersChart)

	app.Get("/import", h.importPage)
	app.Post("/import", h.importUpload)

	// выгрузки
	app.Get("/export/csv", h.exportCSV)
	app.Get("/export/xlsx", h.exportXLSX)
	app.Get("/export/pdf", h.exportPDF)
	app.Get("/export/template.csv", h.exportTemplate)

	// example routes:
	// http://localhost:3000/api/v1/list
	// http://localhost:3000/api/v1/get/<uid>
	v1 := app.Group("/api/v1")
	v1.Get("/list", h.listJSON)
	v1.Get("/get/:uid", h.get)
	v1.Post("/create", h.create)
	v1.Post("/update/:uid", h.update)
	v1.Post("/delete/:uid", h.deleteJSON)
	v1.Post("/publish", h.publish)
}

// list ручка отображает страничку со всеми заказами
func (h *Handler) list(ctx *fiber.Ctx) error {
	all, err := h.store.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.Render("index", fiber.Map{
		"orders": all,
		"totals": report.ComputeTotals(all),
	})
}

func (h *Handler) newOrderPage(ctx *fiber.Ctx) error {
	return ctx.Render("form", fiber.Map{
		"order":           domain.NewOrder(),
		"orderStatuses":   domain.OrderStatuses(),
		"paymentStatuses": domain.PaymentStatuses(),
	})
}

// createForm обработка формы добавления заказа
func (h *Handler) createForm(ctx *fiber.Ctx) error {
	order := domain.NewOrder()
	orderFromForm(ctx, order)

	if err := order.Validate(); err != nil {
		return ctx.Render("form", fiber.Map{
			"order":           order,
			"orderStatuses":   domain.OrderStatuses(),
			"paymentStatuses": domain.PaymentStatuses(),
			"error":           err.Error(),
		})
	}

	if _, err := h.store.Create(ctx.Context(), order); err != nil {
		return err
	}
	return ctx.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) editPage(ctx *fiber.Ctx) error {
	order, err := h.store.Get(ctx.Context(), ctx.Params("uid"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		return err
	}
	return ctx.Render("form", fiber.Map{
		"order":           &order,
		"edit":            true,
		"orderStatuses":   domain.OrderStatuses(),
		"paymentStatuses": domain.PaymentStatuses(),
	})
}

// updateForm обработка формы редактирования заказа
func (h *Handler) updateForm(ctx *fiber.Ctx) error {
	order, err := h.store.Get(ctx.Context(), ctx.Params("uid"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		return err
	}

	orderFromForm(ctx, &order)
	if err = order.Validate(); err != nil {
		return ctx.Render("form", fiber.Map{
			"order":           &order,
			"edit":            true,
			"orderStatuses":   domain.OrderStatuses(),
			"paymentStatuses": domain.PaymentStatuses(),
			"error":           err.Error(),
		})
	}

	if err = h.store.Update(ctx.Context(), &order); err != nil {
		return err
	}
	h.cache.Delete(ctx.Context(), order.OrderUID)
	return ctx.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) deleteForm(ctx *fiber.Ctx) error {
	uid := ctx.Params("uid")
	if err := h.store.Delete(ctx.Context(), uid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}
	h.cache.Delete(ctx.Context(), uid)
	return ctx.Redirect("/", fiber.StatusSeeOther)
}

// dashboard сводная страничка: итоги, помесячная таблица, графики и выводы
func (h *Handler) dashboard(ctx *fiber.Ctx) error {
	all, err := h.store.List(ctx.Context())
	if err != nil {
		return err
	}

	insights, ok := report.BuildInsights(all)
	return ctx.Render("dashboard", fiber.Map{
		"totals":      report.ComputeTotals(all),
		"monthly":     report.Monthly(all),
		"insights":    insights,
		"hasInsights": ok,
	})
}

func (h *Handler) profitChart(ctx *fiber.Ctx) error {
	png, err := h.renderChart(ctx.Context(), export.ProfitChart)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, "image/png")
	return ctx.Send(png)
}

func (h *Handler) ordersChart(ctx *fiber.Ctx) error {
	png, err := h.renderChart(ctx.Context(), export.OrdersChart)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, "image/png")
	return ctx.Send(png)
}

func (h *Handler) renderChart(ctx context.Context, render func([]report.MonthStat) ([]byte, error)) ([]byte, error) {
	all, err := h.store.List(ctx)
	if err != nil {
		return nil, err
	}
	png, err := render(report.Monthly(all))
	if errors.Is(err, export.ErrNoData) {
		return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return png, err
}

func (h *Handler) importPage(ctx *fiber.Ctx) error {
	return ctx.Render("import", fiber.Map{})
}

// importUpload принимает загруженный CSV или XLSX файл и дописывает его строки
// к текущей таблице, структура колонок должна совпадать с шаблоном
func (h *Handler) importUpload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Render("import", fiber.Map{"error": "please choose a file to upload"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var orders []domain.Order
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		orders, err = export.DecodeCSV(f)
	case ".xlsx":
		orders, err = export.DecodeXLSX(f)
	default:
		return ctx.Render("import", fiber.Map{"error": "unsupported file format, upload .csv or .xlsx"})
	}
	if err != nil {
		return ctx.Render("import", fiber.Map{"error": err.Error()})
	}

	// у строк из чужих файлов может не быть идентификаторов и дат
	for i := range orders {
		orders[i].Normalize()
	}

	count, err := h.store.Append(ctx.Context(), orders)
	if err != nil {
		return err
	}
	return ctx.Render("import", fiber.Map{
		"imported": count,
	})
}

func (h *Handler) exportCSV(ctx *fiber.Ctx) error {
	all, err := h.store.List(ctx.Context())
	if err != nil {
		return err
	}

	var buf strings.Builder
	if err = export.EncodeCSV(&buf, all); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/csv")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return ctx.SendString(buf.String())
}

func (h *Handler) exportXLSX(ctx *fiber.Ctx) error {
	all, err := h.store.List(ctx.Context())
	if err != nil {
		return err
	}

	data, err := export.EncodeXLSX(all)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return ctx.Send(data)
}

// exportPDF упаковывает оба графика дашборда в один PDF документ
func (h *Handler) exportPDF(ctx *fiber.Ctx) error {
	all, err := h.store.List(ctx.Context())
	if err != nil {
		return err
	}

	stats := report.Monthly(all)
	profit, err := export.ProfitChart(stats)
	if errors.Is(err, export.ErrNoData) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	orders, err := export.OrdersChart(stats)
	if err != nil {
		return err
	}

	data, err := export.ChartsPDF([]export.ChartPage{
		{Title: "Profit by Month", PNG: profit},
		{Title: "Orders by Month", PNG: orders},
	})
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="dashboard.pdf"`)
	return ctx.Send(data)
}

func (h *Handler) exportTemplate(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, "text/csv")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="order_template.csv"`)
	return ctx.Send(export.TemplateCSV())
}

// listJSON ручка получения списка заказов в формате JSON
func (h *Handler) listJSON(ctx *fiber.Ctx) error {
	all, err := h.store.List(ctx.Context())
	if err != nil {
		return err
	}
	if all == nil {
		all = []domain.Order{}
	}
	return ctx.JSON(all)
}

// create ручка создания заказа
func (h *Handler) create(ctx *fiber.Ctx) error {
	request := &domain.Order{}
	// пробуем считать тело http запроса, который отправил нам клиент
	// в данном случае сервер сам понимает, какой тип данных нам пришел
	// на основе заголовка Content-Type, в нашем случае это application/json
	if err := ctx.BodyParser(request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	request.Normalize()
	if err := request.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	// далее сохраняем запись в хранилище
	affected, err := h.store.Create(ctx.Context(), request)
	if err != nil {
		return err
	}

	// возвращаем клиенту ответ, сколько строк было сохранено
	return ctx.JSON(map[string]interface{}{
		"order_uid":     request.OrderUID,
		"rows_affected": affected,
	})
}

// get ручка получения заказа по идентификатору
func (h *Handler) get(ctx *fiber.Ctx) error {
	key := ctx.Params("uid")
	if key == "" {
		return fiber.NewError(fiber.StatusBadRequest, "empty key")
	}

	// если в кеше есть значение, то сразу же возвращаем его,
	// без необходимости читать из хранилища
	if h.cache.Has(ctx.Context(), key) {
		order, _, _ := h.cache.Get(ctx.Context(), key)
		return ctx.JSON(map[string]interface{}{
			"order": order,
		})
	}

	order, err := h.store.Get(ctx.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		return err
	}

	// далее сохраняем в кеше на один час (можно настроить)
	_ = h.cache.Set(ctx.Context(), key, order, time.Hour)

	return ctx.JSON(map[string]interface{}{
		"order": order,
	})
}

// update ручка изменения заказа, прибыль пересчитывается из цен
func (h *Handler) update(ctx *fiber.Ctx) error {
	order, err := h.store.Get(ctx.Context(), ctx.Params("uid"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		return err
	}

	if err = ctx.BodyParser(&order); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	order.OrderUID = ctx.Params("uid")
	order.Normalize()
	if err = order.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err = h.store.Update(ctx.Context(), &order); err != nil {
		return err
	}
	h.cache.Delete(ctx.Context(), order.OrderUID)

	return ctx.JSON(map[string]interface{}{
		"order": order,
	})
}

func (h *Handler) deleteJSON(ctx *fiber.Ctx) error {
	uid := ctx.Params("uid")
	if err := h.store.Delete(ctx.Context(), uid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}
	h.cache.Delete(ctx.Context(), uid)
	return ctx.JSON(map[string]interface{}{
		"deleted": uid,
	})
}

// publish данная ручка позволяет сохранять заказ не напрямую,
// а через очередь сообщений
func (h *Handler) publish(ctx *fiber.Ctx) error {
	if h.nats == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "nats is not configured")
	}

	request := &domain.Order{}
	if err := ctx.BodyParser(request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	bytes, err := json.Marshal(request)
	if err != nil {
		return err
	}

	if err = h.nats.Publish(h.subject, bytes); err != nil {
		return err
	}

	return ctx.JSON(map[string]interface{}{
		"error": "",
	})
}

// orderFromForm заполняет заказ значениями из html формы,
// числа разбираются мягко, как и при импорте файлов
func orderFromForm(ctx *fiber.Ctx, order *domain.Order) {
	order.CustomerName = strings.TrimSpace(ctx.FormValue("customer_name"))
	order.Number = strings.TrimSpace(ctx.FormValue("number"))
	order.Product = joinProducts(ctx.FormValue("product"))
	order.Nameset = strings.TrimSpace(ctx.FormValue("nameset"))
	order.TrackingDetail = strings.TrimSpace(ctx.FormValue("tracking_detail"))
	order.OrderStatus = ctx.FormValue("order_status", domain.StatusPending)
	order.PaymentStatus = ctx.FormValue("payment_status", domain.PaymentUnpaid)

	if quantity, err := strconv.Atoi(ctx.FormValue("quantity")); err == nil {
		order.Quantity = quantity
	}
	if cost, err := strconv.ParseFloat(ctx.FormValue("cost_price"), 64); err == nil {
		order.CostPrice = cost
	}
	if sale, err := strconv.ParseFloat(ctx.FormValue("sale_price"), 64); err == nil {
		order.SalePrice = sale
	}
	if date, err := time.Parse(domain.DateLayout, ctx.FormValue("date")); err == nil {
		order.Date = date
	}

	order.Profit = order.SalePrice - order.CostPrice
}

// joinProducts позиции заказа можно вводить через запятую или с новой строки,
// храним их одной строкой через точку с запятой
func joinProducts(raw string) string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "; ")
}
