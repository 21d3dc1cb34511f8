package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reposicion-api/internal/application/dto"
	"github.com/jhoicas/Reposicion-api/internal/application/replenishment"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

// replenishmentReportGenerator abstrae el generador del reporte PDF; en
// producción es *pdf.MarotoPDFGenerator.
type replenishmentReportGenerator interface {
	GenerateReplenishmentReport(ctx context.Context, products []*replenishment.NeedingProduct, generatedAt time.Time) ([]byte, error)
}

// ReplenishmentHandler expone recomendaciones y el ciclo de vida de las
// órdenes de reposición.
type ReplenishmentHandler struct {
	planner *replenishment.Planner
	orders  *replenishment.Orders
	reports replenishmentReportGenerator
}

// NewReplenishmentHandler construye el handler.
func NewReplenishmentHandler(
	planner *replenishment.Planner,
	orders *replenishment.Orders,
	reports replenishmentReportGenerator,
) *ReplenishmentHandler {
	return &ReplenishmentHandler{planner: planner, orders: orders, reports: reports}
}

// Recommend godoc
// @Summary      Recomendación de reposición de un producto
// @Tags         replenishment
// @Produce      json
// @Param        id          path   string  true   "ID del producto"
// @Param        model_type  query  string  false  "SARIMA|RandomForest"  default(SARIMA)
// @Param        days        query  int     false  "Horizonte del pronóstico en días"
// @Success      200  {object}  replenishment.Recommendation
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/replenishment/products/{id}/recommendation [get]
func (h *ReplenishmentHandler) Recommend(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	modelType := c.Query("model_type", "SARIMA")
	days := c.QueryInt("days", 0)

	rec, err := h.planner.Recommend(c.Context(), id, modelType, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}

// NeedingProducts godoc
// @Summary      Productos que requieren reposición
// @Tags         replenishment
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200  {array}  replenishment.NeedingProduct
// @Router       /api/replenishment/needing [get]
func (h *ReplenishmentHandler) NeedingProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	products, err := h.orders.ProductsNeedingReplenishment(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// NeedingReport godoc
// @Summary      Reporte PDF de productos que requieren reposición
// @Tags         replenishment
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/replenishment/needing/report [get]
func (h *ReplenishmentHandler) NeedingReport(c *fiber.Ctx) error {
	products, err := h.orders.ProductsNeedingReplenishment(c.Context(), 100, 0)
	if err != nil {
		return respondError(c, err)
	}
	doc, err := h.reports.GenerateReplenishmentReport(c.Context(), products, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reporte-reposicion.pdf"`)
	return c.Send(doc)
}

// CreateOrder godoc
// @Summary      Crear una orden de reposición
// @Tags         replenishment
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReplenishmentRequest  true  "Datos de la orden"
// @Success      201   {object}  dto.ReplenishmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/replenishment/orders [post]
func (h *ReplenishmentHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateReplenishmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	order, err := h.orders.Create(c.Context(), replenishment.CreateOrder{
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		ExpectedArrival: in.ExpectedArrival,
		SupplierInfo:    in.SupplierInfo,
		Notes:           in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(orderResponse(order))
}

// GetOrder godoc
// @Summary      Obtener una orden de reposición
// @Tags         replenishment
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ReplenishmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/replenishment/orders/{id} [get]
func (h *ReplenishmentHandler) GetOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	order, err := h.orders.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orderResponse(order))
}

// ListOrders godoc
// @Summary      Listar órdenes de reposición
// @Tags         replenishment
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        status      query  string  false  "pending|received|cancelled"
// @Param        limit       query  int     false  "Límite"   default(20)
// @Param        offset      query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.ReplenishmentListResponse
// @Router       /api/replenishment/orders [get]
func (h *ReplenishmentHandler) ListOrders(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	filter := repository.ReplenishmentFilter{
		ProductID: c.Query("product_id"),
		Status:    c.Query("status"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}

	orders, err := h.orders.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.ReplenishmentResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, orderResponse(o))
	}
	return c.JSON(dto.ReplenishmentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// ConfirmOrder godoc
// @Summary      Confirmar la llegada de una orden de reposición
// @Tags         replenishment
// @Accept       json
// @Produce      json
// @Param        id    path  string  true   "ID de la orden"
// @Param        body  body  dto.ConfirmReplenishmentRequest  false  "Cantidad recibida; vacío usa la pedida"
// @Success      200   {object}  dto.ReplenishmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/replenishment/orders/{id}/confirm [post]
func (h *ReplenishmentHandler) ConfirmOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ConfirmReplenishmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}

	order, err := h.orders.Confirm(c.Context(), id, in.ActualQuantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orderResponse(order))
}

// CancelOrder godoc
// @Summary      Cancelar una orden de reposición pendiente
// @Tags         replenishment
// @Accept       json
// @Produce      json
// @Param        id    path  string  true   "ID de la orden"
// @Param        body  body  dto.CancelReplenishmentRequest  false  "Motivo de la cancelación"
// @Success      200   {object}  dto.ReplenishmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/replenishment/orders/{id}/cancel [post]
func (h *ReplenishmentHandler) CancelOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.CancelReplenishmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}

	order, err := h.orders.Cancel(c.Context(), id, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orderResponse(order))
}

// Analytics godoc
// @Summary      Métricas de las órdenes de reposición
// @Tags         replenishment
// @Produce      json
// @Param        from  query  string  false  "Desde (RFC3339); vacío = últimos 30 días"
// @Param        to    query  string  false  "Hasta (RFC3339)"
// @Success      200   {object}  replenishment.Analytics
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/replenishment/analytics [get]
func (h *ReplenishmentHandler) Analytics(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido; se espera RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido; se espera RFC3339"})
	}

	analytics, err := h.orders.GetAnalytics(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(analytics)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func orderResponse(o *entity.Replenishment) dto.ReplenishmentResponse {
	return dto.ReplenishmentResponse{
		ID:              o.ID,
		ProductID:       o.ProductID,
		Quantity:        o.Quantity,
		ActualQuantity:  o.ActualQuantity,
		Status:          o.Status,
		ExpectedArrival: o.ExpectedArrival,
		ReceivedAt:      o.ReceivedAt,
		SupplierInfo:    o.SupplierInfo,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
