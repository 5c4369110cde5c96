package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// total は数値でも文字列でもよい
type checkoutForm struct {
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Total *decimal.Decimal `json:"total"`
}

type shippingRequest struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

type completeOrderRequest struct {
	Form     checkoutForm     `json:"form"`
	Shipping *shippingRequest `json:"shipping"`
}

// 確定はゲストも可。履歴はログイン必須
func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/orders")

	g.POST("/complete", h.complete)
	g.GET("", h.list, middleware.RequireAuth())
	g.GET("/:id", h.detail, middleware.RequireAuth())
}

func (h *OrderHandler) complete(c echo.Context) error {
	var req completeOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	in := usecase.CompleteOrderInput{
		Name:  req.Form.Name,
		Email: req.Form.Email,
		Total: req.Form.Total,
	}
	if req.Shipping != nil {
		in.Shipping = &usecase.ShippingInput{
			Address: req.Shipping.Address,
			City:    req.Shipping.City,
			State:   req.Shipping.State,
			Zipcode: req.Shipping.Zipcode,
			Country: req.Shipping.Country,
		}
	}

	out, err := h.uc.CompleteOrder(c.Request().Context(), identityFrom(c), cartCookie(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	page, limit, ok := pageParams(c)
	if !ok {
		return badRequest(c, "invalid page or limit")
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), identityFrom(c), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetMyOrder(c.Request().Context(), identityFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
