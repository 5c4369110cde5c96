package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type updateItemRequest struct {
	ProductID flexID `json:"productId"`
	Action    string `json:"action"`
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// フォーム送信にも対応
type selectSizeRequest struct {
	ProductID    flexID `json:"productId" form:"productId"`
	SelectedSize string `json:"selectedSize" form:"selectedSize"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// /cart 以下を登録（匿名でも使える）
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("/items", h.updateItem)
	g.PUT("/items/:productId", h.setQuantity)
	g.DELETE("/items/:productId", h.removeItem)
	g.POST("/size", h.selectSize)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), identityFrom(c), cartCookie(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), identityFrom(c), int64(req.ProductID), req.Action)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) setQuantity(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	var req setQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.SetQuantity(c.Request().Context(), identityFrom(c), productID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid product id")
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), identityFrom(c), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) selectSize(c echo.Context) error {
	var req selectSizeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if _, err := h.uc.SelectSize(c.Request().Context(), identityFrom(c), int64(req.ProductID), req.SelectedSize); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
