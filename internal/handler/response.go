package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

const cartCookieName = "cart"

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: string(he.Code)})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server error", Code: string(usecase.CodeServerError)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: string(usecase.CodeValidation)})
}

// AuthJWTが入れたuser_id。無ければ匿名
func identityFrom(c echo.Context) usecase.Identity {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok {
		return usecase.Anonymous()
	}
	return usecase.Identity{UserID: id}
}

// cart cookie の中身（JSON）。
// JSONをそのまま入れたcookieは net/http のパーサが捨てるので生ヘッダも見る
func cartCookie(c echo.Context) string {
	if ck, err := c.Cookie(cartCookieName); err == nil {
		return unescapeCookie(ck.Value)
	}
	for _, h := range c.Request().Header.Values("Cookie") {
		for _, part := range strings.Split(h, ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
			if ok && name == cartCookieName {
				return unescapeCookie(value)
			}
		}
	}
	return ""
}

func unescapeCookie(v string) string {
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}

// 数値でも文字列でも受け付けるID（フロントはdata属性の文字列を送ってくる）
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(b)), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(v)
	return nil
}

// ?page ?limit（default 1 / 20）
func pageParams(c echo.Context) (int, int, bool) {
	page, limit := 1, 20
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}
	return page, limit, true
}
