package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net https://code.jquery.com; " +
	"style-src 'self' 'unsafe-inline' https://stackpath.bootstrapcdn.com; " +
	"img-src 'self' data: https:; " +
	"font-src 'self' https://stackpath.bootstrapcdn.com; " +
	"frame-ancestors 'self' https://*.helcim.app https://*.myhelcim.com; " +
	"connect-src 'self';"

// 全レスポンスにセキュリティヘッダを付ける
func SecurityHeaders() echo.MiddlewareFunc {
	return echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	})
}
