package middleware

import (
	"errors"
	"net/http"

	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// トークンが有効でも、削除・停止されたユーザーは401にする。
// 匿名リクエストはそのまま通す
func ActiveUserGuard(userRepo repository.UserRepository, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok {
				return next(c)
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrUserNotFound) || (err == nil && user == nil) {
				log.Info("token for unknown user", zap.Int64("user_id", userID))
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			//DB障害などは認証失敗ではない
			if err != nil {
				log.Error("find user for token", zap.Int64("user_id", userID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorResponse{Error: "server error", Code: "server_error"})
			}
			if !user.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
