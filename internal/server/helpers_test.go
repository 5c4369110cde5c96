package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/token"
	"storefront/internal/server"
	"storefront/internal/testutil"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "server-test-secret"

type seqID struct{ n int }

func (s *seqID) NewID() string {
	s.n++
	return fmt.Sprintf("tx-%d", s.n)
}

// JWTのexp検証は実時間で行われるので実時計を使う
type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

type testApp struct {
	e      *echo.Echo
	db     *gorm.DB
	shorts model.Product // 49.99 物理
	ebook  model.Product // 65.00 デジタル
}

// main と同じ配線をsqlite上で組む
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gormDB := testutil.NewDB(t)
	log := zap.NewNop()
	cfg := config.Config{JWTSecret: testSecret, AccessTokenTTL: time.Hour, RequireShippingAddress: true}

	repos := infraRepo.NewRepos(gormDB)
	tm := infraRepo.NewTxManagerGorm(gormDB)
	users := infraRepo.NewUserGormRepository(gormDB)

	issuer, err := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	require.NoError(t, err)

	clock := wallClock{}
	authUC := usecase.NewAuthUsecase(tm, users, usecase.NewBcryptPasswordHasher(bcrypt.MinCost), usecase.NewBcryptPasswordVerifier(), issuer, clock, log)
	orderUC := usecase.NewOrderUsecase(tm, repos, usecase.NewGuestUsecase(log), &seqID{}, clock, cfg.RequireShippingAddress, log)

	e := server.New(cfg, log, users, server.Handlers{
		Product: handler.NewProductHandler(usecase.NewProductUsecase(repos.Products(), log)),
		Cart:    handler.NewCartHandler(usecase.NewCartUsecase(tm, repos, log)),
		Order:   handler.NewOrderHandler(orderUC),
		Auth:    handler.NewAuthHandler(authUC),
	})

	return &testApp{
		e:      e,
		db:     gormDB,
		shorts: testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Shorts", Price: "49.99"}),
		ebook:  testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Ebook", Price: "65.00", Digital: true}),
	}
}

type reqOpt func(r *http.Request)

func withToken(access string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }
}

// cookieヘッダをそのまま書く（JSONを生で入れるフロントと同じ形）
func withRawCookie(v string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Cookie", v) }
}

func (a *testApp) doJSON(t *testing.T, method string, path string, body string, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body=%s", rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body=%s", rec.Body.String())
	return v
}

// 登録してログインし、アクセストークンを返す
func (a *testApp) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	rec := a.doJSON(t, http.MethodPost, "/auth/register",
		fmt.Sprintf(`{"name":"Member","email":%q,"password":"correct horse battery"}`, email))
	requireStatus(t, rec, http.StatusCreated)

	rec = a.doJSON(t, http.MethodPost, "/auth/login",
		fmt.Sprintf(`{"email":%q,"password":"correct horse battery"}`, email))
	requireStatus(t, rec, http.StatusOK)

	out := decode[usecase.LoginOutput](t, rec)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}
