package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/token"
	"storefront/internal/logger"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .env は無くてもよい（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zlog.Fatal("migrate database", zap.Error(err))
	}

	//Repository（GORM実装）生成
	repos := infraRepo.NewRepos(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	issuer, err := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		zlog.Fatal("init jwt issuer", zap.Error(err))
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(repos.Products(), zlog.Named("product"))
	cartUC := usecase.NewCartUsecase(txManager, repos, zlog.Named("cart"))
	guestUC := usecase.NewGuestUsecase(zlog.Named("guest"))
	orderUC := usecase.NewOrderUsecase(txManager, repos, guestUC, idGen, clock, cfg.RequireShippingAddress, zlog.Named("order"))
	authUC := usecase.NewAuthUsecase(
		txManager,
		userRepo,
		usecase.NewBcryptPasswordHasher(cfg.BcryptCost),
		usecase.NewBcryptPasswordVerifier(),
		issuer,
		clock,
		zlog.Named("auth"),
	)

	//Handler生成
	e := server.New(cfg, zlog, userRepo, server.Handlers{
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
		Auth:    handler.NewAuthHandler(authUC),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//Server起動
	if err := server.Start(ctx, e, cfg.Addr(), zlog); err != nil {
		zlog.Fatal("http server", zap.Error(err))
	}
	zlog.Info("server stopped")
}
