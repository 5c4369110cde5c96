package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	log         *zap.Logger
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, log *zap.Logger) *ProductUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductUsecase{productRepo: productRepo, log: log}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page  int
	Limit int
	Q     string
	Sort  string
}

// 価格は文字列（小数2桁）で返す
type ProductOutput struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       string      `json:"price"`
	Size        *model.Size `json:"size"`
	Digital     bool        `json:"digital"`
	InStock     bool        `json:"in_stock"`
	ImageURL    string      `json:"image_url"`
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, errValidation("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, errValidation("invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, errValidation("q too long")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, errValidation("invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     strings.TrimSpace(in.Q),
		Sort:  in.Sort,
	})
	if err != nil {
		u.log.Error("list products", zap.Error(err))
		return ProductListOutput{}, errServer()
	}

	out := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		out = append(out, toProductOutput(p))
	}

	return ProductListOutput{
		Items: out,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 非公開は存在しない扱い
func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, errValidation("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ProductOutput{}, errNotFound("product not found")
	}
	if err != nil {
		u.log.Error("find product", zap.Int64("product_id", productID), zap.Error(err))
		return ProductOutput{}, errServer()
	}

	if !p.IsActive {
		return ProductOutput{}, errNotFound("product not found")
	}
	return toProductOutput(p), nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Size:        p.Size,
		Digital:     p.Digital,
		InStock:     p.InStock(),
		ImageURL:    p.ImageURL,
	}
}
