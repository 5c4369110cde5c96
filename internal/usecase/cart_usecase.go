package usecase

import (
	"context"
	"errors"
	"strconv"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

const (
	CartActionAdd    = "add"
	CartActionRemove = "remove"

	msgCookieCartUpdated = "Item updated in cookie cart"
)

// 顧客プロフィールが無いログインユーザー
var errNoCustomer = errors.New("customer profile not found")

// CartUsecase はカートの参照と更新。
// 匿名はcookie、ログイン顧客はOPEN注文がカートになる。
type CartUsecase struct {
	tx    repo.TransactionManager
	repos repo.TxRepos
	log   *zap.Logger
}

func NewCartUsecase(tx repo.TransactionManager, repos repo.TxRepos, log *zap.Logger) *CartUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{tx: tx, repos: repos, log: log}
}

type CartProductView struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Price    string      `json:"price"`
	Size     *model.Size `json:"size"`
	Digital  bool        `json:"digital"`
	ImageURL string      `json:"image_url"`
}

type CartLineView struct {
	Product   CartProductView `json:"product"`
	Quantity  int64           `json:"quantity"`
	Size      *model.Size     `json:"size"`
	LineTotal string          `json:"line_total"`
}

type CartSummary struct {
	Total            string `json:"total"`
	ItemCount        int64  `json:"item_count"`
	RequiresShipping bool   `json:"requires_shipping"`
}

type CartView struct {
	ItemCount int64          `json:"item_count"`
	Order     CartSummary    `json:"order"`
	Items     []CartLineView `json:"items"`
}

// 更新系の結果。cookieカートのときは Quantity を返さない
type CartMutationOutput struct {
	Message  string `json:"message"`
	Quantity *int64 `json:"quantity,omitempty"`
}

// GetCart はカートを組み立てる。
// ログインしていても顧客プロフィールが無ければcookieカートに落とす
func (u *CartUsecase) GetCart(ctx context.Context, id Identity, cookie string) (CartView, error) {
	source, err := u.sourceFor(ctx, id, cookie)
	if err != nil {
		u.log.Error("resolve cart source", zap.Int64("user_id", id.UserID), zap.Error(err))
		return CartView{}, errServer()
	}

	entries, err := source.Entries(ctx)
	if err != nil {
		u.log.Error("load cart entries", zap.Int64("user_id", id.UserID), zap.Error(err))
		return CartView{}, errServer()
	}

	cart, err := resolveCart(ctx, u.repos.Products(), entries, u.log)
	if err != nil {
		u.log.Error("resolve cart", zap.Error(err))
		return CartView{}, errServer()
	}
	return toCartView(cart), nil
}

func (u *CartUsecase) sourceFor(ctx context.Context, id Identity, cookie string) (CartSource, error) {
	if id.IsAnonymous() {
		return NewCookieCartSource(cookie, u.log), nil
	}

	customer, err := findCustomer(ctx, u.repos.Customers(), id)
	if errors.Is(err, errNoCustomer) {
		u.log.Error("customer profile not found, falling back to cookie cart", zap.Int64("user_id", id.UserID))
		return NewCookieCartSource(cookie, u.log), nil
	}
	if err != nil {
		return nil, err
	}
	return NewOrderCartSource(u.repos.Orders(), u.repos.OrderItems(), customer.ID), nil
}

// UpdateItem は add / remove で数量を1つ増減する。0以下になった行は消える
func (u *CartUsecase) UpdateItem(ctx context.Context, id Identity, productID int64, action string) (CartMutationOutput, error) {
	if productID <= 0 {
		return CartMutationOutput{}, errMissingField("productId")
	}
	var delta int64
	switch action {
	case CartActionAdd:
		delta = 1
	case CartActionRemove:
		delta = -1
	case "":
		return CartMutationOutput{}, errMissingField("action")
	default:
		return CartMutationOutput{}, errValidation("invalid action")
	}

	// cookieカートはクライアントが持つ
	if id.IsAnonymous() {
		return CartMutationOutput{Message: msgCookieCartUpdated}, nil
	}

	var qty int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.productFor(ctx, r, productID, delta > 0); err != nil {
			return err
		}

		order, err := u.openOrderFor(ctx, r, id)
		if err != nil {
			return err
		}

		qty, err = r.OrderItems().AddQuantity(ctx, order.ID, productID, delta)
		if err != nil {
			u.log.Error("update cart item", zap.Int64("order_id", order.ID), zap.Int64("product_id", productID), zap.Error(err))
			return errServer()
		}
		// 上限を超えた加算はロールバック
		if qty > MaxLineQuantity {
			return errValidation("quantity too large")
		}
		return nil
	})
	if err != nil {
		return CartMutationOutput{}, u.wrap(err)
	}

	if qty == 0 {
		u.log.Info("removed product from cart", zap.Int64("user_id", id.UserID), zap.Int64("product_id", productID))
	}
	return CartMutationOutput{Message: "Item was updated", Quantity: &qty}, nil
}

// SetQuantity は数量を直接指定する。0以下は削除と同じ
func (u *CartUsecase) SetQuantity(ctx context.Context, id Identity, productID int64, quantity int64) (CartMutationOutput, error) {
	if productID <= 0 {
		return CartMutationOutput{}, errValidation("invalid product id")
	}
	if quantity > MaxLineQuantity {
		return CartMutationOutput{}, errValidation("quantity too large")
	}
	if id.IsAnonymous() {
		return CartMutationOutput{Message: msgCookieCartUpdated}, nil
	}

	var qty int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := u.openOrderFor(ctx, r, id)
		if err != nil {
			return err
		}

		if quantity <= 0 {
			if err := r.OrderItems().DeleteByOrderAndProduct(ctx, order.ID, productID); err != nil && err != repo.ErrNotFound {
				u.log.Error("delete cart item", zap.Int64("order_id", order.ID), zap.Int64("product_id", productID), zap.Error(err))
				return errServer()
			}
			qty = 0
			return nil
		}

		if _, err := u.productFor(ctx, r, productID, true); err != nil {
			return err
		}

		err = r.OrderItems().SetQuantity(ctx, order.ID, productID, quantity)
		if err == repo.ErrNotFound {
			// 行が無ければ作る
			qty, err = r.OrderItems().AddQuantity(ctx, order.ID, productID, quantity)
		} else {
			qty = quantity
		}
		if err != nil {
			u.log.Error("set cart item quantity", zap.Int64("order_id", order.ID), zap.Int64("product_id", productID), zap.Error(err))
			return errServer()
		}
		return nil
	})
	if err != nil {
		return CartMutationOutput{}, u.wrap(err)
	}

	return CartMutationOutput{Message: "Item was updated", Quantity: &qty}, nil
}

// RemoveItem は数量に関係なく行を消す。行が無くてもエラーにしない
func (u *CartUsecase) RemoveItem(ctx context.Context, id Identity, productID int64) (CartMutationOutput, error) {
	if productID <= 0 {
		return CartMutationOutput{}, errValidation("invalid product id")
	}
	if id.IsAnonymous() {
		return CartMutationOutput{Message: msgCookieCartUpdated}, nil
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		customer, err := u.customerFor(ctx, r, id)
		if err != nil {
			return err
		}

		order, err := r.Orders().FindOpenByCustomerID(ctx, customer.ID)
		if err == repo.ErrNotFound {
			u.log.Info("no open order to remove from", zap.Int64("customer_id", customer.ID))
			return nil
		}
		if err != nil {
			u.log.Error("find open order", zap.Int64("customer_id", customer.ID), zap.Error(err))
			return errServer()
		}

		err = r.OrderItems().DeleteByOrderAndProduct(ctx, order.ID, productID)
		if err == repo.ErrNotFound {
			u.log.Info("cart item already removed", zap.Int64("order_id", order.ID), zap.Int64("product_id", productID))
			return nil
		}
		if err != nil {
			u.log.Error("remove cart item", zap.Int64("order_id", order.ID), zap.Int64("product_id", productID), zap.Error(err))
			return errServer()
		}
		return nil
	})
	if err != nil {
		return CartMutationOutput{}, u.wrap(err)
	}

	return CartMutationOutput{Message: "Item was removed"}, nil
}

// SelectSize は注文明細のサイズを変える（商品マスタは触らない）
func (u *CartUsecase) SelectSize(ctx context.Context, id Identity, productID int64, size string) (CartMutationOutput, error) {
	if productID <= 0 {
		return CartMutationOutput{}, errMissingField("productId")
	}
	if size == "" {
		return CartMutationOutput{}, errMissingField("selectedSize")
	}
	sz, ok := model.ParseSize(size)
	if !ok {
		return CartMutationOutput{}, errValidation("invalid size")
	}
	if id.IsAnonymous() {
		return CartMutationOutput{Message: msgCookieCartUpdated}, nil
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		customer, err := u.customerFor(ctx, r, id)
		if err != nil {
			return err
		}

		order, err := r.Orders().FindOpenByCustomerID(ctx, customer.ID)
		if err == repo.ErrNotFound {
			return errNotFound("cart item not found")
		}
		if err != nil {
			u.log.Error("find open order", zap.Int64("customer_id", customer.ID), zap.Error(err))
			return errServer()
		}

		err = r.OrderItems().SetSize(ctx, order.ID, productID, sz)
		if err == repo.ErrNotFound {
			return errNotFound("cart item not found")
		}
		if err != nil {
			u.log.Error("set cart item size", zap.Int64("order_id", order.ID), zap.Int64("product_id", productID), zap.Error(err))
			return errServer()
		}
		return nil
	})
	if err != nil {
		return CartMutationOutput{}, u.wrap(err)
	}

	u.log.Info("updated cart item size", zap.Int64("product_id", productID), zap.String("size", string(sz)))
	return CartMutationOutput{Message: "Size was updated"}, nil
}

func (u *CartUsecase) customerFor(ctx context.Context, r repo.TxRepos, id Identity) (model.Customer, error) {
	customer, err := findCustomer(ctx, r.Customers(), id)
	if errors.Is(err, errNoCustomer) {
		u.log.Error("customer profile not found", zap.Int64("user_id", id.UserID))
		return model.Customer{}, errNotFound("customer profile not found")
	}
	if err != nil {
		u.log.Error("find customer", zap.Int64("user_id", id.UserID), zap.Error(err))
		return model.Customer{}, errServer()
	}
	return customer, nil
}

// OPEN注文（無ければ作る）
func (u *CartUsecase) openOrderFor(ctx context.Context, r repo.TxRepos, id Identity) (model.Order, error) {
	customer, err := u.customerFor(ctx, r, id)
	if err != nil {
		return model.Order{}, err
	}

	order, err := r.Orders().GetOrCreateOpenByCustomerID(ctx, customer.ID)
	if err != nil {
		u.log.Error("get or create open order", zap.Int64("customer_id", customer.ID), zap.Error(err))
		return model.Order{}, errServer()
	}
	return order, nil
}

// 追加するときは公開中の商品だけ
func (u *CartUsecase) productFor(ctx context.Context, r repo.TxRepos, productID int64, adding bool) (model.Product, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, errNotFound("product not found: " + strconv.FormatInt(productID, 10))
	}
	if err != nil {
		u.log.Error("find product", zap.Int64("product_id", productID), zap.Error(err))
		return model.Product{}, errServer()
	}
	if adding && !p.IsActive {
		return model.Product{}, errValidation("product is not available")
	}
	return p, nil
}

func (u *CartUsecase) wrap(err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	u.log.Error("cart transaction", zap.Error(err))
	return errServer()
}

func findCustomer(ctx context.Context, customers repo.CustomerRepository, id Identity) (model.Customer, error) {
	c, err := customers.FindByUserID(ctx, id.UserID)
	if err == repo.ErrNotFound {
		return model.Customer{}, errNoCustomer
	}
	return c, err
}

func toCartView(cart resolvedCart) CartView {
	lines := make([]CartLineView, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, CartLineView{
			Product: CartProductView{
				ID:       l.Product.ID,
				Name:     l.Product.Name,
				Price:    l.Product.Price.StringFixed(2),
				Size:     l.Product.Size,
				Digital:  l.Product.Digital,
				ImageURL: l.Product.ImageURL,
			},
			Quantity:  l.Quantity,
			Size:      l.Size,
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}

	return CartView{
		ItemCount: cart.ItemCount,
		Order: CartSummary{
			Total:            cart.Total.StringFixed(2),
			ItemCount:        cart.ItemCount,
			RequiresShipping: cart.RequiresShipping,
		},
		Items: lines,
	}
}
