package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 合計の許容誤差（丸め分）
var totalTolerance = decimal.New(1, -2)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type OrderUsecase struct {
	tx              repo.TransactionManager
	repos           repo.TxRepos
	guest           *GuestUsecase
	idGen           IDGenerator
	clock           Clock
	requireShipping bool
	log             *zap.Logger
}

// requireShipping=false なら配送先なしでも物理商品の注文を確定できる
func NewOrderUsecase(
	tx repo.TransactionManager,
	repos repo.TxRepos,
	guest *GuestUsecase,
	idGen IDGenerator,
	clock Clock,
	requireShipping bool,
	log *zap.Logger,
) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{
		tx:              tx,
		repos:           repos,
		guest:           guest,
		idGen:           idGen,
		clock:           clock,
		requireShipping: requireShipping,
		log:             log,
	}
}

type ShippingInput struct {
	Address string
	City    string
	State   string
	Zipcode string
	Country string
}

type CompleteOrderInput struct {
	// ゲストのみ必須
	Name  string
	Email string
	// クライアントが表示していた合計
	Total    *decimal.Decimal
	Shipping *ShippingInput
}

type CompleteOrderOutput struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
}

// CompleteOrder はカートを注文として確定する。
// どこかで失敗したら顧客作成も含めて全部ロールバックする
func (u *OrderUsecase) CompleteOrder(ctx context.Context, id Identity, cookie string, in CompleteOrderInput) (CompleteOrderOutput, error) {
	if in.Total == nil {
		return CompleteOrderOutput{}, errMissingField("total")
	}
	if id.IsAnonymous() {
		if strings.TrimSpace(in.Name) == "" {
			return CompleteOrderOutput{}, errMissingField("name")
		}
		if strings.TrimSpace(in.Email) == "" {
			return CompleteOrderOutput{}, errMissingField("email")
		}
	}

	var out CompleteOrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		customer, order, cart, err := u.loadCheckout(ctx, r, id, cookie, in)
		if err != nil {
			return err
		}

		if cart.Total.IsZero() {
			return errValidation("cart is empty")
		}
		if in.Total.Sub(cart.Total).Abs().GreaterThanOrEqual(totalTolerance) {
			u.log.Warn("order total mismatch",
				zap.Int64("order_id", order.ID),
				zap.String("submitted", in.Total.StringFixed(2)),
				zap.String("calculated", cart.Total.StringFixed(2)),
			)
			return NewHTTPError(http.StatusBadRequest, CodeMismatch, "order total mismatch")
		}

		var address *model.ShippingAddress
		if cart.RequiresShipping {
			a, err := u.shippingAddress(in.Shipping)
			if err != nil {
				return err
			}
			address = a
		}

		now := u.clock.Now()
		txID := u.idGen.NewID()
		if err := order.MarkComplete(txID, now); err != nil {
			return NewHTTPError(http.StatusConflict, CodeConflict, "order already complete")
		}
		if err := r.Orders().Complete(ctx, order); err != nil {
			if errors.Is(err, model.ErrOrderAlreadyComplete) {
				return NewHTTPError(http.StatusConflict, CodeConflict, "order already complete")
			}
			u.log.Error("complete order", zap.Int64("order_id", order.ID), zap.Error(err))
			return errServer()
		}

		if address != nil {
			address.OrderID = order.ID
			address.CustomerID = &customer.ID
			address.DateAdded = now
			if _, err := r.ShippingAddresses().Create(ctx, *address); err != nil {
				u.log.Error("create shipping address", zap.Int64("order_id", order.ID), zap.Error(err))
				return errServer()
			}
			u.log.Info("shipping address created", zap.Int64("order_id", order.ID))
		}

		u.log.Info("order completed",
			zap.Int64("order_id", order.ID),
			zap.Int64("customer_id", customer.ID),
			zap.Bool("guest", customer.IsGuest()),
			zap.String("transaction_id", txID),
			zap.String("total", cart.Total.StringFixed(2)),
		)
		out = CompleteOrderOutput{Message: "Payment complete!", TransactionID: txID}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return CompleteOrderOutput{}, err
		}
		u.log.Error("complete order transaction", zap.Error(err))
		return CompleteOrderOutput{}, errServer()
	}
	return out, nil
}

// 顧客・OPEN注文・合計を揃える。ゲストはcookieの中身を注文明細に書き込む
func (u *OrderUsecase) loadCheckout(ctx context.Context, r repo.TxRepos, id Identity, cookie string, in CompleteOrderInput) (model.Customer, model.Order, resolvedCart, error) {
	if id.IsAnonymous() {
		customer, order, err := u.guest.ResolveGuestCustomer(ctx, r, in.Email, in.Name)
		if err != nil {
			return model.Customer{}, model.Order{}, resolvedCart{}, err
		}

		cart, err := resolveCart(ctx, r.Products(), parseCookieCart(cookie, u.log), u.log)
		if err != nil {
			u.log.Error("resolve guest cart", zap.Error(err))
			return model.Customer{}, model.Order{}, resolvedCart{}, errServer()
		}

		items := make([]model.OrderItem, 0, len(cart.Lines))
		for _, l := range cart.Lines {
			productID := l.Product.ID
			items = append(items, model.OrderItem{
				ProductID: &productID,
				Quantity:  l.Quantity,
				Size:      l.Size,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			u.log.Error("create guest order items", zap.Int64("order_id", order.ID), zap.Error(err))
			return model.Customer{}, model.Order{}, resolvedCart{}, errServer()
		}
		return customer, order, cart, nil
	}

	customer, err := findCustomer(ctx, r.Customers(), id)
	if errors.Is(err, errNoCustomer) {
		u.log.Error("customer not found for checkout", zap.Int64("user_id", id.UserID))
		return model.Customer{}, model.Order{}, resolvedCart{}, errNotFound("customer not found")
	}
	if err != nil {
		u.log.Error("find customer", zap.Int64("user_id", id.UserID), zap.Error(err))
		return model.Customer{}, model.Order{}, resolvedCart{}, errServer()
	}

	order, err := r.Orders().GetOrCreateOpenByCustomerID(ctx, customer.ID)
	if err != nil {
		u.log.Error("get or create open order", zap.Int64("customer_id", customer.ID), zap.Error(err))
		return model.Customer{}, model.Order{}, resolvedCart{}, errServer()
	}

	// 数量0以下の行は確定前に消す
	if err := r.OrderItems().DeleteEmpty(ctx, order.ID); err != nil {
		u.log.Error("delete empty order items", zap.Int64("order_id", order.ID), zap.Error(err))
		return model.Customer{}, model.Order{}, resolvedCart{}, errServer()
	}

	entries, err := orderEntries(ctx, r.OrderItems(), order.ID)
	if err != nil {
		u.log.Error("list order items", zap.Int64("order_id", order.ID), zap.Error(err))
		return model.Customer{}, model.Order{}, resolvedCart{}, errServer()
	}
	cart, err := resolveCart(ctx, r.Products(), entries, u.log)
	if err != nil {
		u.log.Error("resolve cart", zap.Int64("order_id", order.ID), zap.Error(err))
		return model.Customer{}, model.Order{}, resolvedCart{}, errServer()
	}
	return customer, order, cart, nil
}

// 物理商品があるときの配送先。無い場合は設定次第でエラー
func (u *OrderUsecase) shippingAddress(in *ShippingInput) (*model.ShippingAddress, error) {
	if in == nil {
		if u.requireShipping {
			return nil, errMissingField("shipping")
		}
		return nil, nil
	}

	a := &model.ShippingAddress{
		Address: strings.TrimSpace(in.Address),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		Zipcode: strings.TrimSpace(in.Zipcode),
		Country: strings.TrimSpace(in.Country),
	}
	if a.Country == "" {
		a.Country = model.DefaultCountry
	}

	if u.requireShipping {
		switch {
		case a.Address == "":
			return nil, errMissingField("shipping.address")
		case a.City == "":
			return nil, errMissingField("shipping.city")
		case a.Zipcode == "":
			return nil, errMissingField("shipping.zipcode")
		}
	}
	return a, nil
}

type OrderLineOutput struct {
	ProductID *int64      `json:"product_id"`
	Name      string      `json:"name"`
	Price     string      `json:"price"`
	Quantity  int64       `json:"quantity"`
	Size      *model.Size `json:"size"`
	LineTotal string      `json:"line_total"`
}

type ShippingAddressOutput struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`

	// 表示用に1行にまとめたもの
	FullAddress string `json:"full_address"`
}

type OrderOutput struct {
	ID            int64                  `json:"id"`
	State         model.OrderState       `json:"state"`
	TransactionID *string                `json:"transaction_id"`
	DateOrdered   time.Time              `json:"date_ordered"`
	CompletedAt   *time.Time             `json:"completed_at"`
	Total         string                 `json:"total"`
	ItemCount     int64                  `json:"item_count"`
	Items         []OrderLineOutput      `json:"items"`
	Shipping      *ShippingAddressOutput `json:"shipping"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 確定済みの注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, id Identity, page int, limit int) (OrderListOutput, error) {
	if id.IsAnonymous() {
		return OrderListOutput{}, errUnauthorized("unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, errValidation("invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, errValidation("invalid limit")
	}

	customer, err := u.myCustomer(ctx, id)
	if err != nil {
		return OrderListOutput{}, err
	}

	orders, total, err := u.repos.Orders().ListCompletedByCustomerID(ctx, customer.ID, page, limit)
	if err != nil {
		u.log.Error("list orders", zap.Int64("customer_id", customer.ID), zap.Error(err))
		return OrderListOutput{}, errServer()
	}

	items := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out, err := u.toOrderOutput(ctx, o)
		if err != nil {
			return OrderListOutput{}, err
		}
		items = append(items, out)
	}
	return OrderListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 自分の注文だけ。他人の注文は存在しない扱い
func (u *OrderUsecase) GetMyOrder(ctx context.Context, id Identity, orderID int64) (OrderOutput, error) {
	if id.IsAnonymous() {
		return OrderOutput{}, errUnauthorized("unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid order id")
	}

	customer, err := u.myCustomer(ctx, id)
	if err != nil {
		return OrderOutput{}, err
	}

	o, err := u.repos.Orders().FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, errNotFound("order not found")
	}
	if err != nil {
		u.log.Error("find order", zap.Int64("order_id", orderID), zap.Error(err))
		return OrderOutput{}, errServer()
	}
	// OPENはカートなので履歴には出さない
	if o.CustomerID == nil || *o.CustomerID != customer.ID || o.IsOpen() {
		return OrderOutput{}, errNotFound("order not found")
	}

	return u.toOrderOutput(ctx, o)
}

func (u *OrderUsecase) myCustomer(ctx context.Context, id Identity) (model.Customer, error) {
	customer, err := findCustomer(ctx, u.repos.Customers(), id)
	if errors.Is(err, errNoCustomer) {
		return model.Customer{}, errNotFound("customer not found")
	}
	if err != nil {
		u.log.Error("find customer", zap.Int64("user_id", id.UserID), zap.Error(err))
		return model.Customer{}, errServer()
	}
	return customer, nil
}

// 履歴は削除済み商品も引き当てる
func (u *OrderUsecase) toOrderOutput(ctx context.Context, o model.Order) (OrderOutput, error) {
	items, err := u.repos.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		u.log.Error("list order items", zap.Int64("order_id", o.ID), zap.Error(err))
		return OrderOutput{}, errServer()
	}

	out := OrderOutput{
		ID:            o.ID,
		State:         o.State,
		TransactionID: o.TransactionID,
		DateOrdered:   o.DateOrdered,
		CompletedAt:   o.CompletedAt,
		Items:         make([]OrderLineOutput, 0, len(items)),
	}

	total := decimal.Zero
	for _, it := range items {
		line := OrderLineOutput{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size, Price: "0.00", LineTotal: "0.00"}
		if it.ProductID != nil {
			p, err := u.repos.Products().FindByIDUnscoped(ctx, *it.ProductID)
			if err != nil && err != repo.ErrNotFound {
				u.log.Error("find product", zap.Int64("product_id", *it.ProductID), zap.Error(err))
				return OrderOutput{}, errServer()
			}
			if err == nil {
				lineTotal := p.Price.Mul(decimal.NewFromInt(it.Quantity))
				line.Name = p.Name
				line.Price = p.Price.StringFixed(2)
				line.LineTotal = lineTotal.StringFixed(2)
				total = total.Add(lineTotal)
			}
		}
		out.ItemCount += it.Quantity
		out.Items = append(out.Items, line)
	}
	out.Total = total.StringFixed(2)

	addr, err := u.repos.ShippingAddresses().FindByOrderID(ctx, o.ID)
	if err != nil && err != repo.ErrNotFound {
		u.log.Error("find shipping address", zap.Int64("order_id", o.ID), zap.Error(err))
		return OrderOutput{}, errServer()
	}
	if err == nil {
		out.Shipping = &ShippingAddressOutput{
			Address:     addr.Address,
			City:        addr.City,
			State:       addr.State,
			Zipcode:     addr.Zipcode,
			Country:     addr.Country,
			FullAddress: addr.FullAddress(),
		}
	}
	return out, nil
}
