package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 1行あたりの数量上限。cookie はクライアントが書き換えられる
const MaxLineQuantity int64 = 9999

// カートの1行（商品はまだ引き当てていない）
type CartEntry struct {
	ProductID int64
	Quantity  int64
	Size      *model.Size
}

// カートの中身の取り出し元。cookie と OPEN注文の2種類
type CartSource interface {
	Entries(ctx context.Context) ([]CartEntry, error)
}

// cookie の cart: {"<productId>": {"quantity": n, "size": "M"}}
type cookieCartSource struct {
	raw string
	log *zap.Logger
}

func NewCookieCartSource(raw string, log *zap.Logger) CartSource {
	return &cookieCartSource{raw: raw, log: log}
}

type cookieLine struct {
	Quantity json.Number `json:"quantity"`
	Size     string      `json:"size"`
}

func (s *cookieCartSource) Entries(_ context.Context) ([]CartEntry, error) {
	return parseCookieCart(s.raw, s.log), nil
}

// 壊れたcookieは空カート扱い。壊れた行だけ読み飛ばす
func parseCookieCart(raw string, log *zap.Logger) []CartEntry {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []CartEntry{}
	}

	var lines map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		log.Warn("invalid cart cookie", zap.Error(err))
		return []CartEntry{}
	}

	// "1" と "01" のように同じ商品IDになるキーは1行にまとめる
	byID := make(map[int64]*CartEntry, len(lines))
	for key, body := range lines {
		productID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || productID <= 0 {
			log.Warn("skip cart cookie entry: invalid product id", zap.String("key", key))
			continue
		}

		var line cookieLine
		if err := json.Unmarshal(body, &line); err != nil {
			log.Warn("skip cart cookie entry", zap.Int64("product_id", productID), zap.Error(err))
			continue
		}
		qty, err := line.Quantity.Int64()
		if err != nil {
			log.Warn("skip cart cookie entry: invalid quantity", zap.Int64("product_id", productID), zap.String("quantity", line.Quantity.String()))
			continue
		}
		if qty <= 0 {
			continue
		}

		var size *model.Size
		if line.Size != "" {
			if sz, ok := model.ParseSize(line.Size); ok {
				size = &sz
			}
		}

		entry, ok := byID[productID]
		if !ok {
			byID[productID] = &CartEntry{ProductID: productID, Quantity: capQuantity(qty), Size: size}
			continue
		}
		log.Warn("merge duplicate cart cookie entry", zap.Int64("product_id", productID), zap.String("key", key))
		entry.Quantity = capQuantity(entry.Quantity + capQuantity(qty))
		if entry.Size == nil {
			entry.Size = size
		}
	}

	entries := make([]CartEntry, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, *e)
	}

	// mapの順序は不定なので商品ID順に並べる
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProductID < entries[j].ProductID })
	return entries
}

// 1行あたりの数量上限
func capQuantity(qty int64) int64 {
	if qty > MaxLineQuantity {
		return MaxLineQuantity
	}
	return qty
}

// ログイン顧客の OPEN注文の明細
type orderCartSource struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	customerID int64
}

func NewOrderCartSource(orders repo.OrderRepository, orderItems repo.OrderItemRepository, customerID int64) CartSource {
	return &orderCartSource{orders: orders, orderItems: orderItems, customerID: customerID}
}

func (s *orderCartSource) Entries(ctx context.Context) ([]CartEntry, error) {
	order, err := s.orders.GetOrCreateOpenByCustomerID(ctx, s.customerID)
	if err != nil {
		return nil, err
	}
	return orderEntries(ctx, s.orderItems, order.ID)
}

func orderEntries(ctx context.Context, orderItems repo.OrderItemRepository, orderID int64) ([]CartEntry, error) {
	items, err := orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entries := make([]CartEntry, 0, len(items))
	for _, it := range items {
		// 商品が削除された明細
		if it.ProductID == nil {
			continue
		}
		entries = append(entries, CartEntry{ProductID: *it.ProductID, Quantity: it.Quantity, Size: it.Size})
	}
	return entries, nil
}

// 商品を引き当て済みの行
type resolvedLine struct {
	Product   model.Product
	Quantity  int64
	Size      *model.Size
	LineTotal decimal.Decimal
}

type resolvedCart struct {
	Lines            []resolvedLine
	Total            decimal.Decimal
	ItemCount        int64
	RequiresShipping bool
}

// 行を商品に引き当てて合計を出す。
// 数量0以下と、存在しない商品の行は落とす
func resolveCart(ctx context.Context, products repo.ProductRepository, entries []CartEntry, log *zap.Logger) (resolvedCart, error) {
	out := resolvedCart{Lines: []resolvedLine{}, Total: decimal.Zero}

	for _, e := range entries {
		if e.Quantity <= 0 {
			continue
		}

		p, err := products.FindByID(ctx, e.ProductID)
		if err == repo.ErrNotFound {
			log.Warn("product not found for cart entry", zap.Int64("product_id", e.ProductID))
			continue
		}
		if err != nil {
			return resolvedCart{}, err
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(e.Quantity))
		out.Lines = append(out.Lines, resolvedLine{
			Product:   p,
			Quantity:  e.Quantity,
			Size:      e.Size,
			LineTotal: lineTotal,
		})
		out.Total = out.Total.Add(lineTotal)
		out.ItemCount += e.Quantity
		if !p.Digital {
			out.RequiresShipping = true
		}
	}

	return out, nil
}
