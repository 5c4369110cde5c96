package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders            repo.OrderRepository
	orderItems        repo.OrderItemRepository
	customers         repo.CustomerRepository
	products          repo.ProductRepository
	shippingAddresses repo.ShippingAddressRepository
	users             repo.UserRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Customers() repo.CustomerRepository   { return r.customers }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) ShippingAddresses() repo.ShippingAddressRepository {
	return r.shippingAddresses
}
func (r *txReposGorm) Users() repo.UserRepository { return r.users }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// Tx外で使う場合も同じ組み立て
func NewRepos(db *gorm.DB) repo.TxRepos {
	return &txReposGorm{
		orders:            NewOrderGormRepository(db),
		orderItems:        NewOrderItemGormRepository(db),
		customers:         NewCustomerGormRepository(db),
		products:          NewProductGormRepository(db),
		shippingAddresses: NewShippingAddressGormRepository(db),
		users:             NewUserGormRepository(db),
	}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(NewRepos(tx))
	})
}
