package postgres

import (
	"context"
	"errors"
	"fmt"

	"agroMarket/business/orders"
	"agroMarket/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// WithinTransaction runs fn inside one database transaction. Returning an error from fn
// rolls back everything fn wrote.
func (r *OrdersRepository) WithinTransaction(ctx context.Context, fn func(tx orders.CheckoutStore) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&checkoutTx{db: tx})
	})
}

type checkoutTx struct {
	db *gorm.DB
}

// LockProduct reads the product row and holds it until the transaction ends.
func (t *checkoutTx) LockProduct(ctx context.Context, id uint64) (domain.Product, error) {
	var product domain.Product

	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to lock product: %w", err)
	}

	return product, nil
}

// DecrementStock takes quantity off the product only when enough stock remains.
// It reports false when the guard rejected the update.
func (t *checkoutTx) DecrementStock(ctx context.Context, id uint64, quantity int) (bool, error) {
	result := t.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (t *checkoutTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := t.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrdersRepository) FindByCustomer(ctx context.Context, customerID uint) ([]domain.CustomerOrder, error) {
	var rows []domain.CustomerOrder

	err := r.DB.WithContext(ctx).
		Table("orders o").
		Select(`o.id, o.quantity, o.total_price, o.order_date, o.status,
			COALESCE(p.name, '') AS product_name, p.price AS product_price`).
		Joins("LEFT JOIN products p ON p.id = o.product_id").
		Where("o.customer_id = ?", customerID).
		Order("o.order_date DESC, o.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}

	return rows, nil
}

func (r *OrdersRepository) FindByFarmer(ctx context.Context, farmerID uint) ([]domain.FarmerOrder, error) {
	var rows []domain.FarmerOrder

	err := r.DB.WithContext(ctx).
		Table("orders o").
		Select(`o.id, COALESCE(u.username, '') AS customer_username, COALESCE(u.email, '') AS customer_email,
			COALESCE(u.whatsapp, '') AS customer_whatsapp, COALESCE(p.name, '') AS product_name,
			o.quantity, o.total_price, COALESCE(o.address, '') AS address, COALESCE(o.note, '') AS note,
			o.order_date, o.status`).
		Joins("LEFT JOIN users u ON u.id = o.customer_id").
		Joins("LEFT JOIN products p ON p.id = o.product_id").
		Where("o.farmer_id = ?", farmerID).
		Order("o.order_date DESC, o.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list farmer orders: %w", err)
	}

	return rows, nil
}

func (r *OrdersRepository) FindAll(ctx context.Context) ([]domain.AdminOrder, error) {
	var rows []domain.AdminOrder

	err := r.DB.WithContext(ctx).
		Table("orders o").
		Select(`o.id, COALESCE(p.name, '') AS product_name, COALESCE(u.username, '') AS customer_username,
			o.quantity, o.order_date, o.status`).
		Joins("LEFT JOIN products p ON p.id = o.product_id").
		Joins("LEFT JOIN users u ON u.id = o.customer_id").
		Order("o.order_date DESC, o.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return rows, nil
}

// MarkDelivered flips the order to delivered only when farmerID is the order's farmer.
// It reports whether a row changed.
func (r *OrdersRepository) MarkDelivered(ctx context.Context, orderID uint64, farmerID uint) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND farmer_id = ?", orderID, farmerID).
		Update("status", domain.OrderStatusDelivered)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update order status: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *OrdersRepository) FindOwnedByFarmer(ctx context.Context, orderID uint64, farmerID uint) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Where("id = ? AND farmer_id = ?", orderID, farmerID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}
