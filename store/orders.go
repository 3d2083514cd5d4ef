package store

import (
	"context"
	"errors"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

// ErrStatusChanged means the order left the expected status before the update.
var ErrStatusChanged = errors.New("order status changed concurrently")

// OrderStore persists orders, their lines and the status audit trail.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create inserts the order header and then its lines in one transaction.
// order.Items are written after the header so their OrderID is known.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	items := order.Items
	order.Items = nil
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Items", "StatusHistory").Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Omit("MenuItem").Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	order.Items = items
	return err
}

// FindByID loads an order with its lines, line menu items (including
// deleted ones), owner and status history.
func (s *OrderStore) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.preload(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the orders of one user, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.preload(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	return orders, err
}

// ListAll returns every order, newest first.
func (s *OrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.preload(ctx).Order("created_at desc").Order("id desc").Find(&orders).Error
	return orders, err
}

// UpdateStatus writes the new status together with an audit row. The write
// only applies while the order is still in status from.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID uint, from, to models.OrderStatus, actorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrStatusChanged
		}
		return tx.Create(&models.OrderStatusChange{
			OrderID:    orderID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actorID,
		}).Error
	})
}

func (s *OrderStore) preload(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("User")
}
