package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/marketplace/internal/model"
)

type Orders struct{ db *gorm.DB }

func NewOrders(db *gorm.DB) *Orders { return &Orders{db: db} }

// Create inserts the order together with its items.
func (s *Orders) Create(ctx context.Context, o *model.Order) error {
	return s.db.WithContext(ctx).Create(o).Error
}

func (s *Orders) Get(ctx context.Context, id uint) (model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Preload("Items", orderItemsByID).First(&o, id).Error
	return o, err
}

func (s *Orders) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Preload("Items", orderItemsByID).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error
	return o, err
}

func (s *Orders) ListByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var out []model.Order
	err := s.db.WithContext(ctx).Preload("Items", orderItemsByID).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// ListItemsForSeller returns every order line whose product belongs to the
// seller, across all orders.
func (s *Orders) ListItemsForSeller(ctx context.Context, sellerID uint) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := s.db.WithContext(ctx).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Order("order_items.id desc").
		Find(&items).Error
	return items, err
}

// FindSellerItem resolves an order line only when its product belongs to the
// seller. With forUpdate the row stays locked until the transaction ends.
func (s *Orders) FindSellerItem(ctx context.Context, sellerID, itemID uint, forUpdate bool) (model.OrderItem, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.id = ? AND products.seller_id = ?", itemID, sellerID)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "order_items"}})
	}
	var it model.OrderItem
	err := q.First(&it).Error
	return it, err
}

func (s *Orders) UpdateItemStatus(ctx context.Context, it *model.OrderItem, status model.ItemStatus) error {
	if err := s.db.WithContext(ctx).Model(it).Update("status", status).Error; err != nil {
		return err
	}
	it.Status = status
	return nil
}

// Delete removes the order and the items it owns.
func (s *Orders) Delete(ctx context.Context, id uint) (bool, error) {
	db := s.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return false, err
	}
	res := db.Delete(&model.Order{}, id)
	return res.RowsAffected > 0, res.Error
}

// DeleteByUser removes all orders of a user together with their items.
func (s *Orders) DeleteByUser(ctx context.Context, userID uint) error {
	db := s.db.WithContext(ctx)
	owned := db.Model(&model.Order{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("order_id IN (?)", owned).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&model.Order{}).Error
}

func orderItemsByID(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }
