package store

import (
	"context"

	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
)

type Carts struct{ db *gorm.DB }

func NewCarts(db *gorm.DB) *Carts { return &Carts{db: db} }

func (s *Carts) ListCartItems(ctx context.Context, userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&items).Error
	return items, err
}

func (s *Carts) DeleteAllCartItems(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}

// FindItem looks up a cart line scoped to its owner.
func (s *Carts) FindItem(ctx context.Context, userID, itemID uint) (model.CartItem, error) {
	var it model.CartItem
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).First(&it).Error
	return it, err
}

func (s *Carts) FindByProduct(ctx context.Context, userID, productID uint) (model.CartItem, error) {
	var it model.CartItem
	err := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&it).Error
	return it, err
}

func (s *Carts) SaveItem(ctx context.Context, it *model.CartItem) error {
	return s.db.WithContext(ctx).Save(it).Error
}

func (s *Carts) DeleteItem(ctx context.Context, userID, itemID uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&model.CartItem{})
	return res.RowsAffected > 0, res.Error
}
