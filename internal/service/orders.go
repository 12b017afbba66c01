package service

import (
	"context"

	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/store"
)

type OrderService interface {
	GetOrder(ctx context.Context, orderID uint) (model.Order, error)
	ListOrdersForUser(ctx context.Context, userID uint) ([]model.Order, error)
	ListOrderItemsForSeller(ctx context.Context, sellerID uint) ([]model.OrderItem, error)
	DeleteOrder(ctx context.Context, orderID uint) error
}

type orderService struct{ db *gorm.DB }

func NewOrderService(db *gorm.DB) OrderService { return &orderService{db: db} }

func (s *orderService) GetOrder(ctx context.Context, orderID uint) (model.Order, error) {
	o, err := store.NewOrders(s.db).Get(ctx, orderID)
	if err != nil {
		return model.Order{}, translate(err, "order not found")
	}
	return o, nil
}

func (s *orderService) ListOrdersForUser(ctx context.Context, userID uint) ([]model.Order, error) {
	if _, err := store.NewUsers(s.db).Get(ctx, userID); err != nil {
		return nil, translate(err, "user not found")
	}
	return store.NewOrders(s.db).ListByUser(ctx, userID)
}

func (s *orderService) ListOrderItemsForSeller(ctx context.Context, sellerID uint) ([]model.OrderItem, error) {
	return store.NewOrders(s.db).ListItemsForSeller(ctx, sellerID)
}

// DeleteOrder removes the order and every item it owns.
func (s *orderService) DeleteOrder(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := store.NewOrders(tx).Delete(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("order not found")
		}
		return nil
	})
}
