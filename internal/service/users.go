package service

import (
	"context"

	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/store"
)

type UserService interface {
	Get(ctx context.Context, id uint) (model.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) UserService { return &userService{db: db} }

func (s *userService) Get(ctx context.Context, id uint) (model.User, error) {
	u, err := store.NewUsers(s.db).Get(ctx, id)
	return u, translate(err, "user not found")
}

// Delete removes the user with the orders and cart lines they own. Products
// the user sells are left in place; order lines of other buyers keep
// referring to them.
func (s *userService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := store.NewUsers(tx)
		if _, err := users.Get(ctx, id); err != nil {
			return translate(err, "user not found")
		}
		if err := store.NewOrders(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := store.NewCarts(tx).DeleteAllCartItems(ctx, id); err != nil {
			return err
		}
		_, err := users.Delete(ctx, id)
		return err
	})
}
