package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
)

type Users struct{ db *gorm.DB }

func NewUsers(db *gorm.DB) *Users { return &Users{db: db} }

func (s *Users) Get(ctx context.Context, id uint) (model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	return u, err
}

func (s *Users) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	return u, err
}

func (s *Users) Create(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// Delete removes the user row only. Owned rows must be removed first; see
// service.UserService.Delete.
func (s *Users) Delete(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.User{}, id)
	return res.RowsAffected > 0, res.Error
}
