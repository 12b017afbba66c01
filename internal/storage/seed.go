package storage

import (
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
)

// SeedAdmin makes sure an admin account exists for email. The admin logs in
// through the normal credential path like any other user.
func SeedAdmin(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Println("admin seed skipped: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := model.User{
		Name:         "System Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("admin account created: %s (id %d)", email, admin.ID)
	return nil
}

// SeedDemo creates a demo seller with a category and a few products. Running
// it twice is harmless.
func SeedDemo(db *gorm.DB) (model.User, error) {
	var seller model.User
	err := db.Transaction(func(tx *gorm.DB) error {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		seller = model.User{Name: "Demo Seller", Email: "seller@example.com", PasswordHash: string(hash), Role: model.RoleSeller, Active: true}
		if err := tx.Where(model.User{Email: seller.Email}).FirstOrCreate(&seller).Error; err != nil {
			return err
		}

		cat := model.Category{Name: "Apparel", Slug: "apparel"}
		if err := tx.Where(model.Category{Slug: cat.Slug}).FirstOrCreate(&cat).Error; err != nil {
			return err
		}

		data := []model.Product{
			{Name: "Blue T-Shirt", Price: decimal.RequireFromString("19.99"), Stock: 50, ImageURL: "https://picsum.photos/seed/blue/600/400"},
			{Name: "Red Hoodie", Price: decimal.RequireFromString("45.99"), Stock: 20, ImageURL: "https://picsum.photos/seed/red/600/400"},
			{Name: "Sneakers", Price: decimal.RequireFromString("69.99"), Stock: 10, ImageURL: "https://picsum.photos/seed/shoes/600/400"},
		}
		for _, p := range data {
			p.Active = true
			p.SellerID = seller.ID
			p.CategoryID = &cat.ID
			var found model.Product
			err := tx.Where("seller_id = ? AND name = ?", seller.ID, p.Name).First(&found).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return seller, err
}
