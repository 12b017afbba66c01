// Package storagetest provides a migrated in-memory database and fixture
// helpers for tests.
package storagetest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/storage"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { storage.Close(db) })
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{Name: email, Email: email, PasswordHash: "x", Role: role, Active: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateProduct(t testing.TB, db *gorm.DB, sellerID uint, name, price string, stock int) model.Product {
	t.Helper()
	p := model.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Active:   true,
		SellerID: sellerID,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func AddToCart(t testing.TB, db *gorm.DB, userID, productID uint, qty int) model.CartItem {
	t.Helper()
	it := model.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	if err := db.Create(&it).Error; err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	return it
}

func Stock(t testing.TB, db *gorm.DB, productID uint) int {
	t.Helper()
	var p model.Product
	if err := db.First(&p, productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.Stock
}

func Count(t testing.TB, db *gorm.DB, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
