package service

import (
	"context"

	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/store"
)

// CatalogService exposes the read side of the catalog.
type CatalogService interface {
	ListActive(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (model.Product, error)
}

type catalogService struct{ db *gorm.DB }

func NewCatalogService(db *gorm.DB) CatalogService { return &catalogService{db: db} }

func (s *catalogService) ListActive(ctx context.Context) ([]model.Product, error) {
	return store.NewCatalog(s.db).ListActive(ctx)
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (model.Product, error) {
	p, err := store.NewCatalog(s.db).GetProduct(ctx, id)
	return p, translate(err, "product not found")
}
