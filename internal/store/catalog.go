package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/marketplace/internal/model"
)

// ErrStockConflict is returned by DecrementStock when the row no longer holds
// enough stock for the requested quantity.
var ErrStockConflict = errors.New("stock changed concurrently")

type Catalog struct{ db *gorm.DB }

func NewCatalog(db *gorm.DB) *Catalog { return &Catalog{db: db} }

func (c *Catalog) GetProduct(ctx context.Context, id uint) (model.Product, error) {
	var p model.Product
	err := c.db.WithContext(ctx).First(&p, id).Error
	return p, err
}

// GetProductForUpdate reads the product and holds a row lock on it until the
// surrounding transaction ends.
func (c *Catalog) GetProductForUpdate(ctx context.Context, id uint) (model.Product, error) {
	var p model.Product
	err := c.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return p, err
}

func (c *Catalog) SaveProduct(ctx context.Context, p *model.Product) error {
	return c.db.WithContext(ctx).Save(p).Error
}

// DecrementStock subtracts qty only if the row still has at least qty units.
func (c *Catalog) DecrementStock(ctx context.Context, id uint, qty int) error {
	res := c.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}

func (c *Catalog) ListActive(ctx context.Context) ([]model.Product, error) {
	var ps []model.Product
	err := c.db.WithContext(ctx).Where("active = ?", true).Order("id asc").Find(&ps).Error
	return ps, err
}

// ProductsByID returns the products with the given ids keyed by id. Missing
// ids are simply absent from the map.
func (c *Catalog) ProductsByID(ctx context.Context, ids []uint) (map[uint]model.Product, error) {
	out := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ps []model.Product
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}
