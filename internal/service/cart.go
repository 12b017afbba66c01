package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/store"
)

type CartLine struct {
	Item    model.CartItem
	Product model.Product
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

type CartView struct {
	Lines      []CartLine
	Subtotal   decimal.Decimal
	TotalItems int
}

type CartService interface {
	Add(ctx context.Context, userID, productID uint, qty int) (CartLine, error)
	Update(ctx context.Context, userID, itemID uint, qty int) (CartLine, error)
	Remove(ctx context.Context, userID, itemID uint) error
	Get(ctx context.Context, userID uint) (CartView, error)
	Clear(ctx context.Context, userID uint) error
}

type cartService struct{ db *gorm.DB }

func NewCartService(db *gorm.DB) CartService { return &cartService{db: db} }

// Add merges into the existing line for the product. A zero quantity means one.
func (s *cartService) Add(ctx context.Context, userID, productID uint, qty int) (CartLine, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return CartLine{}, invalidArg("quantity must be >= 1")
	}

	var line CartLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := store.NewUsers(tx).Get(ctx, userID); err != nil {
			return translate(err, "user not found")
		}
		p, err := store.NewCatalog(tx).GetProduct(ctx, productID)
		if err != nil {
			return translate(err, "product not found")
		}
		if !p.Active {
			return invalidState("product %q is not available", p.Name)
		}

		carts := store.NewCarts(tx)
		it, err := carts.FindByProduct(ctx, userID, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			it = model.CartItem{UserID: userID, ProductID: productID}
		} else if err != nil {
			return err
		}
		it.Quantity += qty
		if err := carts.SaveItem(ctx, &it); err != nil {
			return err
		}
		line = CartLine{Item: it, Product: p}
		return nil
	})
	return line, err
}

func (s *cartService) Update(ctx context.Context, userID, itemID uint, qty int) (CartLine, error) {
	if qty < 1 {
		return CartLine{}, invalidArg("quantity must be >= 1")
	}
	carts := store.NewCarts(s.db)
	it, err := carts.FindItem(ctx, userID, itemID)
	if err != nil {
		return CartLine{}, translate(err, "cart item not found")
	}
	p, err := store.NewCatalog(s.db).GetProduct(ctx, it.ProductID)
	if err != nil {
		return CartLine{}, translate(err, "product not found")
	}
	it.Quantity = qty
	if err := carts.SaveItem(ctx, &it); err != nil {
		return CartLine{}, err
	}
	return CartLine{Item: it, Product: p}, nil
}

func (s *cartService) Remove(ctx context.Context, userID, itemID uint) error {
	ok, err := store.NewCarts(s.db).DeleteItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("cart item not found")
	}
	return nil
}

func (s *cartService) Get(ctx context.Context, userID uint) (CartView, error) {
	items, err := store.NewCarts(s.db).ListCartItems(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := store.NewCatalog(s.db).ProductsByID(ctx, ids)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Lines: make([]CartLine, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		line := CartLine{Item: it, Product: products[it.ProductID]}
		view.Lines = append(view.Lines, line)
		view.Subtotal = view.Subtotal.Add(line.LineTotal())
		view.TotalItems += it.Quantity
	}
	return view, nil
}

func (s *cartService) Clear(ctx context.Context, userID uint) error {
	return store.NewCarts(s.db).DeleteAllCartItems(ctx, userID)
}

// translate turns a missing-row error into a NotFound with msg and passes
// anything else through.
func translate(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(msg)
	}
	return err
}
