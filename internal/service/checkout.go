package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"example.com/marketplace/internal/logging"
	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/store"
)

const defaultPaymentMethod = "COD"

type CheckoutInput struct {
	Shipping       *model.Shipping
	PaymentMethod  string
	Notes          string
	IdempotencyKey string
}

type Receipt struct {
	Order    model.Order
	Replayed bool // an earlier checkout with the same idempotency key was returned
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID uint, in CheckoutInput) (Receipt, error)
}

type checkoutService struct {
	db     *gorm.DB
	notify *Notifier
}

// NewCheckoutService takes a nil notifier to skip post-commit notifications.
func NewCheckoutService(db *gorm.DB, n *Notifier) CheckoutService {
	return &checkoutService{db: db, notify: n}
}

// Checkout turns the user's cart into an order. Stock checks, stock
// decrements, order creation and cart clearing share one transaction: either
// all of them happen or none does.
func (s *checkoutService) Checkout(ctx context.Context, userID uint, in CheckoutInput) (Receipt, error) {
	if in.Shipping != nil {
		if err := validateShipping(*in.Shipping); err != nil {
			return Receipt{}, err
		}
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if o, err := store.NewOrders(s.db).FindByIdempotencyKey(ctx, userID, key); err == nil {
			return Receipt{Order: o, Replayed: true}, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Receipt{}, err
		}
	}

	start := time.Now()
	var (
		order model.Order
		buyer model.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		buyer, err = store.NewUsers(tx).Get(ctx, userID)
		if err != nil {
			return translate(err, "user not found")
		}
		order, err = placeOrder(ctx, tx, userID, in, key)
		return err
	})
	if err != nil {
		if key != "" && isUniqueViolation(err) {
			// a concurrent request with the same key won the insert
			if o, ferr := store.NewOrders(s.db).FindByIdempotencyKey(ctx, userID, key); ferr == nil {
				return Receipt{Order: o, Replayed: true}, nil
			}
		}
		return Receipt{}, err
	}

	logging.Log(logging.Fields{
		OrderID:    order.ID,
		UserID:     userID,
		Step:       "checkout",
		Status:     string(order.Status),
		DurationMS: time.Since(start).Milliseconds(),
	})
	s.notify.OrderPlaced(ctx, buyer, order)
	return Receipt{Order: order}, nil
}

func placeOrder(ctx context.Context, tx *gorm.DB, userID uint, in CheckoutInput, key string) (model.Order, error) {
	carts := store.NewCarts(tx)
	catalog := store.NewCatalog(tx)

	items, err := carts.ListCartItems(ctx, userID)
	if err != nil {
		return model.Order{}, err
	}
	if len(items) == 0 {
		return model.Order{}, invalidState("cart empty")
	}

	// one cart may hold several lines for the same product; stock is checked
	// against their sum
	requested := make(map[uint]int, len(items))
	var ids []uint
	for _, ci := range items {
		if _, ok := requested[ci.ProductID]; !ok {
			ids = append(ids, ci.ProductID)
		}
		requested[ci.ProductID] += ci.Quantity
	}
	// lock rows in a fixed order so concurrent checkouts cannot deadlock
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make(map[uint]model.Product, len(ids))
	var short []Shortfall
	for _, id := range ids {
		p, err := catalog.GetProductForUpdate(ctx, id)
		if err != nil {
			return model.Order{}, translate(err, "product not found")
		}
		products[id] = p
		if p.Stock < requested[id] {
			short = append(short, Shortfall{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: requested[id]})
		}
	}
	if len(short) > 0 {
		return model.Order{}, &InsufficientStockError{Shortfalls: short}
	}

	for _, id := range ids {
		if err := catalog.DecrementStock(ctx, id, requested[id]); err != nil {
			if errors.Is(err, store.ErrStockConflict) {
				return model.Order{}, shortfallFor(ctx, catalog, products[id], requested[id])
			}
			return model.Order{}, err
		}
	}

	total := decimal.Zero
	lines := make([]model.OrderItem, 0, len(items))
	for _, ci := range items {
		p := products[ci.ProductID]
		line := model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  ci.Quantity,
			UnitPrice: p.Price,
			Status:    model.ItemPlaced,
		}
		total = total.Add(line.LineTotal())
		lines = append(lines, line)
	}

	method, status := paymentTerms(in.PaymentMethod)
	order := model.Order{
		UserID:        userID,
		Total:         total,
		Status:        status,
		PaymentMethod: method,
		Notes:         strings.TrimSpace(in.Notes),
		Items:         lines,
	}
	if in.Shipping != nil {
		order.Shipping = trimShipping(*in.Shipping)
	}
	if key != "" {
		order.IdempotencyKey = &key
	}
	if err := store.NewOrders(tx).Create(ctx, &order); err != nil {
		return model.Order{}, err
	}
	if err := carts.DeleteAllCartItems(ctx, userID); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// shortfallFor reports a line whose stock moved between the locked read and
// the conditional decrement.
func shortfallFor(ctx context.Context, catalog *store.Catalog, p model.Product, requested int) error {
	available := 0
	if cur, err := catalog.GetProduct(ctx, p.ID); err == nil {
		available = cur.Stock
	}
	return &InsufficientStockError{Shortfalls: []Shortfall{{
		ProductID: p.ID, ProductName: p.Name, Available: available, Requested: requested,
	}}}
}

// paymentTerms normalizes the method label. Cash on delivery stays PENDING;
// any other method is treated as already paid.
func paymentTerms(raw string) (string, model.OrderStatus) {
	method := strings.ToUpper(strings.TrimSpace(raw))
	if method == "" {
		method = defaultPaymentMethod
	}
	if method == defaultPaymentMethod {
		return method, model.OrderPending
	}
	return method, model.OrderPaid
}

func validateShipping(s model.Shipping) error {
	required := []struct{ name, value string }{
		{"name", s.Name},
		{"line1", s.Line1},
		{"city", s.City},
		{"postalCode", s.PostalCode},
		{"country", s.Country},
		{"phone", s.Phone},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return invalidArg("shipping is missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func trimShipping(s model.Shipping) model.Shipping {
	return model.Shipping{
		Name:       strings.TrimSpace(s.Name),
		Line1:      strings.TrimSpace(s.Line1),
		Line2:      strings.TrimSpace(s.Line2),
		City:       strings.TrimSpace(s.City),
		State:      strings.TrimSpace(s.State),
		PostalCode: strings.TrimSpace(s.PostalCode),
		Country:    strings.TrimSpace(s.Country),
		Phone:      strings.TrimSpace(s.Phone),
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
