package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/service"
)

// Money is rendered as a fixed two-decimal string.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

type itemDTO struct {
	ItemID      uint             `json:"itemId"`
	OrderID     uint             `json:"orderId"`
	ProductID   uint             `json:"productId"`
	ProductName string           `json:"productName"`
	Quantity    int              `json:"quantity"`
	UnitPrice   string           `json:"unitPrice"`
	LineTotal   string           `json:"lineTotal"`
	Status      model.ItemStatus `json:"status"`
}

func toItemDTO(it model.OrderItem) itemDTO {
	return itemDTO{
		ItemID:      it.ID,
		OrderID:     it.OrderID,
		ProductID:   it.ProductID,
		ProductName: it.Name,
		Quantity:    it.Quantity,
		UnitPrice:   money(it.UnitPrice),
		LineTotal:   money(it.LineTotal()),
		Status:      it.Status,
	}
}

func toItemDTOs(items []model.OrderItem) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toItemDTO(it))
	}
	return out
}

type orderDTO struct {
	OrderID       uint              `json:"orderId"`
	Status        model.OrderStatus `json:"status"`
	Total         string            `json:"total"`
	CreatedAt     time.Time         `json:"createdAt"`
	PaymentMethod string            `json:"paymentMethod"`
	Notes         string            `json:"notes,omitempty"`
	Shipping      model.Shipping    `json:"shipping"`
	Items         []itemDTO         `json:"items"`
}

func toOrderDTO(o model.Order) orderDTO {
	return orderDTO{
		OrderID:       o.ID,
		Status:        o.Status,
		Total:         money(o.Total),
		CreatedAt:     o.CreatedAt,
		PaymentMethod: o.PaymentMethod,
		Notes:         o.Notes,
		Shipping:      o.Shipping,
		Items:         toItemDTOs(o.Items),
	}
}

type productDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Brand       string `json:"brand,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	SellerID    uint   `json:"sellerId"`
}

func toProductDTO(p model.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		ImageURL:    p.ImageURL,
		Price:       money(p.Price),
		Stock:       p.Stock,
		SellerID:    p.SellerID,
	}
}

type cartLineDTO struct {
	ItemID    uint   `json:"itemId"`
	ProductID uint   `json:"productId"`
	Name      string `json:"productName"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

func toCartLineDTO(l service.CartLine) cartLineDTO {
	return cartLineDTO{
		ItemID:    l.Item.ID,
		ProductID: l.Item.ProductID,
		Name:      l.Product.Name,
		UnitPrice: money(l.Product.Price),
		Quantity:  l.Item.Quantity,
		LineTotal: money(l.LineTotal()),
	}
}

type cartDTO struct {
	Items      []cartLineDTO `json:"items"`
	Subtotal   string        `json:"subtotal"`
	TotalItems int           `json:"totalItems"`
}

func toCartDTO(v service.CartView) cartDTO {
	out := cartDTO{Items: make([]cartLineDTO, 0, len(v.Lines)), Subtotal: money(v.Subtotal), TotalItems: v.TotalItems}
	for _, l := range v.Lines {
		out.Items = append(out.Items, toCartLineDTO(l))
	}
	return out
}

type userDTO struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toUserDTO(u model.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
