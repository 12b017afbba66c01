package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/store"
)

type FulfillmentService interface {
	AdvanceItemStatus(ctx context.Context, sellerID, itemID uint, newStatus string) (model.OrderItem, error)
	PeekItem(ctx context.Context, sellerID, itemID uint) (model.OrderItem, error)
}

type fulfillmentService struct {
	db     *gorm.DB
	notify *Notifier
}

func NewFulfillmentService(db *gorm.DB, n *Notifier) FulfillmentService {
	return &fulfillmentService{db: db, notify: n}
}

const itemNotOwned = "order item not found or not owned by seller"

// AdvanceItemStatus moves an order line forward along
// PLACED -> PROCESSING -> SHIPPED -> DELIVERED. Repeating the current status
// is accepted; moving backwards is not. Ownership is checked before the
// requested status is looked at, so another seller's item is always NotFound.
func (s *fulfillmentService) AdvanceItemStatus(ctx context.Context, sellerID, itemID uint, newStatus string) (model.OrderItem, error) {
	var (
		item model.OrderItem
		from model.ItemStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := store.NewOrders(tx)
		var err error
		item, err = orders.FindSellerItem(ctx, sellerID, itemID, true)
		if err != nil {
			return translate(err, itemNotOwned)
		}

		next, err := model.ParseItemStatus(newStatus)
		switch {
		case errors.Is(err, model.ErrStatusRequired):
			return invalidArg("newStatus is required")
		case errors.Is(err, model.ErrUnknownStatus):
			return invalidArg("invalid status: %s", strings.ToUpper(strings.TrimSpace(newStatus)))
		}

		from, err = currentStatus(item)
		if err != nil {
			return err
		}
		if !from.CanAdvanceTo(next) {
			return invalidState("invalid status transition: cannot change from %s to %s", from, next)
		}
		return orders.UpdateItemStatus(ctx, &item, next)
	})
	if err != nil {
		return model.OrderItem{}, err
	}

	if from != item.Status {
		s.notify.ItemStatusChanged(ctx, sellerID, from, item)
	}
	return item, nil
}

// PeekItem is the ownership-scoped lookup of AdvanceItemStatus without any
// status change.
func (s *fulfillmentService) PeekItem(ctx context.Context, sellerID, itemID uint) (model.OrderItem, error) {
	item, err := store.NewOrders(s.db).FindSellerItem(ctx, sellerID, itemID, false)
	if err != nil {
		return model.OrderItem{}, translate(err, itemNotOwned)
	}
	return item, nil
}

// currentStatus treats an unset status as PLACED.
func currentStatus(it model.OrderItem) (model.ItemStatus, error) {
	raw := strings.ToUpper(strings.TrimSpace(string(it.Status)))
	if raw == "" {
		return model.ItemPlaced, nil
	}
	s := model.ItemStatus(raw)
	if !s.Valid() {
		return "", invalidState("current item status is invalid: %s", raw)
	}
	return s, nil
}
