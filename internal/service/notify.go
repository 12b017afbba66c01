package service

import (
	"context"
	"sync"
	"time"

	"example.com/marketplace/internal/events"
	"example.com/marketplace/internal/logging"
	"example.com/marketplace/internal/model"
)

const notifyTimeout = 10 * time.Second

// Notifier delivers post-commit events and emails in the background, so a
// slow broker or mail relay never holds back the response for a committed
// order. A nil *Notifier drops everything.
type Notifier struct {
	events  events.Publisher
	email   EmailService
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(pub events.Publisher, email EmailService) *Notifier {
	if pub == nil {
		pub = events.Nop{}
	}
	if email == nil {
		email = nopEmail{}
	}
	return &Notifier{events: pub, email: email, timeout: notifyTimeout}
}

func (n *Notifier) OrderPlaced(ctx context.Context, buyer model.User, o model.Order) {
	n.run(ctx, func(ctx context.Context) {
		ev := events.New(events.OrderPlaced, o.ID, map[string]any{
			"user_id":        o.UserID,
			"total":          o.Total.StringFixed(2),
			"status":         o.Status,
			"payment_method": o.PaymentMethod,
			"items":          len(o.Items),
		})
		if err := n.events.Publish(ctx, ev); err != nil {
			logging.Log(logging.Fields{OrderID: o.ID, Step: "publish_order_placed", Status: "failed", Message: err.Error()})
		}

		subject, body := orderConfirmation(buyer, o)
		if err := n.email.Send(buyer.Email, subject, body); err != nil {
			logging.Log(logging.Fields{OrderID: o.ID, Step: "order_email", Status: "failed", Message: err.Error()})
		}
	})
}

func (n *Notifier) ItemStatusChanged(ctx context.Context, sellerID uint, from model.ItemStatus, it model.OrderItem) {
	n.run(ctx, func(ctx context.Context) {
		ev := events.New(events.ItemStatusChanged, it.OrderID, map[string]any{
			"item_id":   it.ID,
			"seller_id": sellerID,
			"from":      from,
			"to":        it.Status,
		})
		if err := n.events.Publish(ctx, ev); err != nil {
			logging.Log(logging.Fields{OrderID: it.OrderID, ItemID: it.ID, Step: "publish_status_changed", Status: "failed", Message: err.Error()})
		}
	})
}

// Wait blocks until every queued notification has finished or timed out.
// Call it before closing the publisher.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

// run detaches fn from the request's cancellation and bounds it by the
// notifier timeout.
func (n *Notifier) run(ctx context.Context, fn func(context.Context)) {
	if n == nil {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()
		fn(ctx)
	}()
}
