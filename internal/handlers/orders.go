package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/marketplace/internal/metrics"
	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/service"
)

const headerIdempotencyKey = "Idempotency-Key"

type Orders struct {
	Checkout service.CheckoutService
	Orders   service.OrderService
	Metrics  *metrics.Metrics
}

type checkoutReq struct {
	Shipping      *model.Shipping `json:"shipping"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes"`
}

// PlaceOrder checks out the caller's cart. The body is optional; an empty
// body means cash on delivery with no shipping snapshot.
func (h *Orders) PlaceOrder(c *gin.Context) {
	var req checkoutReq
	if c.Request.ContentLength != 0 {
		// chunked requests report an unknown length and may still be empty
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "bad json")
			return
		}
	}
	r, err := h.Checkout.Checkout(c.Request.Context(), principal(c).UserID, service.CheckoutInput{
		Shipping:       req.Shipping,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(headerIdempotencyKey),
	})
	if err != nil {
		h.Metrics.CheckoutOutcome(checkoutOutcome(err))
		writeError(c, err)
		return
	}
	if r.Replayed {
		h.Metrics.CheckoutOutcome("replayed")
		c.JSON(http.StatusOK, toOrderDTO(r.Order))
		return
	}
	h.Metrics.CheckoutOutcome("placed")
	c.JSON(http.StatusCreated, toOrderDTO(r.Order))
}

func checkoutOutcome(err error) string {
	var stock *service.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}

func (h *Orders) List(c *gin.Context) {
	list, err := h.Orders.ListOrdersForUser(c.Request.Context(), principal(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderDTO(o))
	}
	c.JSON(http.StatusOK, out)
}

// Get returns an order to its buyer or to an admin.
func (h *Orders) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	o, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	p := principal(c)
	if o.UserID != p.UserID && p.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(o))
}
