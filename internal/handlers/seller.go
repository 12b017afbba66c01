package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/marketplace/internal/metrics"
	"example.com/marketplace/internal/service"
)

// Seller serves the fulfillment side: a seller sees and advances only the
// order lines of their own products.
type Seller struct {
	Orders      service.OrderService
	Fulfillment service.FulfillmentService
	Metrics     *metrics.Metrics
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Seller) ListItems(c *gin.Context) {
	items, err := h.Orders.ListOrderItemsForSeller(c.Request.Context(), principal(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemDTOs(items))
}

func (h *Seller) GetItem(c *gin.Context) {
	id, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	it, err := h.Fulfillment.PeekItem(c.Request.Context(), principal(c).UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemDTO(it))
}

func (h *Seller) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad json")
		return
	}
	it, err := h.Fulfillment.AdvanceItemStatus(c.Request.Context(), principal(c).UserID, id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Metrics.Transition(string(it.Status))
	c.JSON(http.StatusOK, toItemDTO(it))
}
