package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/marketplace/internal/service"
)

type Cart struct {
	S service.CartService
}

type addItemReq struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

func (h *Cart) Get(c *gin.Context) {
	v, err := h.S.Get(c.Request.Context(), principal(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartDTO(v))
}

func (h *Cart) Add(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad json")
		return
	}
	line, err := h.S.Add(c.Request.Context(), principal(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartLineDTO(line))
}

func (h *Cart) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "bad json")
		return
	}
	line, err := h.S.Update(c.Request.Context(), principal(c).UserID, id, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartLineDTO(line))
}

func (h *Cart) Remove(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.S.Remove(c.Request.Context(), principal(c).UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Cart) Clear(c *gin.Context) {
	if err := h.S.Clear(c.Request.Context(), principal(c).UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
