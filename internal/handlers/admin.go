package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/service"
)

// Seeder loads demo data and returns the demo seller.
type Seeder func() (model.User, error)

type Admin struct {
	Seed   Seeder
	Orders service.OrderService
	Users  service.UserService
}

func (h *Admin) SeedDemo(c *gin.Context) {
	seller, err := h.Seed()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "seller": toUserDTO(seller)})
}

func (h *Admin) DeleteOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Admin) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if id == principal(c).UserID {
		badRequest(c, "cannot delete yourself")
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
