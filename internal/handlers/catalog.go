package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/marketplace/internal/service"
)

type Catalog struct {
	S service.CatalogService
}

func (h *Catalog) List(c *gin.Context) {
	ps, err := h.S.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]productDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductDTO(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Catalog) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.S.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductDTO(p))
}
