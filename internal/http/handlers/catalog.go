package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pintlog-backend/internal/http/response"
	"github.com/yungbote/pintlog-backend/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/beer-types
func (h *CatalogHandler) ListBeerTypes(c *gin.Context) {
	cat, err := h.catalog.Catalog(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, cat)
}
