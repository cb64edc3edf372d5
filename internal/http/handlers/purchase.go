package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pintlog-backend/internal/http/response"
	"github.com/yungbote/pintlog-backend/internal/services"
)

type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// POST /api/purchases
func (h *PurchaseHandler) LogPurchase(c *gin.Context) {
	var req services.LogPurchaseInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	lot, err := h.purchaseService.LogPurchase(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"purchase": lot})
}

// GET /api/purchases?available=true lists every lot with units left;
// ?history=true[&limit=n] the group's newest lots with spend totals;
// without either, the caller's own lots.
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	ctx := c.Request.Context()
	if history, _ := strconv.ParseBool(c.Query("history")); history {
		limit, err := queryInt(c, "limit")
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		res, err := h.purchaseService.ListHistory(ctx, limit)
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		response.RespondOK(c, res)
		return
	}

	available, _ := strconv.ParseBool(c.Query("available"))
	var (
		lots any
		err  error
	)
	if available {
		lots, err = h.purchaseService.ListAvailable(ctx)
	} else {
		lots, err = h.purchaseService.ListMine(ctx)
	}
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"purchases": lots})
}

// DELETE /api/purchases/:id
func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.purchaseService.DeletePurchase(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}
