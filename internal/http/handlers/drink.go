package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pintlog-backend/internal/http/response"
	"github.com/yungbote/pintlog-backend/internal/services"
)

type DrinkHandler struct {
	drinkService services.DrinkService
}

func NewDrinkHandler(drinkService services.DrinkService) *DrinkHandler {
	return &DrinkHandler{drinkService: drinkService}
}

// POST /api/drinks
// body: { "volume_ml": 500 } or { "volume_liters": 0.5 }, optional
// "alcohol_percentage", "type", "purchase_id", "occurred_at".
func (h *DrinkHandler) LogDrink(c *gin.Context) {
	var req services.LogDrinkInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	drink, err := h.drinkService.LogDrink(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"drink": drink})
}

// GET /api/drinks?user_id=&start=&end=
func (h *DrinkHandler) ListDrinks(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	start, err := queryTime(c, "start")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	end, err := queryTime(c, "end")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	drinks, err := h.drinkService.ListDrinks(c.Request.Context(), services.DrinkFilter{UserID: userID, Start: start, End: end})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"drinks": drinks})
}

// DELETE /api/drinks/:id
func (h *DrinkHandler) DeleteDrink(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	err = h.drinkService.DeleteDrink(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrRestoreFailed):
		// The drink is gone; only the lot counter is stale.
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "restore_failed", services.ErrRestoreFailed)
	case err != nil:
		response.RespondAPIError(c, err)
	default:
		response.RespondNoContent(c)
	}
}
