package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pintlog-backend/internal/bac"
	"github.com/yungbote/pintlog-backend/internal/http/response"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/services"
)

type StatsHandler struct {
	stats services.StatsService
}

func NewStatsHandler(stats services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GET /api/stats/bac?user_id=&range=|start=&end=&interval=
func (h *StatsHandler) BACSeries(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	window, err := queryWindow(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	interval, err := queryInt(c, "interval")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.stats.BACSeries(c.Request.Context(), services.BACRequest{UserID: userID, Window: window, IntervalMinutes: interval})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/stats/bac/compare?user_id=all|<id>[,<id>]&range=&join=timestamp|label&tz=
func (h *StatsHandler) BACComparison(c *gin.Context) {
	ids, err := queryUserIDs(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	window, err := queryWindow(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	interval, err := queryInt(c, "interval")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	loc, err := queryLocation(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	join := bac.JoinMode(strings.ToLower(strings.TrimSpace(c.Query("join"))))
	switch join {
	case "", bac.JoinByTimestamp, bac.JoinByLabel:
	default:
		response.RespondAPIError(c, apierr.Validation(fmt.Errorf("join must be %q or %q", bac.JoinByTimestamp, bac.JoinByLabel)))
		return
	}
	res, err := h.stats.BACComparison(c.Request.Context(), services.CompareRequest{
		UserIDs:         ids,
		Window:          window,
		IntervalMinutes: interval,
		JoinBy:          join,
		Location:        loc,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/stats/daily?range=|start=&end=&user_id=&tz=
func (h *StatsHandler) DailyConsumption(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	window, err := queryWindow(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	loc, err := queryLocation(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.stats.DailyConsumption(c.Request.Context(), services.ConsumptionRequest{UserID: userID, Window: window, Location: loc})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/stats/cumulative?user_id=
func (h *StatsHandler) CumulativeConsumption(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.stats.CumulativeConsumption(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/stats/leaderboard?range=|start=&end=
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	window, err := queryWindow(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.stats.Leaderboard(c.Request.Context(), window)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
