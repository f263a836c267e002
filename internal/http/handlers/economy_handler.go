// Economy and streak HTTP handlers.
//
//   - GET /economy   (points + derived tier)
//   - GET /streaks   (per-kind streak records)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
	"github.com/tbourn/go-nemesis-backend/internal/services"
)

// EconomyResponse is the points balance with its derived tier.
type EconomyResponse struct {
	Points int           `json:"points"`
	Tier   services.Tier `json:"tier"`
}

// StreaksResponse wraps the owner's streak records.
type StreaksResponse struct {
	Streaks []domain.Streak `json:"streaks"`
}

// GetEconomy godoc
// @ID          getEconomy
// @Summary     Fetch the points balance
// @Description Returns the user's accumulated points and the tier derived from them. Users with no record see zero points.
// @Tags        Economy
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.EconomyResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /economy [get]
func (h *Handlers) GetEconomy(c *gin.Context) {
	eco, tier, err := h.economySvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, EconomyResponse{Points: eco.Points, Tier: tier})
}

// ListStreaks godoc
// @ID          listStreaks
// @Summary     List streaks
// @Description Returns the user's streak record for every action kind they have completed.
// @Tags        Economy
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.StreaksResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /streaks [get]
func (h *Handlers) ListStreaks(c *gin.Context) {
	items, err := h.streakSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Streak{}
	}
	ok(c, http.StatusOK, StreaksResponse{Streaks: items})
}
