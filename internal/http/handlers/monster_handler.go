// Monster HTTP handlers.
//
// This file exposes REST endpoints for the monster lifecycle:
//   - POST   /monster     (create)
//   - GET    /monster     (fetch the live monster)
//   - GET    /graveyard   (list tomb entries, paginated, ETag support)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
	"github.com/tbourn/go-nemesis-backend/internal/repo"
	"github.com/tbourn/go-nemesis-backend/internal/services"
	"github.com/tbourn/go-nemesis-backend/internal/sysutil"
	"github.com/tbourn/go-nemesis-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// MonsterService defines monster lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MonsterService interface {
	// Create spawns a live monster at full health for ownerID.
	Create(ctx context.Context, ownerID, name, imageRef string, generated bool) (*domain.Monster, error)
	// Get returns the owner's live monster.
	Get(ctx context.Context, ownerID string) (*domain.Monster, error)
	// Graveyard returns a page of tomb entries and the total count.
	Graveyard(ctx context.Context, ownerID string, page, pageSize int) ([]domain.TombEntry, int64, error)
}

// ActionService defines the engine operations behind every feature surface.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ActionService interface {
	// SubmitGradedAction grades a free-text submission and applies it.
	SubmitGradedAction(ctx context.Context, ownerID, kind, description string) (*services.ActionResult, error)
	// SubmitFixedOutcomeAction applies a win/lose result for a fixed kind.
	SubmitFixedOutcomeAction(ctx context.Context, ownerID, kind, label string, won bool) (*services.ActionResult, error)
	// StartTimedSession opens a budgeted session if allowance remains.
	StartTimedSession(ctx context.Context, ownerID, kind string) (*services.SessionStart, *services.ActionResult, error)
	// CompleteTimedSession closes a session and consumes its minutes.
	CompleteTimedSession(ctx context.Context, ownerID, sessionID string, minutes float64) (*services.ActionResult, error)
	// CheckRecovery runs the once-per-day recovery check.
	CheckRecovery(ctx context.Context, ownerID string) (*services.RecoveryOutcome, error)
}

// EconomyService defines the points/tier read operations.
type EconomyService interface {
	// Get returns the owner's economy record and derived tier.
	Get(ctx context.Context, ownerID string) (*domain.Economy, services.Tier, error)
}

// StreakService defines the streak read operations.
type StreakService interface {
	// List returns all streak records for the owner.
	List(ctx context.Context, ownerID string) ([]domain.Streak, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for monsters, actions, economy, and streaks.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	monsterSvc MonsterService
	actionSvc  ActionService
	economySvc EconomyService
	streakSvc  StreakService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(monsterSvc MonsterService, actionSvc ActionService, economySvc EconomyService, streakSvc StreakService) *Handlers {
	return &Handlers{monsterSvc: monsterSvc, actionSvc: actionSvc, economySvc: economySvc, streakSvc: streakSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		return sysutil.FirstNonEmpty(strings.TrimSpace(c.GetHeader("X-User-ID")), "demo-user")
	}
	return "demo-user"
}

//
// DTOs
//

// CreateMonsterRequest is the JSON payload for creating a monster.
type CreateMonsterRequest struct {
	// Name is the monster's display name (1–255 chars).
	Name string `json:"name" binding:"required,min=1,max=255" example:"Gravemaw"`
	// ImageRef optionally points at the monster's portrait.
	ImageRef string `json:"image_ref" example:"https://cdn.example.com/monsters/gravemaw.png"`
	// Generated marks the portrait as AI-generated.
	Generated bool `json:"generated"`
}

// MonsterResponse is the public shape of a live monster. Health is rounded
// to one decimal for display; the stored value keeps full precision.
type MonsterResponse struct {
	ID               string  `json:"id"`
	OwnerID          string  `json:"owner_id"`
	Name             string  `json:"name"`
	ImageRef         string  `json:"image_ref,omitempty"`
	Health           float64 `json:"health"`
	Generated        bool    `json:"generated"`
	LastRecoveryDate *string `json:"last_recovery_date,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// GraveyardResponse wraps a page of tomb entries and pagination information.
type GraveyardResponse struct {
	Tombs      []domain.TombEntry `json:"tombs"`
	Pagination Pagination         `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// displayHealth rounds health to one decimal for API responses.
func displayHealth(h float64) float64 {
	return math.Round(h*10) / 10
}

func monsterResponse(m *domain.Monster) MonsterResponse {
	return MonsterResponse{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		Name:             m.Name,
		ImageRef:         m.ImageRef,
		Health:           displayHealth(m.Health),
		Generated:        m.Generated,
		LastRecoveryDate: m.LastRecoveryDate,
	}
}

//
// Handlers
//

// CreateMonster godoc
// @ID          createMonster
// @Summary     Create a monster
// @Description Spawns a live monster at full health for the current user. Fails with 409 if one already lives.
// @Tags        Monster
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateMonsterRequest  true  "Create monster payload"
//
// @Success     201  {object}  handlers.MonsterResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Monster already exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /monster [post]
func (h *Handlers) CreateMonster(c *gin.Context) {
	var req CreateMonsterRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1–255 chars)")
		return
	}

	m, err := h.monsterSvc.Create(c.Request.Context(), userID(c), strings.TrimSpace(req.Name), req.ImageRef, req.Generated)
	if err != nil {
		if errors.Is(err, services.ErrMonsterExists) {
			fail(c, http.StatusConflict, ErrCodeMonsterExists, "a living monster already exists for this owner")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, monsterResponse(m))
}

// GetMonster godoc
// @ID          getMonster
// @Summary     Fetch the live monster
// @Description Returns the current user's live monster with display health rounded to one decimal.
// @Tags        Monster
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.MonsterResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No living monster"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /monster [get]
func (h *Handlers) GetMonster(c *gin.Context) {
	m, err := h.monsterSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, services.ErrMonsterNotFound) {
			fail(c, http.StatusNotFound, ErrCodeMonsterNotFound, "no living monster; create one first")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, monsterResponse(m))
}

// ListGraveyard godoc
// @ID          listGraveyard
// @Summary     List tomb entries (paginated)
// @Description Returns a page of the user's defeated monsters, most recent death first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Monster
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.GraveyardResponse
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /graveyard [get]
func (h *Handlers) ListGraveyard(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.monsterSvc.(*services.MonsterService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.TombStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"tombs:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.monsterSvc.Graveyard(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.TombEntry{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := GraveyardResponse{
		Tombs: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}
