// Action HTTP handlers.
//
// This file exposes the engine operations behind every feature surface:
//   - POST /actions/graded         (free-text, AI-graded submissions)
//   - POST /actions/outcome        (fixed win/lose kinds: quizzes, riddles)
//   - POST /sessions               (open a budgeted timed session)
//   - POST /sessions/{id}/complete (close a session, consume its minutes)
//   - POST /recovery/check         (once-per-day monster recovery)
//
// Cadence denials are not errors: they come back as 200 with status=denied
// so clients can render the remaining allowance.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-nemesis-backend/internal/services"
)

//
// DTOs
//

// GradedActionRequest is the JSON payload for a free-text graded submission.
type GradedActionRequest struct {
	// Kind names the action kind (e.g. "food", "exercise").
	Kind string `json:"kind" binding:"required,min=1,max=64" example:"food"`
	// Description is the free text sent to the grader.
	Description string `json:"description" binding:"required,min=1,max=2000" example:"grilled salmon with a side salad"`
}

// OutcomeActionRequest is the JSON payload for a fixed win/lose action.
type OutcomeActionRequest struct {
	// Kind names the action kind (e.g. "quiz", "riddle").
	Kind string `json:"kind" binding:"required,min=1,max=64" example:"quiz"`
	// Label optionally describes the concrete challenge for tomb causes.
	Label string `json:"label" binding:"max=255" example:"nutrition quiz #12"`
	// Won reports whether the user beat the challenge.
	Won *bool `json:"won" binding:"required" example:"true"`
}

// StartSessionRequest is the JSON payload for opening a timed session.
type StartSessionRequest struct {
	// Kind names the budgeted action kind (e.g. "mindfulness").
	Kind string `json:"kind" binding:"required,min=1,max=64" example:"mindfulness"`
}

// CompleteSessionRequest is the JSON payload for closing a timed session.
type CompleteSessionRequest struct {
	// Minutes is the session duration to charge against today's budget.
	Minutes float64 `json:"minutes" binding:"required,gt=0" example:"2"`
}

// RecoveryResponse is the result of a nightly recovery check.
type RecoveryResponse struct {
	// Granted is the recovery amount applied; 0 when nothing happened.
	Granted int `json:"granted"`
	// NewHealth is the (possibly unchanged) health after the check.
	NewHealth float64 `json:"new_health"`
}

//
// Helpers
//

// roundResult rounds the health fields of a result for display.
func roundResult(r *services.ActionResult) *services.ActionResult {
	if r != nil {
		r.NewHealth = displayHealth(r.NewHealth)
	}
	return r
}

// failAction maps engine errors onto the HTTP error envelope.
func failAction(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMonsterNotFound):
		fail(c, http.StatusNotFound, ErrCodeMonsterNotFound, "no living monster; create one first")
	case errors.Is(err, services.ErrUnknownKind):
		fail(c, http.StatusBadRequest, ErrCodeUnknownKind, "unknown action kind")
	case errors.Is(err, services.ErrEmptyDescription):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "description required")
	case errors.Is(err, services.ErrInvalidAmount):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "minutes must be positive")
	case errors.Is(err, services.ErrNotBudgeted):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind does not use timed sessions")
	case errors.Is(err, services.ErrGradingFailed):
		fail(c, http.StatusBadGateway, ErrCodeGradingFailed, "grading is unavailable; nothing was recorded")
	case errors.Is(err, services.ErrSessionNotFound):
		fail(c, http.StatusNotFound, ErrCodeSessionNotFound, "session not found")
	case errors.Is(err, services.ErrSessionCompleted):
		fail(c, http.StatusConflict, ErrCodeSessionCompleted, "session already completed")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// SubmitGradedAction godoc
// @ID          submitGradedAction
// @Summary     Submit a graded action
// @Description Grades the description (cache-first), consumes today's allowance, and applies the score to the monster.
// @Tags        Actions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.GradedActionRequest  true  "Graded action payload"
//
// @Success     200  {object}  services.ActionResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "No living monster"
// @Failure     502  {object}  handlers.ErrorResponse  "Grading unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /actions/graded [post]
func (h *Handlers) SubmitGradedAction(c *gin.Context) {
	var req GradedActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind and description required")
		return
	}

	res, err := h.actionSvc.SubmitGradedAction(c.Request.Context(), userID(c), req.Kind, req.Description)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusOK, roundResult(res))
}

// SubmitOutcomeAction godoc
// @ID          submitOutcomeAction
// @Summary     Submit a win/lose action
// @Description Applies a fixed delta for the kind: a win harms the monster, a loss strengthens it and credits nothing.
// @Tags        Actions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.OutcomeActionRequest  true  "Outcome payload"
//
// @Success     200  {object}  services.ActionResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "No living monster"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /actions/outcome [post]
func (h *Handlers) SubmitOutcomeAction(c *gin.Context) {
	var req OutcomeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Won == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind and won required")
		return
	}

	res, err := h.actionSvc.SubmitFixedOutcomeAction(c.Request.Context(), userID(c), req.Kind, strings.TrimSpace(req.Label), *req.Won)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusOK, roundResult(res))
}

// StartSession godoc
// @ID          startSession
// @Summary     Open a timed session
// @Description Opens a budgeted session when today's minute budget is not exhausted. The budget is only consumed on completion.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.StartSessionRequest  true  "Start session payload"
//
// @Success     201  {object}  services.SessionStart
// @Success     200  {object}  services.ActionResult "status=denied when the budget is empty"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "No living monster"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions [post]
func (h *Handlers) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind required")
		return
	}

	start, denied, err := h.actionSvc.StartTimedSession(c.Request.Context(), userID(c), req.Kind)
	if err != nil {
		failAction(c, err)
		return
	}
	if denied != nil {
		ok(c, http.StatusOK, roundResult(denied))
		return
	}
	ok(c, http.StatusCreated, start)
}

// CompleteSession godoc
// @ID          completeSession
// @Summary     Complete a timed session
// @Description Closes the session, consumes its minutes from today's budget, and applies per-minute damage to the monster.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Session ID (UUID)"      format(uuid)
// @Param       body       body    handlers.CompleteSessionRequest  true  "Completion payload"
//
// @Success     200  {object}  services.ActionResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Session already completed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/complete [post]
func (h *Handlers) CompleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := uuid.Parse(sessionID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return
	}

	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Minutes <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "minutes must be positive")
		return
	}

	res, err := h.actionSvc.CompleteTimedSession(c.Request.Context(), userID(c), sessionID, req.Minutes)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusOK, roundResult(res))
}

// CheckRecovery godoc
// @ID          checkRecovery
// @Summary     Run the nightly recovery check
// @Description Grants the monster a small recovery at most once per calendar day. Safe to call repeatedly; extra calls no-op.
// @Tags        Actions
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.RecoveryResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No living monster"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recovery/check [post]
func (h *Handlers) CheckRecovery(c *gin.Context) {
	out, err := h.actionSvc.CheckRecovery(c.Request.Context(), userID(c))
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusOK, RecoveryResponse{
		Granted:   out.Granted,
		NewHealth: displayHealth(out.NewHealth),
	})
}
