package handler

import (
	"net/http"
	"strconv"

	"klikpos/internal/apierror"
	"klikpos/internal/dto"
	"klikpos/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionsHandler struct{ svc service.SessionService }

func NewSessionsHandler(svc service.SessionService) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

// Open godoc
// @Summary Open a cash session for the caller
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening balances"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sessions/open [post]
func (h *SessionsHandler) Open(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// IsOpen godoc
// @Summary Report whether the caller has an open session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.IsOpenResponse
// @Router /v1/sessions/is-open [get]
func (h *SessionsHandler) IsOpen(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	open, err := h.svc.IsOpen(c.Request.Context(), a.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.IsOpenResponse{IsOpen: open})
}

// Close godoc
// @Summary Close a session and reconcile its payment modes
// @Description Day scope sums every submitted invoice of the profile on the closing day and needs supervisor or admin.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body dto.CloseSessionRequest true "Closing counts"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/sessions/{id}/close [post]
func (h *SessionsHandler) Close(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	scope := service.ReconciliationScope(req.Scope)
	if scope == service.ScopeDay && !a.Privileged() {
		c.JSON(http.StatusForbidden, apierror.New("day reconciliation requires supervisor or admin"))
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), a, id, scope, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active godoc
// @Summary Get the caller's open session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sessions/active [get]
func (h *SessionsHandler) Active(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetActive(c.Request.Context(), a.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Get the reconciliation report of a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sessions/{id}/report [get]
func (h *SessionsHandler) Report(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary List closed sessions, newest first
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {array} dto.SessionResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/sessions/history [get]
func (h *SessionsHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, total, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": total, "page": page, "limit": limit})
}
