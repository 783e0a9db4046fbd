package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/application/signoff"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/interfaces/http/middleware"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
)

// SignoffHandler exposes the task-signoff lifecycle over HTTP.
type SignoffHandler struct {
	service signoff.Service
	logger  logging.Logger
}

// NewSignoffHandler creates the signoff handler.
func NewSignoffHandler(service signoff.Service, log logging.Logger) *SignoffHandler {
	return &SignoffHandler{service: service, logger: log}
}

// updateDueDateRequest is the body of PUT /tasks/:taskID/due-date.
type updateDueDateRequest struct {
	DueDate string `json:"due_date" binding:"required"`
}

// completeRequest is the body of POST /tasks/:taskID/complete.
type completeRequest struct {
	CompletionDate string `json:"completion_date"`
	Notes          string `json:"notes"`
}

// Seed handles POST /plans/:planID/signoffs — create the initial pending
// signoff for every recurring task of the plan.
func (h *SignoffHandler) Seed(c *gin.Context) {
	planID, ok := pathID(c, h.logger, "planID")
	if !ok {
		return
	}

	result, err := h.service.CreateInitialSignoffs(c.Request.Context(), &signoff.SeedInput{
		PlanID: planID,
		UserID: middleware.UserID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondJSON(c, http.StatusCreated, result)
}

// UpdateDueDate handles PUT /tasks/:taskID/due-date.
func (h *SignoffHandler) UpdateDueDate(c *gin.Context) {
	taskID, ok := pathID(c, h.logger, "taskID")
	if !ok {
		return
	}

	var req updateDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errors.InvalidParam("due_date is required"))
		return
	}

	updated, err := h.service.UpdateDueDate(c.Request.Context(), &signoff.UpdateDueDateInput{
		TaskID:     taskID,
		NewDueDate: req.DueDate,
		UserID:     middleware.UserID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondJSON(c, http.StatusOK, updated)
}

// Complete handles POST /tasks/:taskID/complete — close the open signoff
// and schedule the next occurrence for recurring tasks.
func (h *SignoffHandler) Complete(c *gin.Context) {
	taskID, ok := pathID(c, h.logger, "taskID")
	if !ok {
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, h.logger, errors.InvalidParam("malformed request body"))
		return
	}

	result, err := h.service.AdvanceOnCompletion(c.Request.Context(), &signoff.CompleteInput{
		TaskID:         taskID,
		CompletionDate: req.CompletionDate,
		Notes:          req.Notes,
		UserID:         middleware.UserID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondJSON(c, http.StatusOK, result)
}

// ListPending handles GET /signoffs/pending.
func (h *SignoffHandler) ListPending(c *gin.Context) {
	views, err := h.service.ListPendingSignoffs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"signoffs": views, "count": len(views)})
}
