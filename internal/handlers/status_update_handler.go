package handlers

import (
	"pawrescue/internal/middleware"
	"pawrescue/internal/models"
	"pawrescue/internal/services"
	"pawrescue/internal/utils"
	"pawrescue/internal/validators"

	"github.com/gin-gonic/gin"
)

type StatusUpdateHandler struct {
	updateService services.StatusUpdateService
}

func NewStatusUpdateHandler(updateService services.StatusUpdateService) *StatusUpdateHandler {
	return &StatusUpdateHandler{updateService: updateService}
}

// SubmitUpdate handles POST /cases/:id/updates
func (h *StatusUpdateHandler) SubmitUpdate(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	authorID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req validators.SubmitStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateSubmitStatusUpdateRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	update := &models.StatusUpdate{
		CaseID:      caseID,
		AuthorID:    authorID,
		Condition:   models.UpdateCondition(req.Condition),
		Description: req.Description,
		PhotoURLs:   req.PhotoURLs,
		NewStatus:   models.CaseStatus(req.NewStatus),
		Treatment:   req.Treatment,
		NextSteps:   req.NextSteps,
	}
	if req.Location != nil {
		loc := locationFromRequest(*req.Location)
		update.Location = &loc
	}

	created, updatedCase, err := h.updateService.SubmitUpdate(c.Request.Context(), update)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Status update recorded", gin.H{
		"update_id":   created.ID.Hex(),
		"case_status": updatedCase.Status,
	})
}

// ListCaseUpdates handles GET /cases/:id/updates
func (h *StatusUpdateHandler) ListCaseUpdates(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	updates, total, err := h.updateService.GetCaseUpdates(c.Request.Context(), caseID, params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	respondPage(c, updates, params, total)
}

// GetUpdate handles GET /updates/:id
func (h *StatusUpdateHandler) GetUpdate(c *gin.Context) {
	updateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	update, err := h.updateService.GetUpdate(c.Request.Context(), updateID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", update)
}

// MarkRead handles POST /updates/:id/read
func (h *StatusUpdateHandler) MarkRead(c *gin.Context) {
	updateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.updateService.MarkRead(c.Request.Context(), updateID, userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Update marked read", nil)
}
