package handlers

import (
	"pawrescue/internal/middleware"
	"pawrescue/internal/models"
	"pawrescue/internal/services"
	"pawrescue/internal/utils"
	"pawrescue/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CaseHandler struct {
	caseService services.CaseService
}

func NewCaseHandler(caseService services.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// CreateCase handles POST /cases. Anonymous reports are allowed: when no
// identity is resolved the case carries only contact info.
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req validators.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := validators.ValidateCreateCaseRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	newCase := &models.Case{
		AnimalType:  models.AnimalType(req.AnimalType),
		Condition:   models.AnimalCondition(req.Condition),
		Description: req.Description,
		Location:    locationFromRequest(req.Location),
		PhotoURLs:   req.PhotoURLs,
		ContactInfo: models.ContactInfo{
			Phone: req.Contact.Phone,
			Email: req.Contact.Email,
			Name:  req.Contact.Name,
		},
		UrgencyLevel:             models.UrgencyLevel(req.UrgencyLevel),
		RequiresReporterApproval: req.RequiresReporterApproval,
	}

	if reporterID, ok := middleware.GetUserID(c); ok {
		newCase.ReporterID = &reporterID
	}

	created, err := h.caseService.CreateCase(c.Request.Context(), newCase)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Case reported", gin.H{
		"id":          created.ID.Hex(),
		"case_number": created.CaseNumber,
		"status":      created.Status,
	})
}

// GetCase handles GET /cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	found, err := h.caseService.GetCase(c.Request.Context(), caseID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", found)
}

// GetCaseByNumber handles GET /cases/number/:number
func (h *CaseHandler) GetCaseByNumber(c *gin.Context) {
	found, err := h.caseService.GetCaseByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", found)
}

// ListMyReports handles GET /cases/reported
func (h *CaseHandler) ListMyReports(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	cases, total, err := h.caseService.GetReporterCases(c.Request.Context(), userID, params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	respondPage(c, cases, params, total)
}

// ListMyCases handles GET /cases/assigned
func (h *CaseHandler) ListMyCases(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	cases, total, err := h.caseService.GetHelperCases(c.Request.Context(), userID, params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	respondPage(c, cases, params, total)
}

// ListByStatus handles GET /cases?status=
func (h *CaseHandler) ListByStatus(c *gin.Context) {
	status := models.CaseStatus(c.DefaultQuery("status", string(models.CaseStatusOpen)))

	params := utils.GetPaginationParams(c)
	cases, total, err := h.caseService.GetCasesByStatus(c.Request.Context(), status, params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	respondPage(c, cases, params, total)
}

// AssignHelper handles POST /cases/:id/assign — the authenticated helper
// assigns themselves.
func (h *CaseHandler) AssignHelper(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	helperID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	updated, err := h.caseService.AssignHelper(c.Request.Context(), caseID, helperID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Helper assigned", gin.H{"status": updated.Status})
}

// Transfer handles POST /cases/:id/transfer
func (h *CaseHandler) Transfer(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req validators.TransferCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateTransferCaseRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	updated, err := h.caseService.Transfer(c.Request.Context(), caseID, actorID, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Case transferred", gin.H{
		"status":        updated.Status,
		"urgency_level": updated.UrgencyLevel,
	})
}

// MarkResolved handles POST /cases/:id/resolve
func (h *CaseHandler) MarkResolved(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	updated, err := h.caseService.MarkResolved(c.Request.Context(), caseID, actorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Case resolution recorded", gin.H{
		"status":                    updated.Status,
		"pending_reporter_approval": updated.PendingReporterApproval,
	})
}

// ApproveResolution handles POST /cases/:id/approve
func (h *CaseHandler) ApproveResolution(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	updated, err := h.caseService.ReporterApprove(c.Request.Context(), caseID, actorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Resolution approved", gin.H{"status": updated.Status})
}

// RejectResolution handles POST /cases/:id/reject
func (h *CaseHandler) RejectResolution(c *gin.Context) {
	caseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req validators.RejectResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateRejectResolutionRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	updated, err := h.caseService.ReporterReject(c.Request.Context(), caseID, actorID, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Resolution rejected", gin.H{"status": updated.Status})
}

func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid identifier")
		return primitive.NilObjectID, false
	}
	return id, true
}

func validationDetails(errs validators.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	return details
}

func locationFromRequest(req validators.LocationRequest) models.Location {
	loc := models.NewLocation(req.Latitude, req.Longitude)
	loc.Address = req.Address
	loc.City = req.City
	loc.State = req.State
	loc.Landmark = req.Landmark
	loc.IsApproximate = req.IsApproximate
	return loc
}

func respondPage(c *gin.Context, data interface{}, params *utils.PaginationParams, total int64) {
	utils.SuccessResponseWithMeta(c, "", data, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
	})
}
