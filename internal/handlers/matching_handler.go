package handlers

import (
	"strconv"

	"pawrescue/internal/middleware"
	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/services"
	"pawrescue/internal/utils"
	"pawrescue/internal/validators"

	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	matchingService services.MatchingService
}

func NewMatchingHandler(matchingService services.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingService: matchingService}
}

// FindNearbyHelpers handles GET /helpers/nearby?lat=&lng=&radius_km=
func (h *MatchingHandler) FindNearbyHelpers(c *gin.Context) {
	lat, lng, ok := queryCoordinates(c)
	if !ok {
		return
	}
	radiusKM, _ := strconv.ParseFloat(c.DefaultQuery("radius_km", "10"), 64)

	filters := helperFiltersFromQuery(c)
	helpers, err := h.matchingService.FindNearbyHelpers(c.Request.Context(), lat, lng, radiusKM, filters)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", helpers)
}

// FindCoveringHelpers handles GET /helpers/covering?lat=&lng=
func (h *MatchingHandler) FindCoveringHelpers(c *gin.Context) {
	lat, lng, ok := queryCoordinates(c)
	if !ok {
		return
	}

	filters := helperFiltersFromQuery(c)
	helpers, err := h.matchingService.FindHelpersCoveringLocation(c.Request.Context(), lat, lng, filters)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", helpers)
}

// NearbyOpenCases handles GET /cases/nearby?lat=&lng=&radius_km=
func (h *MatchingHandler) NearbyOpenCases(c *gin.Context) {
	lat, lng, ok := queryCoordinates(c)
	if !ok {
		return
	}
	radiusKM, _ := strconv.ParseFloat(c.DefaultQuery("radius_km", "10"), 64)

	cases, err := h.matchingService.GetNearbyOpenCases(c.Request.Context(), lat, lng, radiusKM)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", cases)
}

// CreateServiceArea handles POST /service-areas
func (h *MatchingHandler) CreateServiceArea(c *gin.Context) {
	helperID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req validators.CreateServiceAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateCreateServiceAreaRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	area := &models.ServiceArea{
		Name:     req.Name,
		Center:   models.NewLocation(req.Latitude, req.Longitude),
		RadiusKM: req.RadiusKM,
		City:     req.City,
		State:    req.State,
	}

	created, err := h.matchingService.CreateServiceArea(c.Request.Context(), helperID, area)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Service area created", created)
}

// UpdateServiceArea handles PATCH /service-areas/:id
func (h *MatchingHandler) UpdateServiceArea(c *gin.Context) {
	helperID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	areaID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req validators.UpdateServiceAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateUpdateServiceAreaRequest(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.RadiusKM != nil {
		updates["radius_km"] = *req.RadiusKM
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.BadRequestResponse(c, "Nothing to update")
		return
	}

	updated, err := h.matchingService.UpdateServiceArea(c.Request.Context(), helperID, areaID, updates)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Service area updated", updated)
}

// DeactivateServiceArea handles DELETE /service-areas/:id
func (h *MatchingHandler) DeactivateServiceArea(c *gin.Context) {
	helperID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	areaID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.matchingService.DeactivateServiceArea(c.Request.Context(), helperID, areaID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Service area deactivated", nil)
}

// ListMyServiceAreas handles GET /service-areas
func (h *MatchingHandler) ListMyServiceAreas(c *gin.Context) {
	helperID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	areas, err := h.matchingService.GetHelperServiceAreas(c.Request.Context(), helperID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", areas)
}

func queryCoordinates(c *gin.Context) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || !utils.IsValidCoordinates(lat, lng) {
		utils.BadRequestResponse(c, "Valid lat and lng query parameters are required")
		return 0, 0, false
	}
	return lat, lng, true
}

func helperFiltersFromQuery(c *gin.Context) *interfaces.HelperFilters {
	filters := &interfaces.HelperFilters{
		Verification: models.VerificationApproved,
		ActiveOnly:   true,
	}
	if userType := c.Query("user_type"); userType != "" {
		filters.UserType = models.UserType(userType)
	}
	return filters
}
