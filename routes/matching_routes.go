package routes

import (
	"pawrescue/internal/handlers"
	"pawrescue/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupMatchingRoutes sets up routes for helper matching and service areas
func SetupMatchingRoutes(r *gin.RouterGroup, jwtSecret string, matchingHandler *handlers.MatchingHandler) {
	helpers := r.Group("/helpers")
	helpers.Use(middleware.AuthRequired(jwtSecret))
	{
		helpers.GET("/nearby", matchingHandler.FindNearbyHelpers)
		helpers.GET("/covering", matchingHandler.FindCoveringHelpers)
	}

	areas := r.Group("/service-areas")
	areas.Use(middleware.AuthRequired(jwtSecret))
	{
		areas.GET("", matchingHandler.ListMyServiceAreas)
		areas.POST("", matchingHandler.CreateServiceArea)
		areas.PATCH("/:id", matchingHandler.UpdateServiceArea)
		areas.DELETE("/:id", matchingHandler.DeactivateServiceArea)
	}
}
