package routes

import (
	"pawrescue/internal/handlers"
	"pawrescue/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCaseRoutes sets up routes for case lifecycle and status updates
func SetupCaseRoutes(r *gin.RouterGroup, jwtSecret string, caseHandler *handlers.CaseHandler, updateHandler *handlers.StatusUpdateHandler, matchingHandler *handlers.MatchingHandler) {
	cases := r.Group("/cases")
	{
		// Reports may be filed before the reporter has an account, so case
		// creation only resolves an identity when one is present.
		cases.POST("", middleware.OptionalAuth(jwtSecret), caseHandler.CreateCase)

		cases.GET("/:id", caseHandler.GetCase)
		cases.GET("/number/:number", caseHandler.GetCaseByNumber)
		cases.GET("/:id/updates", updateHandler.ListCaseUpdates)
	}

	authed := r.Group("/cases")
	authed.Use(middleware.AuthRequired(jwtSecret))
	{
		authed.GET("", caseHandler.ListByStatus)
		authed.GET("/nearby", matchingHandler.NearbyOpenCases)
		authed.GET("/reported", caseHandler.ListMyReports)
		authed.GET("/assigned", caseHandler.ListMyCases)

		authed.POST("/:id/assign", caseHandler.AssignHelper)
		authed.POST("/:id/transfer", caseHandler.Transfer)
		authed.POST("/:id/resolve", caseHandler.MarkResolved)
		authed.POST("/:id/approve", caseHandler.ApproveResolution)
		authed.POST("/:id/reject", caseHandler.RejectResolution)

		authed.POST("/:id/updates", updateHandler.SubmitUpdate)
	}

	updates := r.Group("/updates")
	updates.Use(middleware.AuthRequired(jwtSecret))
	{
		updates.GET("/:id", updateHandler.GetUpdate)
		updates.POST("/:id/read", updateHandler.MarkRead)
	}
}
