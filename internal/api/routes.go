package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alcyxob/workout-tracker/internal/service"
)

// SetupRoutes registers every endpoint. authService is nil when login is
// disabled, which leaves the API open.
func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	workoutHandler *WorkoutHandler,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	if authService != nil {
		authHandler := NewAuthHandler(authService)
		apiV1.POST("/auth/login", authHandler.Login)
		protected.Use(AuthMiddleware(authService.GetJWTSecret()))
	}
	{
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.GetWorkouts)
			workoutGroup.DELETE("", workoutHandler.DeleteAllWorkouts)
			workoutGroup.GET("/:id", workoutHandler.SelectWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:id/edit", workoutHandler.BeginEdit)
		}

		formGroup := protected.Group("/form")
		{
			formGroup.GET("", workoutHandler.GetFormStatus)
			formGroup.POST("/location", workoutHandler.PickLocation)
			formGroup.POST("/submit", workoutHandler.SubmitForm)
			formGroup.POST("/cancel", workoutHandler.CancelForm)
		}

		viewGroup := protected.Group("/view")
		{
			viewGroup.GET("", workoutHandler.GetView)
			viewGroup.POST("/sort", workoutHandler.ToggleSort)
		}

		snapshotGroup := protected.Group("/snapshot")
		{
			snapshotGroup.GET("", workoutHandler.ExportSnapshot)
			snapshotGroup.GET("/link", workoutHandler.GetSnapshotLink)
		}
	}
}
