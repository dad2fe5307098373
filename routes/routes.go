package routes

import (
	"github.com/titorm/fodmap-facil-sub001/controllers"
	"github.com/titorm/fodmap-facil-sub001/middlewares"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth      *controllers.AuthController
	Protocol  *controllers.ProtocolController
	Washout   *controllers.WashoutController
	Telemetry *controllers.TelemetryController
	Content   *controllers.ContentController
	Device    *controllers.DeviceController
	Realtime  *controllers.RealtimeController
	Dev       *controllers.DevController
}

func SetupRouter(c Controllers) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/protocol/:group", c.Protocol.GetProtocol)
		api.GET("/protocol/:group/portion", c.Protocol.GetSuggestedPortion)

		api.POST("/runs", c.Protocol.StartRun)
		api.PUT("/runs/:id/phase", c.Protocol.BeginReintroduction)
		api.POST("/runs/:id/steps", c.Protocol.AddTestStep)
		api.GET("/runs/:id/tolerance", c.Protocol.GetTolerance)
		api.GET("/runs/:id/recommendations", c.Protocol.GetRecommendations)

		api.POST("/steps/:id/symptoms", c.Protocol.LogSymptom)
		api.PUT("/steps/:id/complete", c.Protocol.CompleteStep)

		api.POST("/washouts", c.Washout.OpenWashout)
		api.GET("/washouts/:id/countdown", c.Washout.GetCountdown)
		api.DELETE("/washouts/:id/reminders", c.Washout.CancelReminders)
		api.PUT("/washouts/:id/frequency", c.Washout.UpdateFrequency)

		api.GET("/content/surfaced", c.Content.GetSurfaced)

		api.POST("/telemetry/events", c.Telemetry.TrackEvent)
		api.POST("/telemetry/sync", c.Telemetry.Sync)
		api.GET("/telemetry/viewed", c.Telemetry.GetViewed)

		api.POST("/devices", c.Device.Register)
		api.POST("/user/notifications/toggle", controllers.ToggleNotifications)

		api.GET("/ws", c.Realtime.WashoutWS)

		api.POST("/dev/push-test", c.Dev.PushTest)
		api.POST("/dev/tick", c.Dev.ForceTick)
	}

	return r
}
