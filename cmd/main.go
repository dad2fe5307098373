package main

import (
	"log"

	"github.com/titorm/fodmap-facil-sub001/config"
	"github.com/titorm/fodmap-facil-sub001/controllers"
	"github.com/titorm/fodmap-facil-sub001/routes"
	"github.com/titorm/fodmap-facil-sub001/services"
)

func main() {
	config.InitDB()
	db := config.DB

	hub := services.NewRealtimeHub()

	push, err := services.NewPushService(db)
	if err != nil {
		log.Printf("push service disabled: %v", err)
		push = nil
	}

	reminderStore := services.NewGormReminderStore(db)
	washoutStore := services.NewGormWashoutStore(db)
	scheduler := services.NewSchedulerService(reminderStore, washoutStore)

	eventStore := services.NewGormEventStore(db)
	telemetry := services.NewTelemetryService(eventStore, services.NewCollectorClient())
	defer telemetry.Destroy()

	state := services.NewStateService(
		services.NewGormProfileReader(db),
		services.NewGormProtocolRunReader(db),
		services.NewGormTestStepReader(db),
		telemetry.ViewedContentIDs,
	)

	protocol := services.NewProtocolService(db, scheduler)
	content := services.NewContentService(services.NewGormContentCatalog(db))

	dispatcher := services.NewDispatcher(db, reminderStore, eventStore, hub, push)
	dispatcher.Start()
	defer dispatcher.Stop()

	r := routes.SetupRouter(routes.Controllers{
		Auth:      controllers.NewAuthController(services.NewAuthService(db)),
		Protocol:  controllers.NewProtocolController(protocol),
		Washout:   controllers.NewWashoutController(protocol, scheduler, washoutStore),
		Telemetry: controllers.NewTelemetryController(telemetry, state),
		Content:   controllers.NewContentController(content, state),
		Device:    controllers.NewDeviceController(push),
		Realtime:  controllers.NewRealtimeController(hub),
		Dev:       controllers.NewDevController(push, dispatcher),
	})
	r.Run(":8080")
}
