package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/KeyFox/app/controllers"
	"github.com/ManuelReschke/KeyFox/internal/pkg/env"
	"github.com/ManuelReschke/KeyFox/internal/pkg/licensing"
	"github.com/ManuelReschke/KeyFox/pkg/keyfox"
)

type HttpRouter struct {
}

// licenseService is shared with ApiRouter, which installs after
// HttpRouter and guards its routes with the license middleware.
var licenseService *licensing.Service

func (h HttpRouter) InstallRouter(app *fiber.App) {
	client, err := keyfox.New(keyfox.Config{
		SecretKey:   env.GetEnv("STRIPE_SECRET_KEY", ""),
		LicenseKey:  env.GetEnv("KEYFOX_LICENSE_KEY", ""),
		ValidateURL: env.GetEnv("KEYFOX_VALIDATE_URL", ""),
	})
	if err != nil {
		log.Fatalf("gateway client setup failed: %v", err)
	}

	service := licensing.NewService(client, licensing.LoadPlanCatalog())
	licenseService = service

	controllers.InitializeLicenseController(service)
	controllers.InitializeWebhookController(client, env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
	controllers.RegisterDefaultEventHandlers(client)

	app.Get("/", controllers.HandleStart)
	app.Get("/health", controllers.HandleHealth)
	app.Get("/stats", controllers.HandleStats)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
