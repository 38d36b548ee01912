package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/KeyFox/app/controllers"
	"github.com/ManuelReschke/KeyFox/internal/pkg/env"
	"github.com/ManuelReschke/KeyFox/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Webhook deliveries are not rate limited; the provider retries
	// on anything but a timely 2xx/4xx and bursts are normal.
	app.Post("/webhook", controllers.HandleStripeWebhook)

	limited := app.Group("", limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		Storage:    limiterStorage(),
	}))
	limited.Post("/validate-key", controllers.HandleValidateKey)
	limited.Post("/create-subscription", controllers.HandleCreateSubscription)
	limited.Post("/generate-key", controllers.HandleGenerateKey)
	limited.Post("/customer-info", controllers.HandleCustomerInfo)

	// Key-protected surface for embedding applications. Every hit is
	// validated and metered.
	v1 := app.Group("/api/v1", middleware.LicenseAuthMiddleware(licenseService))
	v1.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":    "pong",
			"customerId": c.Locals(middleware.KeyCustomerID),
		})
	})
}

// limiterStorage backs the rate limiter with Redis (database 1, the
// cache uses 0) so limits hold across restarts.
func limiterStorage() *redis.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redis.New(redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
