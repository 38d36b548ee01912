package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/KeyFox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/KeyFox/internal/pkg/metrics/counter"
)

// HandleStart serves the service banner.
func HandleStart(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "keyfox",
		"docs":    "/docs/v1/openapi.yml",
	})
}

// HandleHealth is the liveness probe.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleStats reports gateway operation counters and mail queue state.
func HandleStats(c *fiber.Ctx) error {
	totals, err := counter.GetTotals()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "counters unavailable")
	}

	queue := jobqueue.GetManager().GetQueue()
	jobStats, err := queue.GetJobStats(c.UserContext())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "queue stats unavailable")
	}
	queueSize, _ := queue.GetQueueSize(c.UserContext())

	return c.JSON(fiber.Map{
		"success":  true,
		"counters": totals,
		"jobs": fiber.Map{
			"stats":      jobStats,
			"queue_size": queueSize,
		},
	})
}
