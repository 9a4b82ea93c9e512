package plugin

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/protocol"
)

func (p *Plugin) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "healthy",
		"version":        p.manifest.Version,
		"uptime_seconds": int64(time.Since(p.startTime).Seconds()),
	})
}

func (p *Plugin) handleInfo(c fiber.Ctx) error {
	defs := p.registry.Actions()

	actions := make([]fiber.Map, 0, len(defs))
	for _, def := range defs {
		actions = append(actions, fiber.Map{
			"id":          def.ID,
			"name":        def.Name,
			"description": def.Description,
		})
	}

	return c.JSON(fiber.Map{
		"id":          p.manifest.ID,
		"name":        p.manifest.Name,
		"version":     p.manifest.Version,
		"description": p.manifest.Description,
		"actions":     actions,
	})
}

// handleShutdown acknowledges immediately, then terminates the process
// from a separate goroutine after the grace period so the response is
// flushed before the process dies.
func (p *Plugin) handleShutdown(c fiber.Ctx) error {
	p.logger.Info("Shutdown requested", "grace_period", p.gracePeriod)

	go func() {
		time.Sleep(p.gracePeriod)
		p.exit(0)
	}()

	return c.JSON(fiber.Map{"status": "shutting_down"})
}

func (p *Plugin) handleNotFound(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    protocol.CodeBadRequest,
			"message": message,
		},
	})
}
