package controller

import (
	"voice-coach-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

type SessionCounter interface {
	ActiveSessions() int
}

type ContextCounter interface {
	StoredCount() int
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	sessions SessionCounter
	contexts ContextCounter
}

func NewHealthController(sessions SessionCounter, contexts ContextCounter) IHealthController {
	return &healthController{sessions: sessions, contexts: contexts}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:         "healthy",
		ActiveSessions: c.sessions.ActiveSessions(),
		StoredContexts: c.contexts.StoredCount(),
	})
}
