package controller

import (
	"voice-coach-be/internal/pkg/serverutils"
	ws "voice-coach-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ISessionController exposes the agent-facing conversation channel.
type ISessionController interface {
	RegisterRoutes(r fiber.Router)
}

type sessionController struct {
	handler *ws.SessionHandler
	issuer  *serverutils.JoinTokenIssuer
}

func NewSessionController(handler *ws.SessionHandler, issuer *serverutils.JoinTokenIssuer) ISessionController {
	return &sessionController{handler: handler, issuer: issuer}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ws/session")
	h.Get(":room", serverutils.JoinTokenMiddleware(c.issuer), c.upgrade, websocket.New(func(conn *websocket.Conn) {
		c.handler.ServeWs(conn, conn.Params("room"))
	}))
}

func (c *sessionController) upgrade(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}
