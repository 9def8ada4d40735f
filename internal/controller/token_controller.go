package controller

import (
	"strings"

	"voice-coach-be/internal/dto"
	"voice-coach-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultIdentity = "coach-user"

// RoomChecker reports whether a room already hosts a live session.
type RoomChecker interface {
	HasSession(sessionID string) bool
}

type ITokenController interface {
	RegisterRoutes(r fiber.Router)
	GetToken(ctx *fiber.Ctx) error
}

type tokenController struct {
	issuer *serverutils.JoinTokenIssuer
	rooms  RoomChecker
}

func NewTokenController(issuer *serverutils.JoinTokenIssuer, rooms RoomChecker) ITokenController {
	return &tokenController{issuer: issuer, rooms: rooms}
}

func (c *tokenController) RegisterRoutes(r fiber.Router) {
	r.Get("/getToken", c.GetToken)
}

func (c *tokenController) GetToken(ctx *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateStruct(req); err != nil {
		return err
	}

	identity := strings.TrimSpace(req.Name)
	if identity == "" {
		identity = defaultIdentity
	}

	room := strings.TrimSpace(req.Room)
	if room == "" {
		room = c.newRoomName()
	}

	token, err := c.issuer.Issue(identity, room)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Token issued", dto.TokenResponse{
		Token:    token,
		Room:     room,
		Identity: identity,
	}))
}

func (c *tokenController) newRoomName() string {
	for {
		room := "room-" + uuid.NewString()[:8]
		if !c.rooms.HasSession(room) {
			return room
		}
	}
}
