package serverutils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrRoomMismatch = errors.New("token does not grant this room")

// VideoGrant is the room permission block carried by join tokens.
type VideoGrant struct {
	Room     string `json:"room"`
	RoomJoin bool   `json:"roomJoin"`
}

// JoinClaims follows the usual real-time media access token layout:
// issuer is the API key, subject is the participant identity.
type JoinClaims struct {
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

type JoinTokenIssuer struct {
	apiKey    string
	apiSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewJoinTokenIssuer(apiKey, apiSecret string, ttl time.Duration) *JoinTokenIssuer {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &JoinTokenIssuer{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (i *JoinTokenIssuer) Issue(identity, room string) (string, error) {
	now := i.now()
	claims := JoinClaims{
		Name:  identity,
		Video: VideoGrant{Room: room, RoomJoin: true},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.apiSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign join token: %w", err)
	}
	return signed, nil
}

func (i *JoinTokenIssuer) Parse(tokenStr string) (*JoinClaims, error) {
	claims := &JoinClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.apiSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.apiKey),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || !claims.Video.RoomJoin {
		return nil, errors.New("invalid join token")
	}
	return claims, nil
}

func bearerOrQuery(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ctx.Query("token")
}

// JoinTokenMiddleware admits requests whose token grants the :room param.
func JoinTokenMiddleware(issuer *JoinTokenIssuer) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := bearerOrQuery(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		if room := ctx.Params("room"); room != "" && room != claims.Video.Room {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, ErrRoomMismatch.Error()))
		}

		ctx.Locals("room", claims.Video.Room)
		ctx.Locals("identity", claims.Subject)
		return ctx.Next()
	}
}
