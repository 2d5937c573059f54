package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

const actorKey = "actor"

func claimsFrom(c *fiber.Ctx) (*utils.Claims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*utils.Claims)
	return claims, ok
}

// AttachJWTLocals exposes the verified claims as userId, role and profileId
// locals plus the models.Actor used by the services.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		uid, err := uuid.Parse(strings.TrimSpace(claims.UserID))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		pid, err := uuid.Parse(strings.TrimSpace(claims.ProfileID))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		role := strings.ToLower(strings.TrimSpace(claims.Role))
		userType, ok := models.UserTypeFromRole(role)
		if !ok {
			return fiber.ErrUnauthorized
		}

		c.Locals("userId", uid.String())
		c.Locals("role", role)
		c.Locals("profileId", pid.String())
		c.Locals(actorKey, models.Actor{UserID: uid, ProfileID: pid, Type: userType})

		return c.Next()
	}
}

// ActorFrom returns the caller set by AttachJWTLocals.
func ActorFrom(c *fiber.Ctx) (models.Actor, bool) {
	a, ok := c.Locals(actorKey).(models.Actor)
	return a, ok
}
