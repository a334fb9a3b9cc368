package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campusface/attendance-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens and
// binds the actor identity to the request. Overrides are attributed to this
// identity, never to ambient global state.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		actor := extractActorFromClaims(claims)
		if actor == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "token subject missing")
		}

		c.Locals("actor_id", actor)
		if role := extractRoleFromClaims(claims); role != "" {
			c.Locals("actor_role", role)
		}

		return c.Next()
	}
}

// ActorID returns the authenticated actor bound to the request, if any.
func ActorID(c *fiber.Ctx) string {
	if value := c.Locals("actor_id"); value != nil {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

func extractActorFromClaims(claims jwt.MapClaims) string {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			switch v := value.(type) {
			case string:
				if trimmed := strings.TrimSpace(v); trimmed != "" {
					return trimmed
				}
			case float64:
				return fmt.Sprintf("%.0f", v)
			}
		}
	}
	return ""
}

func extractRoleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			return strings.ToLower(strings.TrimSpace(v))
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
					return strings.ToLower(strings.TrimSpace(str))
				}
			}
		}
	}
	return ""
}
