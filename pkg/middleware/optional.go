package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OptionalAuth parses a bearer token when one is present but never rejects
// the request. Public forum reads use it so each viewer sees their own
// vote state; anonymous viewers get user_id 0.
func OptionalAuth(c *fiber.Ctx) error {
	userID := 0
	userUUID := ""
	username := ""

	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "dev-secret-key-change-in-production"
		}

		token, err := jwt.ParseWithClaims(auth[7:], &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err == nil && token.Valid {
			claims := token.Claims.(*jwt.MapClaims)
			if id, ok := (*claims)["user_id"].(float64); ok {
				userID = int(id)
			}
			userUUID, _ = (*claims)["uuid"].(string)
			username, _ = (*claims)["username"].(string)
		}
	}

	c.Locals("user_id", userID)
	c.Locals("user_uuid", userUUID)
	c.Locals("username", username)
	return c.Next()
}
