package daemon

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// authMiddleware validates bearer tokens against a bcrypt hash.
// If tokenHash is empty, no authentication is required and all requests pass through.
// Otherwise, requests must include "Authorization: Bearer <token>" unless their
// path is listed in exempt.
func authMiddleware(tokenHash string, exempt ...string) fiber.Handler {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	hash := []byte(tokenHash)
	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}
		auth := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}

// HashToken returns the bcrypt hash stored in paths.api_token_hash.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
