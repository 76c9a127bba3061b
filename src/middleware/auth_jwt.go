package middleware

import (
	"strings"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
)

const (
	principalKey = "principal"
	claimsKey    = "claims"
)

// AuthJWT requires a valid, non blacklisted Bearer token and stores the
// principal in the request locals.
func AuthJWT(tokens *utils.TokenIssuer, cache *utils.RedisCache, logger log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Missing or invalid Authorization header")
		}

		claims, err := tokens.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		revoked, err := cache.IsTokenBlacklisted(c.UserContext(), claims.ID)
		if err != nil {
			level.Warn(logger).Log("msg", "blacklist lookup failed", "err", err)
		}
		if revoked {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Token has been revoked")
		}

		c.Locals(claimsKey, claims)
		c.Locals(principalKey, claims.Principal())
		return c.Next()
	}
}

// RequireRole rejects principals whose role is not listed.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := Principal(c)
		if !ok {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Not signed in")
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return utils.HandleError(c, fiber.StatusForbidden, "Insufficient role")
	}
}

func Principal(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals(principalKey).(models.Principal)
	return p, ok
}

func Claims(c *fiber.Ctx) (*utils.JWTClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*utils.JWTClaims)
	return claims, ok
}
