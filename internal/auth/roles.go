package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cityaid-service/internal/domain"
	apperrors "github.com/spec-kit/cityaid-service/pkg/util"
)

// RequireTeam ensures the principal belongs to one of the allowed teams.
// With no teams given, any authenticated principal passes.
func RequireTeam(allowed ...domain.TeamType) fiber.Handler {
	allowedSet := make(map[domain.TeamType]struct{}, len(allowed))
	for _, team := range allowed {
		allowedSet[team] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Team]; !exists {
			return apperrors.NewForbidden("insufficient team role")
		}
		return c.Next()
	}
}
