package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cityaid-service/internal/domain"
	apperrors "github.com/spec-kit/cityaid-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: a user acting for one team
// in one city.
type Principal struct {
	UserID string
	City   domain.CityCode
	Team   domain.TeamType
}

// AuthMiddleware validates bearer tokens and extracts principals from their
// claims.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	city, err := domain.NewCityCode(claims.City)
	if err != nil {
		return apperrors.NewUnauthorized("invalid city claim")
	}
	team := domain.TeamType(strings.ToUpper(claims.Team))
	if !team.Valid() {
		return apperrors.NewUnauthorized("invalid team claim")
	}
	if claims.Subject == "" {
		return apperrors.NewUnauthorized("missing subject claim")
	}

	c.Locals(principalKey, &Principal{
		UserID: claims.Subject,
		City:   city,
		Team:   team,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
