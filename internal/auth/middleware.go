package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk-engine/pkg/util"
)

const callerServiceKey = "caller_service"

// Middleware guards routes with service token validation.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware builds the middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle validates the Bearer token and stores the caller identity on the
// request context.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return apperrors.NewUnauthorized("malformed authorization header")
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(callerServiceKey, claims.Service)
	return c.Next()
}

// CallerService returns the authenticated caller name, if any.
func CallerService(c *fiber.Ctx) (string, bool) {
	service, ok := c.Locals(callerServiceKey).(string)
	return service, ok && service != ""
}
