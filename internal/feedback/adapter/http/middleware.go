package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/usecase"
	"pgfeedback/internal/identity"
	"pgfeedback/internal/shared/contextkeys"
)

const (
	identityLocalKey  = "identity"
	sessionCookieName = "session"

	loginPath   = "/login"
	defaultPath = "/"
)

// IdentityResolver turns a bearer token into an identity.
type IdentityResolver interface {
	Verify(token string) (model.Identity, error)
}

// AuthMiddleware resolves the caller's identity and enforces access
// decisions from the gate. A missing or invalid token resolves to the
// anonymous identity rather than an error; the gate decides what anonymous
// callers may reach.
type AuthMiddleware struct {
	verifier IdentityResolver
	gate     *usecase.AccessGate
}

// NewAuthMiddleware creates the middleware.
func NewAuthMiddleware(verifier IdentityResolver, gate *usecase.AccessGate) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, gate: gate}
}

// ResolveIdentity extracts and verifies the session token, storing the
// resulting identity in both fiber locals and the request context.
func (m *AuthMiddleware) ResolveIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := model.Anonymous()
		if token := extractToken(c); token != "" {
			if verified, err := m.verifier.Verify(token); err == nil {
				ident = verified
			} else if err != identity.ErrTokenInvalid {
				// Expired or tampered tokens are worth distinguishing from
				// plain anonymous traffic in the request log.
				c.Locals("auth_error", err.Error())
			}
		}

		c.Locals(identityLocalKey, ident)

		ctx := context.WithValue(c.UserContext(), contextkeys.UserIDKey, ident.UID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, string(ident.Role))
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequireAuth gates a surface that needs a logged-in caller.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return m.require(usecase.RouteRequirements{RequiresAuth: true})
}

// RequireAdmin gates a surface that needs an admin.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return m.require(usecase.RouteRequirements{RequiresAuth: true, RequiresAdmin: true})
}

func (m *AuthMiddleware) require(req usecase.RouteRequirements) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch m.gate.Authorize(IdentityFromCtx(c), req) {
		case usecase.DecisionAllow:
			return c.Next()
		case usecase.DecisionRedirectToLogin:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "authentication required",
				"redirect": loginPath,
			})
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    "insufficient permissions",
				"redirect": defaultPath,
			})
		}
	}
}

// IdentityFromCtx returns the identity ResolveIdentity stored, or anonymous.
func IdentityFromCtx(c *fiber.Ctx) model.Identity {
	if ident, ok := c.Locals(identityLocalKey).(model.Identity); ok {
		return ident
	}
	return model.Anonymous()
}

// extractToken reads the session token from the Authorization header or the
// session cookie, in that order.
func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies(sessionCookieName)
}

// RequestID tags every request for log correlation.
func RequestID() fiber.Handler {
	return requestid.New()
}

// CORS allows the resident-facing frontend origins.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// WriteRateLimiter bounds the write endpoints per client.
func WriteRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               30,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests",
			})
		},
	})
}
