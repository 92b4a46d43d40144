package middleware

import (
    "errors"
    "net/http"
    "strings"

    "github.com/gofiber/fiber/v2"

    "github.com/docuhero/docuhero-api/internal/auth"
    "github.com/docuhero/docuhero-api/internal/metrics"
)

type claimsKey struct{}

// TokenVerifier decodes a presented access token.
type TokenVerifier interface {
    Verify(token string) (auth.Claims, error)
}

// Authenticate validates the bearer token and attaches its claims to the request.
// Missing credentials never reach the verifier.
func Authenticate(tokens TokenVerifier, m *metrics.Metrics) fiber.Handler {
    return func(c *fiber.Ctx) error {
        token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
        if !ok {
            m.AuthOutcome(metrics.OutcomeMissingCredential)
            return fiber.NewError(http.StatusUnauthorized, "Access token required")
        }

        claims, err := tokens.Verify(token)
        switch {
        case err == nil:
        case errors.Is(err, auth.ErrTokenExpired):
            m.AuthOutcome(metrics.OutcomeExpired)
            return fiber.NewError(http.StatusUnauthorized, "Token expired")
        default:
            m.AuthOutcome(metrics.OutcomeInvalid)
            return fiber.NewError(http.StatusForbidden, "Invalid token")
        }

        m.AuthOutcome(metrics.OutcomeOK)
        c.Locals(claimsKey{}, claims)
        return c.Next()
    }
}

// RequireRole admits only identities whose role is in roles (exact match).
// It must run after Authenticate.
func RequireRole(m *metrics.Metrics, roles ...string) fiber.Handler {
    allowed := make(map[string]struct{}, len(roles))
    for _, r := range roles {
        allowed[r] = struct{}{}
    }
    return func(c *fiber.Ctx) error {
        claims, ok := ClaimsFrom(c)
        if !ok {
            m.AuthOutcome(metrics.OutcomeUnauthenticated)
            return fiber.NewError(http.StatusUnauthorized, "Authentication required")
        }
        if _, ok := allowed[claims.Role]; !ok {
            m.AuthOutcome(metrics.OutcomeInsufficientRole)
            return fiber.NewError(http.StatusForbidden, "Insufficient permissions")
        }
        return c.Next()
    }
}

// ClaimsFrom returns the claims attached by Authenticate.
func ClaimsFrom(c *fiber.Ctx) (auth.Claims, bool) {
    claims, ok := c.Locals(claimsKey{}).(auth.Claims)
    return claims, ok
}

func bearerToken(header string) (string, bool) {
    scheme, token, found := strings.Cut(header, " ")
    if !found || !strings.EqualFold(scheme, "bearer") {
        return "", false
    }
    token = strings.TrimSpace(token)
    return token, token != ""
}
