// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"friendnet/internal/config"
	"friendnet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token claim constants shared by issuance and verification.
const (
	TokenIssuer   = "friendnet-api"
	TokenAudience = "friendnet-client"
)

var cfg *config.Config

// tokenRevoked reports whether a token ID has been revoked. Wired by the
// server during setup to avoid an import cycle with the cache package.
var tokenRevoked func(ctx context.Context, jti string) bool

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// SetTokenRevocationCheck installs the revocation lookup used by AuthRequired.
func SetTokenRevocationCheck(fn func(ctx context.Context, jti string) bool) {
	tokenRevoked = fn
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.NewEnvelope(false, message, nil, nil))
}

// ParseToken validates a signed JWT, including issuer and audience, and
// returns its claims.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, ok := claims["iss"].(string); !ok || issuer != TokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, ok := claims["aud"].(string); !ok || audience != TokenAudience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}

	return claims, nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "Authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return unauthorized(c, "Invalid authorization header format")
	}

	claims, err := ParseToken(parts[1])
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	// Refresh tokens cannot be used to call protected endpoints.
	if typ, _ := claims["typ"].(string); typ != "access" {
		return unauthorized(c, "Invalid token type")
	}

	jti, _ := claims["jti"].(string)
	if tokenRevoked != nil && tokenRevoked(c.UserContext(), jti) {
		return unauthorized(c, "Token has been revoked")
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	subClaim, ok := claims["sub"]
	if !ok {
		return unauthorized(c, "Invalid token structure - missing subject")
	}

	subStr, ok := subClaim.(string)
	if !ok {
		return unauthorized(c, "Invalid token subject type")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return unauthorized(c, "Invalid user ID in token")
	}

	// Store identity in locals and sync to UserContext for logging and
	// downstream services.
	c.Locals("userID", uint(userIDVal))
	c.Locals("jti", jti)
	ctx := context.WithValue(c.UserContext(), UserIDKey, uint(userIDVal))
	c.SetUserContext(ctx)

	return c.Next()
}
