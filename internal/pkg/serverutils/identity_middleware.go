package serverutils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleStudent   = "student"
	RoleStaff     = "staff"
	RoleCounselor = "counselor"
	RoleInstitute = "institute"
)

const identityLocal = "identity"

// Identity is what the identity service vouches for. The core never checks
// credentials itself.
type Identity struct {
	ParticipantId string
	Role          string
	InstituteId   string
}

type identityClaims struct {
	ParticipantId string `json:"participant_id"`
	Role          string `json:"role"`
	InstituteId   string `json:"institute_id"`
	jwt.RegisteredClaims
}

// IdentityMiddleware verifies the HMAC bearer token issued by the identity
// service. An empty secret turns verification off, for local runs behind a
// trusted gateway.
func IdentityMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}

		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		claims := &identityClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		if strings.TrimSpace(claims.ParticipantId) == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		ctx.Locals(identityLocal, Identity{
			ParticipantId: strings.TrimSpace(claims.ParticipantId),
			Role:          claims.Role,
			InstituteId:   claims.InstituteId,
		})
		return ctx.Next()
	}
}

// CurrentIdentity returns the verified caller, if verification is on.
func CurrentIdentity(ctx *fiber.Ctx) (Identity, bool) {
	id, ok := ctx.Locals(identityLocal).(Identity)
	return id, ok
}

// RequireRole rejects verified callers outside roles. Unverified requests
// pass, matching IdentityMiddleware with an empty secret.
func RequireRole(roles ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, ok := CurrentIdentity(ctx)
		if !ok {
			return ctx.Next()
		}
		for _, r := range roles {
			if id.Role == r {
				return ctx.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Role not allowed")
	}
}

// ActingAs fails when a verified caller speaks for another participant.
func ActingAs(ctx *fiber.Ctx, participantId string) error {
	id, ok := CurrentIdentity(ctx)
	if !ok || id.ParticipantId == strings.TrimSpace(participantId) {
		return nil
	}
	return fiber.NewError(fiber.StatusForbidden, "Cannot act for another participant")
}
