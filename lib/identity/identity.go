package identity

import (
	"fmt"
	"strings"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated caller resolved by the upstream auth layer.
// The engine trusts the token contents, it only verifies the signature.
type Identity struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
}

// ParseToken verifies a bearer token and extracts the caller identity
func ParseToken(tokenString string) (Identity, error) {
	secret := settings.Get("JWT.SECRET").String()
	if secret == "" {
		return Identity{}, fmt.Errorf("JWT.SECRET is not configured")
	}
	return parseWithSecret(tokenString, secret)
}

func parseWithSecret(tokenString, secret string) (Identity, error) {
	var identity Identity

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return identity, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	orgID, _ := claims["organization_id"].(string)
	role, _ := claims["role"].(string)

	identity.UserID, err = uuid.Parse(sub)
	if err != nil {
		return identity, fmt.Errorf("invalid subject claim: %w", err)
	}
	identity.OrganizationID, err = uuid.Parse(orgID)
	if err != nil {
		return identity, fmt.Errorf("invalid organization claim: %w", err)
	}
	identity.Role = role

	return identity, nil
}

// StripBearer removes the Bearer scheme from an Authorization header value.
// A value without the scheme is returned unchanged, so raw tokens pass
// through.
func StripBearer(header string) string {
	return strings.TrimPrefix(header, "Bearer ")
}

// FromRequest resolves the caller identity from the Authorization header
func FromRequest(request *evo.Request) (Identity, error) {
	header := request.Header("Authorization")
	if header == "" {
		return Identity{}, fmt.Errorf("missing authorization header")
	}
	token := StripBearer(header)
	if token == header {
		return Identity{}, fmt.Errorf("malformed authorization header")
	}
	return ParseToken(token)
}
