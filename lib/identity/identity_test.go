package identity

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseTokenResolvesIdentity(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":             userID.String(),
		"organization_id": orgID.String(),
		"role":            "employee",
	}, testSecret)

	identity, err := parseWithSecret(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, userID, identity.UserID)
	require.Equal(t, orgID, identity.OrganizationID)
	require.Equal(t, "employee", identity.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":             uuid.New().String(),
		"organization_id": uuid.New().String(),
	}, "other-secret")

	_, err := parseWithSecret(token, testSecret)
	require.Error(t, err)
}

func TestParseTokenRejectsMissingClaims(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"role": "employee"}, testSecret)

	_, err := parseWithSecret(token, testSecret)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := parseWithSecret("not.a.token", testSecret)
	require.Error(t, err)
}

func TestStripBearer(t *testing.T) {
	require.Equal(t, "abc.def.ghi", StripBearer("Bearer abc.def.ghi"))
	require.Equal(t, "abc.def.ghi", StripBearer("abc.def.ghi"))
}

func TestHeaderValueVerifiesAfterStrip(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":             userID.String(),
		"organization_id": uuid.New().String(),
	}, testSecret)

	// The raw header value, scheme included, never verifies
	_, err := parseWithSecret("Bearer "+token, testSecret)
	require.Error(t, err)

	identity, err := parseWithSecret(StripBearer("Bearer "+token), testSecret)
	require.NoError(t, err)
	require.Equal(t, userID, identity.UserID)
}
