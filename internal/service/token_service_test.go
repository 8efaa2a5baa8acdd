package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
)

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "tests", Expiry: time.Hour}, nil)

	token, expiresAt, err := svc.Issue("op-1", "Operator One", models.RoleOperator)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.UserID)
	assert.Equal(t, models.RoleOperator, claims.Role)
	assert.Equal(t, "tests", claims.Issuer)
}

func TestTokenServiceRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "one"}, nil)
	verifier := NewTokenService(TokenConfig{Secret: "two"}, nil)

	token, _, err := issuer.Issue("op-1", "", models.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Expiry: time.Minute}, nil)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.Issue("op-1", "", models.RoleViewer)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenServiceRejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret"}, nil)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "op-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestTokenServiceRequiresUser(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret"}, nil)
	_, _, err := svc.Issue("", "", models.RoleViewer)
	require.Error(t, err)
}
