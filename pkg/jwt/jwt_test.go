package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "papeleria-api-test"
)

func TestGenerateAndParse_ConRole(t *testing.T) {
	tok, err := Generate(testSecret, testIssuer, "u-1", RoleBodeguero, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(testSecret, testIssuer, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, RoleBodeguero, claims.Role)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := Generate(testSecret, testIssuer, "u-1", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(testSecret, testIssuer, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := Generate(testSecret, testIssuer, "u-1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = Parse("otro-secret-completamente-distinto", testIssuer, tok)
	assert.Error(t, err)
}

func TestParse_EmisorDistinto(t *testing.T) {
	tok, err := Generate(testSecret, "otro-emisor", "u-1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = Parse(testSecret, testIssuer, tok)
	assert.Error(t, err)

	_, err = Parse(testSecret, "", tok)
	assert.NoError(t, err, "sin emisor configurado no se valida iss")
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", testIssuer, "u-1", RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = Parse("", testIssuer, "x.y.z")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
