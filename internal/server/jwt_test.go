package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateToken("ci-runner")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ci-runner", claims.ClientID)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestJWTService_RejectsForgedTokens(t *testing.T) {
	svc := NewJWTService("test-secret")
	other := NewJWTService("another-secret")

	token, err := other.GenerateToken("ci-runner")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err, "a token signed with a different secret must fail")
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")

	_, err := svc.ValidateToken("")
	assert.Error(t, err)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
