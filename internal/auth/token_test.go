package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	tok, err := m.Issue("admin@painel.com")
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin@painel.com", claims.Email())
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, 2*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestParse_Expired(t *testing.T) {
	m, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	issued := time.Now().Add(-3 * time.Hour)
	m.now = func() time.Time { return issued }
	tok, err := m.Issue("admin@painel.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("one")
	require.NoError(t, err)
	verifier, err := NewTokenManager("two")
	require.NoError(t, err)

	tok, err := issuer.Issue("admin@painel.com")
	require.NoError(t, err)

	_, err = verifier.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	m, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "admin@painel.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParse_RequiresExpiry(t *testing.T) {
	m, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "admin@painel.com",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
