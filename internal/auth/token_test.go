package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("acc-123", "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "acc-123", accountID)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("acc-123", "secret", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(token, "other-secret")
	assert.Error(t, err)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := IssueToken("acc-123", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, "secret")
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken("not-a-token", "secret")
	assert.Error(t, err)
}
