package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenPairAndRefresh(t *testing.T) {
	require.NoError(t, Init())

	access, refresh, expiresIn, err := GenerateTokenPair("1234567890")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Greater(t, expiresIn, 0)

	sid, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", sid)
}

func TestValidateRefreshTokenRejectsAccessToken(t *testing.T) {
	require.NoError(t, Init())

	access, _, _, err := GenerateTokenPair("42")
	require.NoError(t, err)

	// access token 没有 type=refresh 声明
	_, err = ValidateRefreshToken(access)
	require.Error(t, err)
}

func TestValidateRefreshTokenRejectsGarbage(t *testing.T) {
	require.NoError(t, Init())

	_, err := ValidateRefreshToken("not-a-jwt")
	require.Error(t, err)
}
