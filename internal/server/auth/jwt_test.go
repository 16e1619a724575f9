package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/sealdrop/sealdrop/internal/common"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("u-1", secret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := GetUserIDFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "u-1", userID)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("u-1", []byte("right"), time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("wrong"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	token, err := GenerateToken("u-1", []byte("secret"), -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("secret"))
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not.a.token", []byte("secret"))
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestHashPassword_DeterministicPerSalt(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := []byte("fixed-salt-32-bytes-aaaaaaaaaaaa")

	a := HashPassword(password, salt)
	b := HashPassword(password, salt)
	require.Equal(t, a, b)
	require.Len(t, a, 32)

	c := HashPassword(password, []byte("another-salt-32-bytes-bbbbbbbbbb"))
	require.NotEqual(t, a, c)
}

func TestCheckPassword(t *testing.T) {
	password := []byte("s3cret")
	salt := []byte("salt")
	stored := HashPassword(password, salt)

	require.True(t, CheckPassword([]byte("s3cret"), salt, stored))
	require.False(t, CheckPassword([]byte("wrong"), salt, stored))
	require.False(t, CheckPassword([]byte("s3cret"), []byte("other"), stored))
}
