package jwtcodec

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensVerifyWithGolangJWT(t *testing.T) {
	codec := mustCodec(t, Config{Key: testKey})

	token, err := codec.EncodeText(`{alg: 'HS256', typ: 'JWT'}`, `{sub: 'user-1', admin: true, exp: 4102444800}`)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
	assert.Equal(t, true, claims["admin"])
}

func TestGolangJWTTokensDecode(t *testing.T) {
	codec := mustCodec(t)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-2",
		"roles": []string{"reader"},
	}).SignedString([]byte(testKey))
	require.NoError(t, err)

	header, payload, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, "HS256", string(header.GetStringBytes("alg")))
	assert.Equal(t, "user-2", string(payload.GetStringBytes("sub")))
	assert.Equal(t, "reader", string(payload.GetStringBytes("roles", "0")))

	require.NoError(t, codec.Verify(signed, []byte(testKey)))
}
