package service

import (
	"testing"
	"time"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	setup(t)
	defer teardown()

	auth := AuthService{}
	want := entity.Identity{Id: 7, Username: "cozinha", Role: model.RoleEmployee}
	tok, exp, err := auth.IssueToken(want)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	got, err := auth.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseTokenRejects(t *testing.T) {
	setup(t)
	defer teardown()

	auth := AuthService{}
	secret, err := auth.secret()
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	valid := jwt.MapClaims{"id": 1, "username": "admin", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}
	expired := jwt.MapClaims{"id": 1, "username": "admin", "role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}
	badRole := jwt.MapClaims{"id": 1, "username": "admin", "role": "root", "exp": time.Now().Add(time.Hour).Unix()}

	for name, tok := range map[string]string{
		"garbage":    "not-a-token",
		"wrong key":  sign(jwt.SigningMethodHS256, []byte("other"), valid),
		"expired":    sign(jwt.SigningMethodHS256, secret, expired),
		"bad role":   sign(jwt.SigningMethodHS256, secret, badRole),
		"other HMAC": sign(jwt.SigningMethodHS512, secret, valid),
	} {
		_, err := auth.ParseToken(tok)
		assert.ErrorIs(t, err, ErrInvalidCredentials, name)
	}
}
