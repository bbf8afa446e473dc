package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-journalist/app/server/models"
	"daily-journalist/app/server/types"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register", "", &types.RegisterRequest{
		Username: "newreader",
		Email:    "nr@x.example",
		Password: "hunter22",
		Role:     string(models.RoleReader),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	res := decodeBody[types.UserInfoWithID](t, rec)
	assert.Equal(t, "newreader", res.Username)
	assert.Equal(t, string(models.RoleReader), res.Role)

	// 登录拿 token
	rec = env.request(t, http.MethodPost, "/api/auth/login", "", &types.LoginRequest{
		Username: strP("newreader"),
		Password: strP("hunter22"),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[types.LoginToken](t, rec)
	require.NotNil(t, token.Token)

	// token 可用
	rec = env.request(t, http.MethodGet, "/api/users/me", *token.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[types.UserInfoWithID](t, rec)
	assert.Equal(t, "newreader", me.Username)
	assert.Equal(t, "nr@x.example", me.Email)
}

func TestRegisterStaffRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register", "", &types.RegisterRequest{
		Username: "scribbler",
		Password: "hunter22",
		Role:     string(models.RoleJournalist),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, env.db.First(&user, "username = ?", "scribbler").Error)
	assert.True(t, user.IsStaff, "记者注册时就应带上 staff 派生字段")
	assert.False(t, user.IsSuperuser)
}

func TestRegisterInvalidRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register", "", &types.RegisterRequest{
		Username: "sneaky",
		Password: "hunter22",
		Role:     "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "reader", models.RoleReader, "")

	rec := env.request(t, http.MethodPost, "/api/auth/login", "", &types.LoginRequest{
		Username: strP("reader"),
		Password: strP("wrong"),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/auth/login", "", &types.LoginRequest{
		Username: strP("ghost"),
		Password: strP("whatever"),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "reader", models.RoleReader, "reader@x.example")

	rec := env.request(t, http.MethodPost, "/api/auth/password-reset", "", &types.PasswordResetRequest{
		Email: "reader@x.example",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, []string{"reader@x.example"}, env.mailer.sent[0].To)

	// 从邮件正文提出令牌
	body := env.mailer.sent[0].Body
	idx := len("Use this token to reset your password: ")
	require.Greater(t, len(body), idx)
	token := body[idx:]
	if nl := strings.IndexByte(token, '\n'); nl >= 0 {
		token = token[:nl]
	}

	rec = env.request(t, http.MethodPost, "/api/auth/password-reset/confirm", "", &types.PasswordResetConfirmRequest{
		Token:    token,
		Password: "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// 新密码可以登录
	rec = env.request(t, http.MethodPost, "/api/auth/login", "", &types.LoginRequest{
		Username: strP("reader"),
		Password: strP("brand-new-pass"),
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// 令牌一次性使用
	rec = env.request(t, http.MethodPost, "/api/auth/password-reset/confirm", "", &types.PasswordResetConfirmRequest{
		Token:    token,
		Password: "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	// 不暴露邮箱是否注册过
	rec := env.request(t, http.MethodPost, "/api/auth/password-reset", "", &types.PasswordResetRequest{
		Email: "ghost@x.example",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.mailer.sent)
}
