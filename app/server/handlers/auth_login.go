package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/constants"
	"daily-journalist/app/server/jwt"
	"daily-journalist/app/server/models"
	"daily-journalist/app/server/types"
	"daily-journalist/app/server/utils"
)

func (a *App) AuthRegister(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.RegisterRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	if req.Username == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleReader
	} else if !role.Valid() {
		return a.er(c, http.StatusBadRequest)
	}

	// 处理密码
	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 创建用户，保存前重算派生字段
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Role:     role,
		Password: passwordHash,
	}
	user.ApplyRoleRules()

	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		a.l.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, &types.UserInfoWithID{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
		Role:     string(user.Role),
	})
}

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.LoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 没有写用户名或密码
	if req.Username == nil || req.Password == nil {
		return a.er(c, http.StatusBadRequest)
	}

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "username = ?", *req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusUnauthorized)
		} else {
			a.l.Error("failed to find user", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 提取密码 hash 并进行校验
	if match, _, err := argon2id.CheckHash(*req.Password, user.Password); err != nil {
		a.l.Error("failed to check password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !match {
		// 密码不一致
		return a.er(c, http.StatusUnauthorized)
	}

	// 签出 JWT
	expires := time.Now().Add(constants.AuthTokenDuration)
	token, err := a.jwt.SignToken(&jwt.User{
		ID:      user.ID,
		Expires: expires.Unix(),
	})
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 返回
	return c.JSON(http.StatusOK, &types.LoginToken{
		Token: utils.P(token),
	})
}

func (a *App) AuthPasswordReset(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Email == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 无论邮箱是否存在都返回成功，不暴露注册状态
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "email = ?", req.Email).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.l.Error("failed to find user by email", zap.Error(err))
		}
		return c.NoContent(http.StatusOK)
	}

	// 生成一次性令牌，写入缓存
	token := uuid.NewString()
	cacheKey := fmt.Sprintf(constants.CacheKeyResetToken, token)
	if err := a.rdb.Set(rctx, cacheKey, user.ID, constants.CacheExpireResetToken).Err(); err != nil {
		a.l.Error("failed to store reset token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 发送重置邮件
	body := fmt.Sprintf("Use this token to reset your password: %s\nIt expires in %s.",
		token, constants.CacheExpireResetToken)
	if err := a.mailer.Send(rctx, []string{user.Email}, "Password Reset", body); err != nil {
		a.l.Error("failed to send reset mail", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}

func (a *App) AuthPasswordResetConfirm(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Token == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 核对令牌
	cacheKey := fmt.Sprintf(constants.CacheKeyResetToken, req.Token)
	userID, err := a.rdb.Get(rctx, cacheKey).Uint64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			a.l.Error("failed to query reset token", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		// 不存在或已过期
		return a.er(c, http.StatusBadRequest)
	}

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", uint(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusBadRequest)
		}
		a.l.Error("failed to find user", zap.Uint("id", uint(userID)), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	newPasswordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err := a.db.WithContext(rctx).Model(&user).Update("password", newPasswordHash).Error; err != nil {
		a.l.Error("failed to update password", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 令牌一次性使用
	a.rdb.Del(rctx, cacheKey)
	a.invalidateUserCache(c, user.ID)

	return c.NoContent(http.StatusOK)
}
