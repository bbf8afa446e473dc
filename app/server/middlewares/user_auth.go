package middlewares

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/constants"
	"daily-journalist/app/server/jwt"
	"daily-journalist/app/server/models"
)

// ContextKeyUser 是 echo context 中当前用户的键，未认证请求不设置。
const ContextKeyUser = "user"

// UserAuth 解析 Bearer JWT 并加载完整的用户记录（带 redis 缓存）。
// 没有携带 token 的请求按匿名放行，公开接口自己决定是否拒绝；
// 带了无效 token 的请求直接拒绝。
func UserAuth(db *gorm.DB, rdb *redis.Client, j *jwt.JWT, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 提取 token
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				// 匿名请求
				return next(c)
			}

			splits := strings.Split(authHeader, " ")
			if len(splits) != 2 {
				return c.NoContent(http.StatusUnauthorized)
			}

			if strings.ToLower(splits[0]) != "bearer" {
				return c.NoContent(http.StatusUnauthorized)
			}

			// 验证 token
			jwtUser, err := j.ParseUser(splits[1])
			if err != nil {
				return c.NoContent(http.StatusUnauthorized)
			}

			var user models.User

			rctx := c.Request().Context()

			// 查询缓存
			cacheKey := fmt.Sprintf(constants.CacheKeyUserInfo, jwtUser.ID)
			if cacheBytes, err := rdb.Get(rctx, cacheKey).Bytes(); err != nil {
				if !errors.Is(err, redis.Nil) {
					l.Error("failed to query cache for user info", zap.Uint("id", jwtUser.ID), zap.Error(err))
				}
			} else if err = json.Unmarshal(cacheBytes, &user); err != nil {
				l.Error("failed to unmarshal user info", zap.Uint("id", jwtUser.ID), zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
				// 可能是无效的缓存，清理掉
				rdb.Del(rctx, cacheKey)
			} else {
				// 成功拉取到并格式化
				c.Set(ContextKeyUser, &user)
				return next(c)
			}

			// 查询数据库
			if err = db.WithContext(rctx).First(&user, "id = ?", jwtUser.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// 用户已被删除， token 不再有效
					return c.NoContent(http.StatusUnauthorized)
				} else {
					return c.NoContent(http.StatusInternalServerError)
				}
			}

			// 格式化并加入缓存，方便下一次查询
			if cacheBytes, err := json.Marshal(&user); err != nil {
				l.Error("failed to marshal user info", zap.Uint("id", jwtUser.ID), zap.Error(err))
			} else {
				rdb.Set(rctx, cacheKey, cacheBytes, constants.CacheExpireUserInfo)
			}

			// 设置 context
			c.Set(ContextKeyUser, &user)

			// 继续处理
			return next(c)
		}
	}
}
