package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"daily-journalist/app/server/constants"
	"daily-journalist/app/server/middlewares"
	"daily-journalist/app/server/models"
)

// currentUser 取中间件解析出的当前用户，匿名请求返回 nil 。
func (a *App) currentUser(c echo.Context) *models.User {
	user, _ := c.Get(middlewares.ContextKeyUser).(*models.User)
	return user
}

// authUser 统一的认证与角色检查入口：未认证返回 401 ，谓词不通过返回 403 。
// require 为 nil 时只要求已认证。谓词全部来自 models 包，避免各入口各写一份。
func (a *App) authUser(c echo.Context, require func(*models.User) bool) (*models.User, error, int) {
	user := a.currentUser(c)
	if user == nil {
		return nil, fmt.Errorf("missing auth token"), http.StatusUnauthorized
	}

	if require != nil && !require(user) {
		return nil, fmt.Errorf("role %s not allowed", user.Role), http.StatusForbidden
	}

	return user, nil, http.StatusOK
}

// invalidateUserCache 在用户记录变更后清理缓存，避免中间件读到旧角色。
func (a *App) invalidateUserCache(c echo.Context, id uint) {
	a.rdb.Del(c.Request().Context(), fmt.Sprintf(constants.CacheKeyUserInfo, id))
}
