package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/models"
	"daily-journalist/app/server/types"
)

func (a *App) userInfoResponse(user *models.User, includePrivate bool) *types.UserInfoWithID {
	res := &types.UserInfoWithID{
		ID:       user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}
	if includePrivate {
		res.Email = user.Email
		res.Name = user.Name
	}
	return res
}

func (a *App) pathID(c echo.Context) (uint, error) {
	idUint64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(idUint64), nil
}

func (a *App) UserInfoGetSelf(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}

	return c.JSON(http.StatusOK, a.userInfoResponse(user, true))
}

func (a *App) UserInfoGet(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 从数据库中获得指定的用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	return c.JSON(http.StatusOK, a.userInfoResponse(&user, false))
}

// UserRoleUpdate 调整角色，仅超级用户可用。保存路径上显式执行角色规则：
// 重算 staff 派生字段，提升为记者或编辑时清空该用户的全部关注边。
func (a *App) UserRoleUpdate(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, func(u *models.User) bool { return u.IsSuperuser })
	if err != nil {
		return a.er(c, statusCode)
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.UserRoleUpdateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Role == nil || !models.Role(*req.Role).Valid() {
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 更新用户信息
	user.Role = models.Role(*req.Role)
	user.ApplyRoleRules()
	if err := a.db.WithContext(rctx).Model(&user).Updates(map[string]interface{}{
		"role":     user.Role,
		"is_staff": user.IsStaff,
	}).Error; err != nil {
		a.l.Error("failed to update user", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 保存后的显式钩子：非读者不持有关注边
	if err := models.SyncRoleEdges(a.db.WithContext(rctx), &user); err != nil {
		a.l.Error("failed to sync role edges", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.invalidateUserCache(c, user.ID)

	return c.JSON(http.StatusOK, a.userInfoResponse(&user, true))
}
