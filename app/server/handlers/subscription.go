package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/models"
	"daily-journalist/app/server/types"
)

// SubscriptionToggle 对称切换一条关注边：存在则删除，不存在则添加。
// 只有读者角色可以订阅，其他角色（包括超级用户）一律 403 。
func (a *App) SubscriptionToggle(c echo.Context) error {
	// 抓取 user 信息（认证），读者专属，这里检查的是字面角色而不是能力谓词
	user, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}
	if user.Role != models.RoleReader {
		return a.erMsg(c, http.StatusForbidden, "Only Readers can subscribe.")
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	kind := models.FollowKind(c.Param("kind"))
	if !kind.Valid() {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 目标用户必须存在
	var target models.User
	if err := a.db.WithContext(rctx).First(&target, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get target user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 查找现有边
	var edge models.FollowEdge
	err = a.db.WithContext(rctx).
		First(&edge, "follower_id = ? AND followee_id = ? AND kind = ?", user.ID, target.ID, kind).Error
	if err == nil {
		// 边存在，删除
		if err := a.db.WithContext(rctx).Delete(&edge).Error; err != nil {
			a.l.Error("failed to remove follow edge", zap.Uint("follower", user.ID), zap.Uint("followee", target.ID), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, &types.SubscriptionToggleResponse{
			Subscribed: false,
			Message:    fmt.Sprintf("Unsubscribed from %s", target.Username),
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.l.Error("failed to query follow edge", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 边不存在，添加。并发重复添加时唯一索引会拦下第二条，当作已订阅处理
	edge = models.FollowEdge{
		FollowerID: user.ID,
		FolloweeID: target.ID,
		Kind:       kind,
	}
	if err := a.db.WithContext(rctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusOK, &types.SubscriptionToggleResponse{
				Subscribed: true,
				Message:    fmt.Sprintf("Subscribed to %s!", target.Username),
			})
		}
		a.l.Error("failed to create follow edge", zap.Uint("follower", user.ID), zap.Uint("followee", target.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &types.SubscriptionToggleResponse{
		Subscribed: true,
		Message:    fmt.Sprintf("Subscribed to %s!", target.Username),
	})
}

// SubscriptionList 列出当前读者关注的记者与出版方。
func (a *App) SubscriptionList(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}
	if user.Role != models.RoleReader {
		return a.erMsg(c, http.StatusForbidden, "Only Readers can subscribe.")
	}

	rctx := c.Request().Context()

	followees := func(kind models.FollowKind) ([]types.UserInfoWithID, error) {
		var users []models.User
		if err := a.db.WithContext(rctx).
			Joins("JOIN follow_edges ON follow_edges.followee_id = users.id").
			Where("follow_edges.follower_id = ? AND follow_edges.kind = ?", user.ID, kind).
			Find(&users).Error; err != nil {
			return nil, err
		}

		res := []types.UserInfoWithID{}
		for i := range users {
			res = append(res, *a.userInfoResponse(&users[i], false))
		}
		return res, nil
	}

	journalists, err := followees(models.FollowKindJournalist)
	if err != nil {
		a.l.Error("failed to list followed journalists", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	publishers, err := followees(models.FollowKindPublisher)
	if err != nil {
		a.l.Error("failed to list followed publishers", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &types.SubscriptionListResponse{
		Journalists: journalists,
		Publishers:  publishers,
	})
}
