package handlers

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 手动绑定全部路由，中间件由 main 套在整个 /api 分组上。
func (a *App) RegisterRoutes(api *echo.Group) {
	api.GET("/healthcheck", a.HealthCheck)

	// 认证
	api.POST("/auth/register", a.AuthRegister)
	api.POST("/auth/login", a.AuthLogin)
	api.POST("/auth/password-reset", a.AuthPasswordReset)
	api.POST("/auth/password-reset/confirm", a.AuthPasswordResetConfirm)

	// 用户
	api.GET("/users/me", a.UserInfoGetSelf)
	api.GET("/users/:id", a.UserInfoGet)
	api.PUT("/users/:id/role", a.UserRoleUpdate)

	// 订阅
	api.POST("/subscriptions/:id/:kind", a.SubscriptionToggle)
	api.GET("/subscriptions", a.SubscriptionList)

	// 文章，具名路由要注册在 :id 之前
	api.GET("/articles", a.ArticleList)
	api.GET("/articles/pending", a.ArticlePendingList)
	api.GET("/articles/mine", a.ArticleMineList)
	api.GET("/articles/subscribed", a.ArticleSubscribedList)
	api.POST("/articles", a.ArticleCreate)
	api.GET("/articles/:id", a.ArticleInfoGet)
	api.PUT("/articles/:id", a.ArticleInfoUpdate)
	api.DELETE("/articles/:id", a.ArticleDelete)
	api.POST("/articles/:id/approve", a.ArticleApprove)

	// 评论
	api.GET("/articles/:id/comments", a.CommentList)
	api.POST("/articles/:id/comments", a.CommentCreate)

	// 简报
	api.GET("/newsletters", a.NewsletterList)
	api.GET("/newsletters/:id", a.NewsletterInfoGet)
	api.POST("/newsletters", a.NewsletterCreate)
	api.PUT("/newsletters/:id", a.NewsletterInfoUpdate)
	api.DELETE("/newsletters/:id", a.NewsletterDelete)
}
