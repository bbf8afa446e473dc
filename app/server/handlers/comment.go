package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/models"
	"daily-journalist/app/server/types"
)

func (a *App) commentInfoResponse(comment *models.Comment) *types.CommentInfoWithID {
	return &types.CommentInfoWithID{
		ID:         comment.ID,
		Article:    comment.ArticleID,
		Author:     comment.AuthorID,
		AuthorName: comment.Author.Username,
		Text:       comment.Text,
		CreatedAt:  comment.CreatedAt,
	}
}

// visibleArticle 按详情页的可见性规则取文章：未审批的只有作者和编辑可见
func (a *App) visibleArticle(c echo.Context, id uint) (*models.Article, error, int) {
	rctx := c.Request().Context()
	user := a.currentUser(c)

	var article models.Article
	if err := a.db.WithContext(rctx).First(&article, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err, http.StatusNotFound
		}
		return nil, err, http.StatusInternalServerError
	}

	if !article.Approved {
		userIsAuthor := user != nil && user.ID == article.AuthorID
		if !userIsAuthor && !user.IsEditor() {
			return nil, gorm.ErrRecordNotFound, http.StatusNotFound
		}
	}

	return &article, nil, http.StatusOK
}

func (a *App) CommentList(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	article, err, statusCode := a.visibleArticle(c, id)
	if err != nil {
		if statusCode == http.StatusInternalServerError {
			a.l.Error("failed to get article", zap.Uint("id", id), zap.Error(err))
		}
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	var comments []models.Comment
	if err := a.db.WithContext(rctx).
		Preload("Author").
		Where("article_id = ?", article.ID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		a.l.Error("failed to get comment list", zap.Uint("article", article.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resComments := []types.CommentInfoWithID{}
	for i := range comments {
		resComments = append(resComments, *a.commentInfoResponse(&comments[i]))
	}

	return c.JSON(http.StatusOK, resComments)
}

func (a *App) CommentCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	article, err, statusCode := a.visibleArticle(c, id)
	if err != nil {
		if statusCode == http.StatusInternalServerError {
			a.l.Error("failed to get article", zap.Uint("id", id), zap.Error(err))
		}
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.CommentCreateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Text == "" {
		return a.er(c, http.StatusBadRequest)
	}

	comment := models.Comment{
		ArticleID: article.ID,
		AuthorID:  user.ID,
		Text:      req.Text,
	}
	if err := a.db.WithContext(rctx).Create(&comment).Error; err != nil {
		a.l.Error("failed to create comment", zap.Uint("article", article.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	comment.Author = *user

	return c.JSON(http.StatusCreated, a.commentInfoResponse(&comment))
}
