package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/models"
	"daily-journalist/app/server/types"
	"daily-journalist/app/server/utils"
)

func (a *App) newsletterInfoResponse(newsletter *models.Newsletter) *types.NewsletterInfoWithID {
	articleIDs := []uint{}
	for _, article := range newsletter.Articles {
		articleIDs = append(articleIDs, article.ID)
	}

	return &types.NewsletterInfoWithID{
		ID:          newsletter.ID,
		Title:       newsletter.Title,
		Description: newsletter.Description,
		Author:      newsletter.AuthorID,
		AuthorName:  newsletter.Author.Username,
		ArticleIDs:  articleIDs,
		CreatedAt:   newsletter.CreatedAt,
	}
}

func (a *App) newsletterMapFields(req *types.NewsletterInfoInput, newsletter *models.Newsletter) {
	if req.Title != nil {
		newsletter.Title = *req.Title
	}
	if req.Description != nil {
		newsletter.Description = *req.Description
	}
}

func (a *App) NewsletterList(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	var (
		newsletters      []models.Newsletter
		newslettersCount int64
	)

	page, limit := a.paginationParams(c)
	showAll, parsedPage, parsedLimit := a.parsePagination(page, limit)

	queryBase := a.db.WithContext(rctx).Model(&models.Newsletter{}).
		Preload("Author").Preload("Articles").
		Order("created_at DESC")
	if !showAll {
		queryBase = queryBase.Limit(parsedLimit).Offset(parsedPage * parsedLimit)
	}

	if err := queryBase.Find(&newsletters).Error; err != nil {
		a.l.Error("failed to get newsletter list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.Newsletter{}).Count(&newslettersCount).Error; err != nil {
		a.l.Error("failed to count newsletter", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resNewsletters := []types.NewsletterInfoWithID{}
	for i := range newsletters {
		resNewsletters = append(resNewsletters, *a.newsletterInfoResponse(&newsletters[i]))
	}

	return c.JSON(http.StatusOK, &types.NewsletterListResponse{
		Limit:   utils.P(parsedLimit),
		PageMax: utils.P(a.calcMaxPage(newslettersCount, showAll, parsedLimit)),
		List:    resNewsletters,
	})
}

func (a *App) loadNewsletter(c echo.Context, id uint) (*models.Newsletter, error) {
	var newsletter models.Newsletter
	if err := a.db.WithContext(c.Request().Context()).
		Preload("Author").Preload("Articles").
		First(&newsletter, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &newsletter, nil
}

func (a *App) NewsletterInfoGet(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	newsletter, err := a.loadNewsletter(c, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get newsletter", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, a.newsletterInfoResponse(newsletter))
}

func (a *App) NewsletterCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, (*models.User).IsStaffMember)
	if err != nil {
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.NewsletterInfoInput
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Title == nil || *req.Title == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 创建
	newsletter := models.Newsletter{
		AuthorID: user.ID,
	}
	a.newsletterMapFields(&req, &newsletter)

	// 验证文章 id 集合
	if req.ArticleIDs != nil {
		if err, statusCode := validateIDs[models.Article](a.db.WithContext(rctx), *req.ArticleIDs); err != nil {
			a.l.Error("failed to validate articles", zap.Error(err))
			return a.er(c, statusCode)
		}
	}

	if err := a.db.WithContext(rctx).Create(&newsletter).Error; err != nil {
		a.l.Error("failed to create newsletter", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if req.ArticleIDs != nil && len(*req.ArticleIDs) > 0 {
		var articles []models.Article
		if err := a.db.WithContext(rctx).Find(&articles, *req.ArticleIDs).Error; err != nil {
			a.l.Error("failed to load articles", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		if err := a.db.WithContext(rctx).Model(&newsletter).Association("Articles").Replace(articles); err != nil {
			a.l.Error("failed to set newsletter articles", zap.Uint("id", newsletter.ID), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	newsletter.Author = *user

	return c.JSON(http.StatusCreated, a.newsletterInfoResponse(&newsletter))
}

func (a *App) NewsletterInfoUpdate(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, (*models.User).IsStaffMember)
	if err != nil {
		return a.er(c, statusCode)
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.NewsletterInfoInput
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	newsletter, err := a.loadNewsletter(c, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get newsletter", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 所有权规则：作者本人或编辑
	if user.ID != newsletter.AuthorID && !user.IsEditor() {
		return a.er(c, http.StatusForbidden)
	}

	a.newsletterMapFields(&req, newsletter)

	if req.ArticleIDs != nil {
		if err, statusCode := validateIDs[models.Article](a.db.WithContext(rctx), *req.ArticleIDs); err != nil {
			a.l.Error("failed to validate articles", zap.Error(err))
			return a.er(c, statusCode)
		}
	}

	// 更新信息
	if err := a.db.WithContext(rctx).Model(newsletter).Updates(map[string]interface{}{
		"title":       newsletter.Title,
		"description": newsletter.Description,
	}).Error; err != nil {
		a.l.Error("failed to update newsletter", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 替换文章集合
	if req.ArticleIDs != nil {
		var articles []models.Article
		if len(*req.ArticleIDs) > 0 {
			if err := a.db.WithContext(rctx).Find(&articles, *req.ArticleIDs).Error; err != nil {
				a.l.Error("failed to load articles", zap.Error(err))
				return a.er(c, http.StatusInternalServerError)
			}
		}
		if err := a.db.WithContext(rctx).Model(newsletter).Association("Articles").Replace(articles); err != nil {
			a.l.Error("failed to set newsletter articles", zap.Uint("id", newsletter.ID), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		newsletter.Articles = articles
	}

	return c.JSON(http.StatusOK, a.newsletterInfoResponse(newsletter))
}

func (a *App) NewsletterDelete(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, (*models.User).IsStaffMember)
	if err != nil {
		return a.er(c, statusCode)
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	var newsletter models.Newsletter
	if err := a.db.WithContext(rctx).First(&newsletter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get newsletter", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if user.ID != newsletter.AuthorID && !user.IsEditor() {
		return a.er(c, http.StatusForbidden)
	}

	if err := a.db.WithContext(rctx).Delete(&newsletter).Error; err != nil {
		a.l.Error("failed to delete newsletter", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
