package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/constants"
	"daily-journalist/app/server/models"
	"daily-journalist/app/server/notify"
	"daily-journalist/app/server/types"
	"daily-journalist/app/server/utils"
)

func (a *App) articleInfoResponse(article *models.Article) *types.ArticleInfoWithID {
	res := &types.ArticleInfoWithID{
		ID:        article.ID,
		Title:     article.Title,
		Content:   article.Content,
		Author:    article.AuthorID,
		Publisher: article.PublisherID,
		Approved:  article.Approved,
		CreatedAt: article.CreatedAt,
	}
	res.AuthorName = article.Author.Username
	if article.Publisher != nil {
		res.PublisherName = article.Publisher.Username
	}
	return res
}

// articleMapFields 把请求里出现的字段映射到模型上
func (a *App) articleMapFields(req *types.ArticleInfoInput, article *models.Article) {
	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.Publisher != nil {
		article.PublisherID = req.Publisher
	}
}

func (a *App) articleValidate(ctx context.Context, article *models.Article) (error, int) {
	// 检查 publisher id ：必须指向一个编辑角色的用户
	if article.PublisherID != nil {
		var publisher models.User
		if err := a.db.WithContext(ctx).First(&publisher, "id = ?", *article.PublisherID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("publisher not found"), http.StatusBadRequest
			}
			return fmt.Errorf("find publisher: %w", err), http.StatusInternalServerError
		}
		if publisher.Role != models.RoleEditor {
			return fmt.Errorf("publisher is not an editor"), http.StatusBadRequest
		}
	}

	return nil, http.StatusOK
}

// loadArticle 带作者与出版方一起取出文章
func (a *App) loadArticle(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := a.db.WithContext(ctx).
		Preload("Author").Preload("Publisher").
		First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (a *App) invalidateArticleCache(c echo.Context, id uint) {
	a.rdb.Del(c.Request().Context(), fmt.Sprintf(constants.CacheKeyArticleInfo, id))
}

func (a *App) listArticles(c echo.Context, scope func(*gorm.DB) *gorm.DB) error {
	rctx := c.Request().Context()

	var (
		articles      []models.Article
		articlesCount int64
	)

	page, limit := a.paginationParams(c)
	showAll, parsedPage, parsedLimit := a.parsePagination(page, limit)

	queryBase := a.db.WithContext(rctx).Model(&models.Article{}).
		Scopes(scope).
		Preload("Author").Preload("Publisher").
		Order("created_at DESC")
	if !showAll {
		queryBase = queryBase.Limit(parsedLimit).Offset(parsedPage * parsedLimit)
	}

	if err := queryBase.Find(&articles).Error; err != nil {
		a.l.Error("failed to get article list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.Article{}).Scopes(scope).Count(&articlesCount).Error; err != nil {
		a.l.Error("failed to count article", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resArticles := []types.ArticleInfoWithID{}
	for i := range articles {
		resArticles = append(resArticles, *a.articleInfoResponse(&articles[i]))
	}

	return c.JSON(http.StatusOK, &types.ArticleListResponse{
		Limit:   utils.P(parsedLimit),
		PageMax: utils.P(a.calcMaxPage(articlesCount, showAll, parsedLimit)),
		List:    resArticles,
	})
}

// ArticleList 公开列表：任何调用方都只能看到已审批的文章。
func (a *App) ArticleList(c echo.Context) error {
	return a.listArticles(c, func(db *gorm.DB) *gorm.DB {
		return db.Where("approved = ?", true)
	})
}

// ArticlePendingList 编辑的待审列表。
func (a *App) ArticlePendingList(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, (*models.User).IsEditor)
	if err != nil {
		return a.er(c, statusCode)
	}

	return a.listArticles(c, func(db *gorm.DB) *gorm.DB {
		return db.Where("approved = ?", false)
	})
}

// ArticleMineList 记者本人的稿件列表。
func (a *App) ArticleMineList(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, (*models.User).IsJournalist)
	if err != nil {
		return a.er(c, statusCode)
	}

	return a.listArticles(c, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", user.ID)
	})
}

// ArticleSubscribedList 订阅流：已审批，且作者或出版方被当前用户关注。
func (a *App) ArticleSubscribedList(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}

	return a.listArticles(c, func(db *gorm.DB) *gorm.DB {
		followed := a.db.Model(&models.FollowEdge{}).
			Select("followee_id").
			Where("follower_id = ? AND kind = ?", user.ID, models.FollowKindJournalist)
		followedPub := a.db.Model(&models.FollowEdge{}).
			Select("followee_id").
			Where("follower_id = ? AND kind = ?", user.ID, models.FollowKindPublisher)

		return db.Where("approved = ?", true).
			Where("author_id IN (?) OR publisher_id IN (?)", followed, followedPub)
	})
}

// ArticleInfoGet 文章详情：未审批的只有作者和编辑能看到，其他人 404 （不暴露存在性）。
func (a *App) ArticleInfoGet(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()
	user := a.currentUser(c)

	var article *models.Article

	// 查询缓存（只缓存已审批的文章，未审批的走权限分支）
	cacheKey := fmt.Sprintf(constants.CacheKeyArticleInfo, id)
	var cached models.Article
	if cacheBytes, err := a.rdb.Get(rctx, cacheKey).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			a.l.Error("failed to query cache for article info", zap.Uint("id", id), zap.Error(err))
		}
	} else if err = json.Unmarshal(cacheBytes, &cached); err != nil {
		a.l.Error("failed to unmarshal article info", zap.Uint("id", id), zap.Error(err))
		// 可能是无效的缓存，清理掉
		a.rdb.Del(rctx, cacheKey)
	} else {
		article = &cached
	}

	if article == nil {
		article, err = a.loadArticle(rctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return a.er(c, http.StatusNotFound)
			}
			a.l.Error("failed to get article", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}

		if article.Approved {
			// 格式化并加入缓存，方便下一次查询
			if cacheBytes, err := json.Marshal(article); err != nil {
				a.l.Error("failed to marshal article info", zap.Uint("id", id), zap.Error(err))
			} else {
				a.rdb.Set(rctx, cacheKey, cacheBytes, constants.CacheExpireArticleInfo)
			}
		}
	}

	if !article.Approved {
		userIsAuthor := user != nil && user.ID == article.AuthorID
		if !userIsAuthor && !user.IsEditor() {
			return a.er(c, http.StatusNotFound)
		}
	}

	return c.JSON(http.StatusOK, a.articleInfoResponse(article))
}

// ArticleCreate 投稿，记者专属。作者固定为当前用户，审批标记固定为 false 。
func (a *App) ArticleCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, (*models.User).IsJournalist)
	if err != nil {
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.ArticleInfoInput
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Title == nil || *req.Title == "" || req.Content == nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 创建
	article := models.Article{
		AuthorID: user.ID,
		Approved: false,
	}
	a.articleMapFields(&req, &article)

	// 验证
	if err, statusCode = a.articleValidate(rctx, &article); err != nil {
		a.l.Error("failed to validate article", zap.Error(err))
		return a.er(c, statusCode)
	}

	if err := a.db.WithContext(rctx).Create(&article).Error; err != nil {
		a.l.Error("failed to create article", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	article.Author = *user

	return c.JSON(http.StatusCreated, a.articleInfoResponse(&article))
}

// ArticleInfoUpdate 编辑文章，作者或编辑可用。
// 任何内容变更都会使既有审批失效：审批标记无条件重置为 false ，强制重审。
func (a *App) ArticleInfoUpdate(c echo.Context) error {
	// 抓取 user 信息（认证）
	user, err, statusCode := a.authUser(c, nil)
	if err != nil {
		return a.er(c, statusCode)
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req types.ArticleInfoInput
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得
	article, err := a.loadArticle(rctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get article", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 所有权规则：作者本人或编辑
	if user.ID != article.AuthorID && !user.IsEditor() {
		return a.er(c, http.StatusForbidden)
	}

	a.articleMapFields(&req, article)
	article.Approved = false

	// 验证
	if err, statusCode = a.articleValidate(rctx, article); err != nil {
		a.l.Error("failed to validate article", zap.Error(err))
		return a.er(c, statusCode)
	}

	// 更新信息
	if err := a.db.WithContext(rctx).Model(article).
		Select("title", "content", "publisher_id", "approved").
		Updates(map[string]interface{}{
			"title":        article.Title,
			"content":      article.Content,
			"publisher_id": article.PublisherID,
			"approved":     false,
		}).Error; err != nil {
		a.l.Error("failed to update article", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.invalidateArticleCache(c, article.ID)

	return c.JSON(http.StatusOK, a.articleInfoResponse(article))
}

// ArticleDelete 删除文章，作者或编辑可用，评论级联删除。
func (a *App) ArticleDelete(c echo.Context) error {
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

	var article models.Article
	if err := a.db.WithContext(rctx).First(&article, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get article", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if user.ID != article.AuthorID && !user.IsEditor() {
		return a.er(c, http.StatusForbidden)
	}

	// 软删除会让级联约束失效，这里在一个事务里把评论一并收走
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", article.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&article).Error
	}); err != nil {
		a.l.Error("failed to delete article", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.invalidateArticleCache(c, article.ID)

	return c.NoContent(http.StatusOK)
}

// ArticleApprove 审批工作流，编辑专属。状态机是单向的 Draft → Published ：
// 对已审批的文章再次调用是受保护的空操作，不会重发通知（两种旧实现都会重发，
// 这里明确收敛为只发一次）。审批写入先于通知提交，邮件失败会让请求整体失败，
// 但文章保持已审批状态。通告调用仅为尽力而为，失败降级为警告。
func (a *App) ArticleApprove(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authUser(c, (*models.User).IsEditor)
	if err != nil {
		return a.er(c, statusCode)
	}

	id, err := a.pathID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 1. 取出文章
	article, err := a.loadArticle(rctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get article", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if article.Approved {
		// 受保护的空操作
		return c.JSON(http.StatusOK, &types.ArticleApproveResponse{
			Status: fmt.Sprintf("Article '%s' already approved.", article.Title),
		})
	}

	// 2. 写入审批标记
	if err := a.db.WithContext(rctx).Model(article).Update("approved", true).Error; err != nil {
		a.l.Error("failed to approve article", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	a.invalidateArticleCache(c, article.ID)

	// 3. 计算收件人集合
	var publisherFollowers, authorFollowers []string
	if article.PublisherID != nil {
		if publisherFollowers, err = a.followerEmails(rctx, *article.PublisherID, models.FollowKindPublisher); err != nil {
			a.l.Error("failed to collect publisher followers", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}
	if authorFollowers, err = a.followerEmails(rctx, article.AuthorID, models.FollowKindJournalist); err != nil {
		a.l.Error("failed to collect author followers", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	recipients := notify.BuildRecipientList(a.operator, publisherFollowers, authorFollowers)

	// 4. 发送通知邮件，失败对请求是致命的（此时审批已提交，这个缺口是记录在案的设计现状）
	articleURL := fmt.Sprintf("%s/article/%d/", a.baseURL, article.ID)
	subject := fmt.Sprintf("New Article Approved: %s", article.Title)
	body := fmt.Sprintf("Your article '%s' is now live!\nView it here: %s", article.Title, articleURL)
	if err := a.mailer.Send(rctx, recipients, subject, body); err != nil {
		a.l.Error("failed to send approval mail", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 5. 尽力而为的社交平台通告，限时，失败只降级为警告
	res := &types.ArticleApproveResponse{
		Status: fmt.Sprintf("Article '%s' published!", article.Title),
	}
	announceCtx, cancel := context.WithTimeout(rctx, constants.AnnounceTimeout)
	defer cancel()
	if err := a.announcer.Announce(announceCtx, article.Title, "Published #NewsApp", article.AuthorID); err != nil {
		a.l.Warn("social media notification failed", zap.Uint("id", id), zap.Error(err))
		res.Warning = "Social media notification failed."
	}

	return c.JSON(http.StatusOK, res)
}

// followerEmails 取出关注某个用户的读者邮箱（可能包含空串，由收件人组装环节过滤）
func (a *App) followerEmails(ctx context.Context, followeeID uint, kind models.FollowKind) ([]string, error) {
	var emails []string
	if err := a.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follow_edges ON follow_edges.follower_id = users.id").
		Where("follow_edges.followee_id = ? AND follow_edges.kind = ?", followeeID, kind).
		Pluck("users.email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}
