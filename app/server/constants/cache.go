package constants

import "time"

const (
	CacheKeyUserInfo    = "news:user:info:%d"
	CacheKeyArticleInfo = "news:article:info:%d"
	CacheKeyResetToken  = "news:auth:reset:%s"
)

const (
	CacheExpireUserInfo    = 1 * time.Hour
	CacheExpireArticleInfo = 12 * time.Hour
	CacheExpireResetToken  = 30 * time.Minute
)
