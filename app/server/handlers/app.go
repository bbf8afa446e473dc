package handlers

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-journalist/app/server/jwt"
	"daily-journalist/app/server/notify"
)

type App struct {
	l         *zap.Logger      // 日志
	db        *gorm.DB         // 数据库
	rdb       *redis.Client    // Redis
	jwt       *jwt.JWT         // JWT ，用于无状态验证
	mailer    notify.Mailer    // 审批通知邮件
	announcer notify.Announcer // 社交平台通告
	baseURL   string           // 拼接文章链接用
	operator  string           // 运营方邮箱
}

func NewApp(l *zap.Logger, db *gorm.DB, rdb *redis.Client, j *jwt.JWT, mailer notify.Mailer, announcer notify.Announcer, baseURL, operator string) *App {
	return &App{
		l:         l,
		db:        db,
		rdb:       rdb,
		jwt:       j,
		mailer:    mailer,
		announcer: announcer,
		baseURL:   baseURL,
		operator:  operator,
	}
}
