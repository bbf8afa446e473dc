package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model

	ArticleID uint   `gorm:"column:article_id;index"`
	AuthorID  uint   `gorm:"column:author_id;index"`
	Text      string `gorm:"column:text"`

	// 文章删除时评论级联删除
	Article Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	Author  User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
