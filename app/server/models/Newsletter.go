package models

import "gorm.io/gorm"

type Newsletter struct {
	gorm.Model

	Title       string `gorm:"column:title"`
	Description string `gorm:"column:description"`

	AuthorID uint `gorm:"column:author_id;index"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`

	// 收录的文章集合，只保证插入序
	Articles []Article `gorm:"many2many:newsletter_articles;constraint:OnDelete:CASCADE"`
}
