package models

import "gorm.io/gorm"

type Article struct {
	gorm.Model

	Title   string `gorm:"column:title"`
	Content string `gorm:"column:content"`

	// 作者（记者），必填，删除作者时级联删除文章
	AuthorID uint `gorm:"column:author_id;index"`
	// 出版方（编辑），可空，出版方被删除时置空
	PublisherID *uint `gorm:"column:publisher_id;index"`

	// 审批标记：新建与每次编辑后都为 false ，只有审批流程会置 true
	Approved bool `gorm:"column:approved;index"`

	// 连接模型时使用
	Author    User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Publisher *User `gorm:"foreignKey:PublisherID;constraint:OnDelete:SET NULL"`
}
