package models

import "time"

// 关注关系的种类
type FollowKind string

const (
	FollowKindJournalist FollowKind = "journalist" // 读者 → 记者
	FollowKindPublisher  FollowKind = "publisher"  // 读者 → 出版方（编辑）
)

func (k FollowKind) Valid() bool {
	return k == FollowKindJournalist || k == FollowKindPublisher
}

// FollowEdge 是一条有向订阅边 (follower, followee, kind) ，
// 复合唯一索引保证同一种关系下不会出现重复边。
// 不用软删除：退订后重新订阅必须能复用同一组键。
type FollowEdge struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	FollowerID uint       `gorm:"column:follower_id;uniqueIndex:idx_follow_edge"`
	FolloweeID uint       `gorm:"column:followee_id;uniqueIndex:idx_follow_edge;index"`
	Kind       FollowKind `gorm:"column:kind;uniqueIndex:idx_follow_edge"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followee User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE"`
}
