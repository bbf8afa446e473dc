package models

import (
	"gorm.io/gorm"
)

// 用户角色，三选一的封闭集合
type Role string

const (
	RoleReader     Role = "READER"     // 读者：可以订阅记者与出版方
	RoleJournalist Role = "JOURNALIST" // 记者：可以投稿
	RoleEditor     Role = "EDITOR"     // 编辑：可以审批与管理内容
)

func (r Role) Valid() bool {
	return r == RoleReader || r == RoleJournalist || r == RoleEditor
}

type User struct {
	gorm.Model

	// 基础信息
	Username string `gorm:"column:username;uniqueIndex" json:"username"` // 用户名，全局唯一
	Email    string `gorm:"column:email" json:"email"`                  // 邮箱，审批通知会发到这里，可以为空
	Name     string `gorm:"column:name" json:"name"`                    // 显示名称

	// 角色信息
	Role        Role `gorm:"column:role;index" json:"role"`               // 角色
	IsSuperuser bool `gorm:"column:is_superuser" json:"is_superuser"`     // 是否为超级用户：绕过所有角色检查
	IsStaff     bool `gorm:"column:is_staff" json:"is_staff"`             // 派生字段，角色为记者或编辑时为 true ，每次保存时重算

	// 登录认证相关
	Password string `gorm:"column:password" json:"-"` // 密码，使用 argon2id 储存
}

// 权限谓词：页面层和 API 层共用这一份实现，不允许出现第二份拷贝。
// 对 nil （未认证用户）恒为 false 。

func (u *User) IsEditor() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleEditor || u.IsSuperuser
}

func (u *User) IsJournalist() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleJournalist || u.IsSuperuser
}

func (u *User) IsStaffMember() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleJournalist || u.Role == RoleEditor || u.IsSuperuser
}

// ApplyRoleRules 重算派生字段，任何保存用户的代码路径都要先调用它。
func (u *User) ApplyRoleRules() {
	u.IsStaff = u.Role == RoleJournalist || u.Role == RoleEditor
}

// SyncRoleEdges 是角色保存后的显式钩子：记者和编辑不能以读者身份持有订阅关系，
// 角色提升时清空两种关注边。由执行保存的代码路径调用，不做隐式注册。
func SyncRoleEdges(db *gorm.DB, u *User) error {
	if u.Role == RoleReader {
		return nil
	}
	return db.Where("follower_id = ?", u.ID).Delete(&FollowEdge{}).Error
}
