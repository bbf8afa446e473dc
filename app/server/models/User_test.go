package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name          string
		user          *User
		isEditor      bool
		isJournalist  bool
		isStaffMember bool
	}{
		{"anonymous", nil, false, false, false},
		{"reader", &User{Role: RoleReader}, false, false, false},
		{"journalist", &User{Role: RoleJournalist}, false, true, true},
		{"editor", &User{Role: RoleEditor}, true, false, true},
		{"superuser reader", &User{Role: RoleReader, IsSuperuser: true}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isEditor, tt.user.IsEditor())
			assert.Equal(t, tt.isJournalist, tt.user.IsJournalist())
			assert.Equal(t, tt.isStaffMember, tt.user.IsStaffMember())
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleReader.Valid())
	assert.True(t, RoleJournalist.Valid())
	assert.True(t, RoleEditor.Valid())
	assert.False(t, Role("ADMIN").Valid())
	assert.False(t, Role("").Valid())
}

func TestApplyRoleRules(t *testing.T) {
	tests := []struct {
		role  Role
		staff bool
	}{
		{RoleReader, false},
		{RoleJournalist, true},
		{RoleEditor, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := &User{Role: tt.role, IsStaff: !tt.staff} // 先放一个错的值，确认是重算而不是保留
			u.ApplyRoleRules()
			assert.Equal(t, tt.staff, u.IsStaff)
		})
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &FollowEdge{}))
	return db
}

func TestSyncRoleEdges(t *testing.T) {
	db := testDB(t)

	reader := User{Username: "r", Role: RoleReader}
	journalist := User{Username: "j", Role: RoleJournalist}
	editor := User{Username: "e", Role: RoleEditor}
	require.NoError(t, db.Create(&reader).Error)
	require.NoError(t, db.Create(&journalist).Error)
	require.NoError(t, db.Create(&editor).Error)

	require.NoError(t, db.Create(&FollowEdge{FollowerID: reader.ID, FolloweeID: journalist.ID, Kind: FollowKindJournalist}).Error)
	require.NoError(t, db.Create(&FollowEdge{FollowerID: reader.ID, FolloweeID: editor.ID, Kind: FollowKindPublisher}).Error)

	// 角色不变，边保留
	require.NoError(t, SyncRoleEdges(db, &reader))
	var count int64
	require.NoError(t, db.Model(&FollowEdge{}).Where("follower_id = ?", reader.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// 提升为编辑，两种关系的边都要清空
	reader.Role = RoleEditor
	reader.ApplyRoleRules()
	require.NoError(t, db.Model(&reader).Updates(map[string]interface{}{
		"role":     reader.Role,
		"is_staff": reader.IsStaff,
	}).Error)
	require.NoError(t, SyncRoleEdges(db, &reader))

	require.NoError(t, db.Model(&FollowEdge{}).Where("follower_id = ?", reader.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.True(t, reader.IsStaff)
}

func TestFollowEdgeUnique(t *testing.T) {
	db := testDB(t)

	reader := User{Username: "r", Role: RoleReader}
	journalist := User{Username: "j", Role: RoleJournalist}
	require.NoError(t, db.Create(&reader).Error)
	require.NoError(t, db.Create(&journalist).Error)

	edge := FollowEdge{FollowerID: reader.ID, FolloweeID: journalist.ID, Kind: FollowKindJournalist}
	require.NoError(t, db.Create(&edge).Error)

	dup := FollowEdge{FollowerID: reader.ID, FolloweeID: journalist.ID, Kind: FollowKindJournalist}
	err := db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// 另一种关系的同一对用户不受影响
	other := FollowEdge{FollowerID: reader.ID, FolloweeID: journalist.ID, Kind: FollowKindPublisher}
	assert.NoError(t, db.Create(&other).Error)
}
