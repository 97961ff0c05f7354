// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shinyyama/localaid-backend/internal/db"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated sqlite database private to the test.
// A single connection serializes writers the way row locks would on MySQL.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "localaid.db")
	gdb, err := gorm.Open(sqlite.Open("file:"+path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func CreateUser(t testing.TB, gdb *gorm.DB, uid, name string) *model.User {
	t.Helper()
	u := &model.User{UID: uid, DisplayName: name}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreatePost(t testing.TB, gdb *gorm.DB, ownerUID, title string) *model.Post {
	t.Helper()
	p := &model.Post{
		OwnerUID:    ownerUID,
		Type:        model.PostTypeRequest,
		Title:       title,
		Description: title,
		Status:      model.PostStatusOpen,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func Karma(t testing.TB, gdb *gorm.DB, uid string) int64 {
	t.Helper()
	var u model.User
	require.NoError(t, gdb.Where("uid = ?", uid).First(&u).Error)
	return u.KarmaPoints
}
