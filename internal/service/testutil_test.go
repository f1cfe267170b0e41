package service

import (
	"fmt"
	"messenger_backend/internal/model"
	"messenger_backend/internal/repository"
	"messenger_backend/pkg/logger"
	"os"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", model.GenerateUUID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.FriendRequest{},
		&model.DirectMessage{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()

	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

func newFriendshipService(t *testing.T) (*FriendshipService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := NewFriendshipService(
		repository.NewFriendshipRepository(db, nil),
		repository.NewUserRepository(db),
	)
	return svc, db
}

func newMessageService(t *testing.T) (*MessageService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := NewMessageService(
		repository.NewMessageRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db
}
