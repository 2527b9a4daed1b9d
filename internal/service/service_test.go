package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/todoboard/todoboard-back/internal/db"
	"github.com/todoboard/todoboard-back/internal/session"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.Nil(t, err)

	err = db.Migrate(gdb)
	assert.Nil(t, err)

	return New(gdb, session.NewMemoryStore(), zap.NewNop().Sugar(), time.Hour)
}

// createTestUser inserts a user directly, skipping the expensive bcrypt path.
func createTestUser(t *testing.T, s *Service, username string) *db.User {
	t.Helper()

	user := db.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	res := s.db.Create(&user)
	assert.Nil(t, res.Error)
	return &user
}

func createTestDashboard(t *testing.T, s *Service, owner *db.User, title string, isPublic bool) *db.Dashboard {
	t.Helper()

	dashboard, err := s.CreateDashboard(owner.ID, title, "", isPublic)
	assert.Nil(t, err)
	return dashboard
}

func addTestMember(t *testing.T, s *Service, dashboard *db.Dashboard, user *db.User, role Role) *db.Membership {
	t.Helper()

	member, err := s.AddMember(dashboard.OwnerID, dashboard.ID, user.Email, string(role))
	assert.Nil(t, err)
	return member
}
