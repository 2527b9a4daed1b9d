package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/todoboard/todoboard-back/internal/config"
)

const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"

	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Username string `gorm:"uniqueIndex;not null"`
		Email    string `gorm:"uniqueIndex;not null"`
		Password string `gorm:"not null"`

		Dashboards  []Dashboard  `gorm:"foreignKey:OwnerID"`
		Memberships []Membership `gorm:"constraint:OnDelete:CASCADE"`
	}

	Dashboard struct {
		GormForkedModel
		Title       string `gorm:"not null"`
		Description string
		IsPublic    bool   `gorm:"not null;default:false"`
		PublicLink  string `gorm:"uniqueIndex;not null"`
		OwnerID     uint64 `gorm:"not null;index"`
		Owner       User

		Members []Membership `gorm:"constraint:OnDelete:CASCADE"`
		Tags    []Tag        `gorm:"constraint:OnDelete:CASCADE"`
		Todos   []Todo       `gorm:"constraint:OnDelete:CASCADE"`
	}

	Membership struct {
		GormForkedModel
		DashboardID uint64 `gorm:"not null;uniqueIndex:uidx_dashboard_user"`
		UserID      uint64 `gorm:"not null;uniqueIndex:uidx_dashboard_user"`
		Role        string `gorm:"not null"`
		User        User
	}

	Tag struct {
		GormForkedModel
		Name        string `gorm:"not null;uniqueIndex:uidx_tag_name_dashboard"`
		Color       string `gorm:"not null"`
		DashboardID uint64 `gorm:"not null;uniqueIndex:uidx_tag_name_dashboard"`

		Todos []Todo `gorm:"many2many:todo_tags;"`
	}

	Todo struct {
		GormForkedModel
		Title         string `gorm:"not null"`
		Description   string
		Priority      int    `gorm:"not null;default:3"`
		DueDate       *time.Time
		Status        string `gorm:"not null;default:pending"`
		DashboardID   uint64 `gorm:"not null;index"`
		CompletedByID *uint64
		CompletedBy   *User `gorm:"foreignKey:CompletedByID;constraint:OnDelete:SET NULL"`
		CompletedAt   *time.Time

		Tags []Tag `gorm:"many2many:todo_tags;"`
	}
)

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  true,
		IgnoreRecordNotFoundError: false,
	})

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Dashboard{}); err != nil {
		return errors.Wrap(err, "migrate dashboard")
	}
	if err := db.AutoMigrate(&Membership{}); err != nil {
		return errors.Wrap(err, "migrate membership")
	}
	if err := db.AutoMigrate(&Tag{}); err != nil {
		return errors.Wrap(err, "migrate tag")
	}
	if err := db.AutoMigrate(&Todo{}); err != nil {
		return errors.Wrap(err, "migrate todo")
	}
	return nil
}
