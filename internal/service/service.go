package service

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/session"
)

type Service struct {
	db         *gorm.DB
	sessions   session.Store
	logger     *zap.SugaredLogger
	sessionTTL time.Duration
}

func New(db *gorm.DB, sessions session.Store, logger *zap.SugaredLogger, sessionTTL time.Duration) *Service {
	return &Service{
		db:         db,
		sessions:   sessions,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}
