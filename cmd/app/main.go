package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/todoboard/todoboard-back/internal/config"
	"github.com/todoboard/todoboard-back/internal/db"
	"github.com/todoboard/todoboard-back/internal/service"
	"github.com/todoboard/todoboard-back/internal/session"
	"github.com/todoboard/todoboard-back/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			newLogger,
			db.NewGormClient,
			session.NewRedisStore,
			func(s *session.RedisStore) session.Store { return s },
			func(gdb *gorm.DB, store session.Store, logger *zap.SugaredLogger, cfg *config.Config) *service.Service {
				return service.New(gdb, store, logger, cfg.SessionTTL())
			},
			transport.NewHTTPServer,
		),
		fx.Invoke(func(server *transport.HTTPServer) {}),
	)

	app.Run()
}

func newLogger() (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
