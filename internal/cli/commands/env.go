package commands

import (
	"BlogHub/internal/config"
	"BlogHub/internal/repo"
	"BlogHub/internal/service"
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openDB открывает БД из конфига и применяет миграции; в тестах подменяется.
var openDB = func(_ context.Context, cfg *config.Config) (*gorm.DB, error) {
	return repo.InitDB(cfg.DBDriver, cfg.DatabaseDSN)
}

// Logger — логгер команд, main задаёт его до Dispatch.
var Logger = zap.NewNop().Sugar()

func userService(ctx context.Context, cfg *config.Config) (*service.UserService, *gorm.DB, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.NewUserService(repo.NewUserRepository(db), nil, Logger), db, nil
}
