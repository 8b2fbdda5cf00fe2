package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"mibe/internal/infra"
	"mibe/internal/repositories"
	"mibe/internal/services"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideAccountService(accountRepo repositories.AccountRepository, cfg infra.Config, logger *zap.Logger) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, cfg, logger)
}
