package customer_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"mibe/internal/infra"
	"mibe/internal/repositories"
	"mibe/internal/services"
)

var Module = fx.Provide(
	provideAsaasClient, provideCompanyRepo, provideCustomerService)

func provideAsaasClient(cfg infra.Config, logger *zap.Logger) infra.AsaasClient {
	if cfg.Asaas.ApiKey == "" {
		logger.Warn("ASAAS_API_KEY not set; customer creation will fail")
	}
	return infra.NewAsaasClient(cfg.Asaas, logger)
}

func provideCompanyRepo(db *gorm.DB) repositories.CompanyRepository {
	return repositories.NewCompanyRepository(db)
}

func provideCustomerService(client infra.AsaasClient, companyRepo repositories.CompanyRepository, logger *zap.Logger) services.CustomerService {
	return services.NewCustomerService(client, companyRepo, logger)
}
