package infra

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	dbm "mibe/internal/models/db_models"
)

// InitPostgresql opens the connection pool. TranslateError is required: the
// billing store relies on gorm.ErrDuplicatedKey to detect concurrent inserts.
func InitPostgresql(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.PostgresURL == "" {
		return nil, errors.New("POSTGRES_URL is not set")
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	if cfg.IsDevelopment() {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	connectionPool, err := gorm.Open(postgres.Open(cfg.PostgresURL), gormCfg)
	if err != nil {
		log.Error("Error connecting to database", zap.Error(err))
		return nil, err
	}

	sqlDB, err := connectionPool.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)

	return connectionPool, nil
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("Error closing database connection", zap.Error(err))
	} else {
		log.Info("PostgreSQL database connection closed successfully")
	}
}

// Migrate creates the billing tables and the unique indexes the reconciler
// depends on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&dbm.Account{},
		&dbm.Company{},
		&dbm.Plan{},
		&dbm.Subscription{},
		&dbm.PaymentHistory{},
	)
}
