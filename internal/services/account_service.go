package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"mibe/internal/infra"
	"mibe/internal/models/db_models"
	"mibe/internal/models/request_models"
	"mibe/internal/models/response_models"
	"mibe/internal/repositories"
	"mibe/pkg/utils"
)

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.LoginResponse, error)
	CreateAccount(ctx context.Context, request request_models.CreateAccountRequest) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	jwtSecret   []byte
	logger      *zap.Logger
}

func NewAccountService(accountRepo repositories.AccountRepository, cfg infra.Config, logger *zap.Logger) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		jwtSecret:   []byte(cfg.JWTSecret),
		logger:      logger,
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.LoginResponse, error) {

	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, strings.TrimSpace(request.Email))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	if !utils.PasswordMatches(account.PasswordHash, request.Password) {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(a.jwtSecret, account.ID, account.Role)
	if err != nil {
		a.logger.Error("token generation failed", zap.Error(err))
		return nil, err
	}

	a.logger.Debug("login completed", zap.String("account_id", account.ID.String()), zap.Duration("took", time.Since(startTime)))

	return &response_models.LoginResponse{
		Token: token,
		Role:  account.Role,
		Name:  account.Name,
	}, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.CreateAccountRequest) error {

	existingAccount, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return utils.ErrDuplicateRecord
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return err
	}

	role := request.Role
	if role == "" {
		role = db_models.RoleOperator
	}

	newAccount := &db_models.Account{
		Name:         request.Name,
		Email:        strings.ToLower(strings.TrimSpace(request.Email)),
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := a.accountRepo.Insert(ctx, newAccount); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ErrDuplicateRecord
		}
		return utils.ErrDatabaseError
	}

	return nil
}
