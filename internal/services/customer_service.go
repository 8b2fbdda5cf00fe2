package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"mibe/internal/infra"
	"mibe/internal/models/request_models"
	"mibe/internal/models/response_models"
	"mibe/internal/repositories"
	"mibe/pkg/utils"
)

// CustomerService registers stores with the payment gateway. The gateway
// customer's externalReference is the company id.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req request_models.CreateCustomerRequest) (*response_models.Customer, error)
	RegisterCompany(ctx context.Context, companyID string) (*response_models.Customer, error)
}

type customerService struct {
	client      infra.AsaasClient
	companyRepo repositories.CompanyRepository
	logger      *zap.Logger
}

func NewCustomerService(client infra.AsaasClient, companyRepo repositories.CompanyRepository, logger *zap.Logger) CustomerService {
	return &customerService{
		client:      client,
		companyRepo: companyRepo,
		logger:      logger.Named("customers"),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, req request_models.CreateCustomerRequest) (*response_models.Customer, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.CpfCnpj) == "" || strings.TrimSpace(req.ExternalReference) == "" {
		return nil, fmt.Errorf("%w: missing required fields: name, cpfCnpj, externalReference", utils.ErrInvalidRequest)
	}

	customer, err := s.client.CreateCustomer(ctx, infra.AsaasCustomerInput{
		Name:              req.Name,
		CpfCnpj:           req.CpfCnpj,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		s.logger.Error("create gateway customer", zap.String("external_reference", req.ExternalReference), zap.Error(err))
		return nil, err
	}
	s.logger.Info("gateway customer created", zap.String("customer_id", customer.ID))

	s.linkCompany(ctx, req.ExternalReference, customer.ID)

	return toCustomerResponse(customer), nil
}

// RegisterCompany creates the gateway customer from the stored company and
// records the customer id on it.
func (s *customerService) RegisterCompany(ctx context.Context, companyID string) (*response_models.Customer, error) {
	company, err := s.companyRepo.FindById(ctx, companyID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if company == nil {
		return nil, utils.RecordNotFound
	}
	if company.AsaasCustomerID != nil && *company.AsaasCustomerID != "" {
		return nil, fmt.Errorf("%w: company already has gateway customer %s", utils.ErrDuplicateRecord, *company.AsaasCustomerID)
	}

	customer, err := s.client.CreateCustomer(ctx, infra.AsaasCustomerInput{
		Name:              company.BusinessName,
		CpfCnpj:           company.Cnpj,
		Email:             company.Email,
		Phone:             company.Phone,
		Address:           company.Address,
		ExternalReference: company.Key(),
	})
	if err != nil {
		s.logger.Error("register company with gateway", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}

	if err := s.companyRepo.SetAsaasCustomerID(ctx, company.Key(), customer.ID); err != nil {
		s.logger.Error("store gateway customer id",
			zap.String("company_id", companyID), zap.String("customer_id", customer.ID), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	return toCustomerResponse(customer), nil
}

// linkCompany is best effort: the reference may not be a company id.
func (s *customerService) linkCompany(ctx context.Context, companyID, customerID string) {
	company, err := s.companyRepo.FindById(ctx, companyID)
	if err != nil || company == nil {
		return
	}
	if err := s.companyRepo.SetAsaasCustomerID(ctx, company.Key(), customerID); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("could not store gateway customer id", zap.String("company_id", companyID), zap.Error(err))
	}
}

func toCustomerResponse(c *infra.AsaasCustomer) *response_models.Customer {
	return &response_models.Customer{
		ID:                c.ID,
		Name:              c.Name,
		CpfCnpj:           c.CpfCnpj,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           c.Address,
		ExternalReference: c.ExternalReference,
	}
}
