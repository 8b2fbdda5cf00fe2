package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	dbm "mibe/internal/models/db_models"
	"mibe/internal/models/request_models"
	"mibe/pkg/utils"
)

func TestCreateCustomerLinksKnownCompany(t *testing.T) {
	id := uuid.New()
	companies := &fakeCompanyRepo{companies: map[string]dbm.Company{
		id.String(): {BaseModel: dbm.BaseModel{ID: id}, BusinessName: "Loja"},
	}}
	client := &fakeAsaasClient{}
	svc := NewCustomerService(client, companies, zap.NewNop())

	out, err := svc.CreateCustomer(context.Background(), request_models.CreateCustomerRequest{
		Name: "Loja", CpfCnpj: "12.345.678/0001-90", ExternalReference: id.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "cus_000001", out.ID)
	assert.Equal(t, "cus_000001", companies.linked[id.String()])
}

func TestCreateCustomerRequiresFields(t *testing.T) {
	client := &fakeAsaasClient{}
	svc := NewCustomerService(client, &fakeCompanyRepo{}, zap.NewNop())

	_, err := svc.CreateCustomer(context.Background(), request_models.CreateCustomerRequest{Name: "Loja", CpfCnpj: " "})
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Empty(t, client.inputs)
}

func TestCreateCustomerPropagatesGatewayError(t *testing.T) {
	client := &fakeAsaasClient{err: fmt.Errorf("%w: CPF/CNPJ inválido", utils.ErrGatewayError)}
	svc := NewCustomerService(client, &fakeCompanyRepo{}, zap.NewNop())

	_, err := svc.CreateCustomer(context.Background(), request_models.CreateCustomerRequest{
		Name: "Loja", CpfCnpj: "1", ExternalReference: "x",
	})
	assert.ErrorIs(t, err, utils.ErrGatewayError)
}

func TestRegisterCompany(t *testing.T) {
	id := uuid.New()
	existing := "cus_old"
	linkedID := uuid.New()
	companies := &fakeCompanyRepo{companies: map[string]dbm.Company{
		id.String():       {BaseModel: dbm.BaseModel{ID: id}, BusinessName: "Loja", Cnpj: "12345678000190", Email: "loja@ex.com"},
		linkedID.String(): {BaseModel: dbm.BaseModel{ID: linkedID}, AsaasCustomerID: &existing},
	}}
	client := &fakeAsaasClient{}
	svc := NewCustomerService(client, companies, zap.NewNop())
	ctx := context.Background()

	out, err := svc.RegisterCompany(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, id.String(), out.ExternalReference)
	require.Len(t, client.inputs, 1)
	assert.Equal(t, "Loja", client.inputs[0].Name)
	assert.Equal(t, "cus_000001", companies.linked[id.String()])

	_, err = svc.RegisterCompany(ctx, linkedID.String())
	assert.ErrorIs(t, err, utils.ErrDuplicateRecord)

	_, err = svc.RegisterCompany(ctx, uuid.NewString())
	assert.ErrorIs(t, err, utils.RecordNotFound)
	assert.Len(t, client.inputs, 1)
}
