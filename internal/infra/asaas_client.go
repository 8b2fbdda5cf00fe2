package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"mibe/pkg/utils"
)

type AsaasCustomerInput struct {
	Name              string `json:"name"`
	CpfCnpj           string `json:"cpfCnpj"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	ExternalReference string `json:"externalReference"`
}

type AsaasCustomer struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	CpfCnpj           string `json:"cpfCnpj"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	ExternalReference string `json:"externalReference,omitempty"`
}

type asaasAPIError struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

type AsaasClient interface {
	CreateCustomer(ctx context.Context, in AsaasCustomerInput) (*AsaasCustomer, error)
}

type asaasClient struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

func NewAsaasClient(cfg AsaasConfig, logger *zap.Logger) AsaasClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 15 * time.Second
	rc.Logger = zapLeveledLogger{logger.Sugar()}
	// Keep the last response so gateway error bodies reach the caller.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &asaasClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.ApiKey,
		http:    rc,
	}
}

// CreateCustomer registers a store with the gateway. Formatting characters
// are stripped from the tax id and phone before sending.
func (a *asaasClient) CreateCustomer(ctx context.Context, in AsaasCustomerInput) (*AsaasCustomer, error) {
	if a.apiKey == "" {
		return nil, utils.ErrGatewayNotConfigured
	}

	in.CpfCnpj = utils.OnlyDigits(in.CpfCnpj)
	in.Phone = utils.OnlyDigits(in.Phone)

	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/customers", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mibe-admin")
	req.Header.Set("access_token", a.apiKey)

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrGatewayError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", utils.ErrGatewayError, err)
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", utils.ErrGatewayError, gatewayErrorDescription(resp.StatusCode, raw))
	}

	var customer AsaasCustomer
	if err := json.Unmarshal(raw, &customer); err != nil {
		return nil, fmt.Errorf("%w: decode customer: %v", utils.ErrGatewayError, err)
	}

	return &customer, nil
}

func gatewayErrorDescription(status int, raw []byte) string {
	var apiErr asaasAPIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && len(apiErr.Errors) > 0 && apiErr.Errors[0].Description != "" {
		return apiErr.Errors[0].Description
	}
	return fmt.Sprintf("status %d", status)
}

type zapLeveledLogger struct {
	s *zap.SugaredLogger
}

func (l zapLeveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l zapLeveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l zapLeveledLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l zapLeveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
