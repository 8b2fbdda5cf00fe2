package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"gopkg.in/yaml.v3"
)

// Secrets is the YAML document stored in the SSM parameter named by
// SSM_SECRETS_PARAMETER. Empty fields leave the env value in place.
type Secrets struct {
	PostgresURL       string `yaml:"postgres_url"`
	JWTSecret         string `yaml:"jwt_secret"`
	AsaasApiKey       string `yaml:"asaas_api_key"`
	AsaasWebhookToken string `yaml:"asaas_webhook_token"`
}

// ParameterGetter is the subset of *ssm.Client used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

func LoadSecrets(ctx context.Context, client ParameterGetter, name string) (Secrets, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return Secrets{}, fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return Secrets{}, fmt.Errorf("parameter %s is empty", name)
	}

	var s Secrets
	if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &s); err != nil {
		return Secrets{}, fmt.Errorf("unmarshal parameter %s: %w", name, err)
	}
	return s, nil
}

// Apply overlays the non-empty secrets onto cfg.
func (s Secrets) Apply(cfg *Config) {
	if s.PostgresURL != "" {
		cfg.PostgresURL = s.PostgresURL
	}
	if s.JWTSecret != "" {
		cfg.JWTSecret = s.JWTSecret
	}
	if s.AsaasApiKey != "" {
		cfg.Asaas.ApiKey = NormalizeAsaasApiKey(s.AsaasApiKey)
	}
	if s.AsaasWebhookToken != "" {
		cfg.Asaas.WebhookToken = s.AsaasWebhookToken
	}
}
