package infra

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultAsaasBaseURL = "https://api-sandbox.asaas.com/v3"

type Config struct {
	Port   string
	AppEnv string

	PostgresURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	// AutoMigrate runs gorm migrations at startup.
	AutoMigrate bool

	JWTSecret string

	// SecretsParameter names an SSM parameter holding Secrets; empty skips it.
	SecretsParameter string

	Asaas AsaasConfig
}

type AsaasConfig struct {
	BaseURL      string
	ApiKey       string
	WebhookToken string // value Asaas sends in the asaas-access-token header
	RetryMax     int
}

// LoadConfig reads the process environment. A .env file in the working
// directory is loaded first when present; real env vars win.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Port:             getEnv("PORT", "8080"),
		AppEnv:           getEnv("APP_ENV", "production"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		DBMaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:   getEnvInt("DB_MAX_IDLE_CONNS", 5),
		AutoMigrate:      getEnv("DB_AUTO_MIGRATE", "false") == "true",
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SecretsParameter: os.Getenv("SSM_SECRETS_PARAMETER"),
		Asaas: AsaasConfig{
			BaseURL:      strings.TrimRight(getEnv("ASAAS_BASE_URL", defaultAsaasBaseURL), "/"),
			ApiKey:       NormalizeAsaasApiKey(os.Getenv("ASAAS_API_KEY")),
			WebhookToken: os.Getenv("ASAAS_WEBHOOK_TOKEN"),
			RetryMax:     getEnvInt("ASAAS_RETRY_MAX", 2),
		},
	}
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// NormalizeAsaasApiKey restores the leading "$" of aact_ keys, which is
// commonly lost when the key is pasted into a shell-expanded env file.
func NormalizeAsaasApiKey(key string) string {
	key = strings.TrimSpace(key)
	if key != "" && !strings.HasPrefix(key, "$") && strings.HasPrefix(key, "aact_") {
		return "$" + key
	}
	return key
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
