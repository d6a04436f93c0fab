package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
)

// Tokenizer backends
const (
	TokenizerMemory = "memory"
	TokenizerVault  = "vault"
	TokenizerAWS    = "aws"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	ACH       ACHConfig
	NACHA     NACHAConfig
	Tokenizer TokenizerConfig
	Outbox    OutboxConfig
	Cron      CronConfig
	Logger    LoggerConfig
}

// ServerConfig holds HTTP, gRPC health and metrics listener configuration
type ServerConfig struct {
	Host            string
	HTTPPort        int
	GRPCPort        int
	MetricsPort     int
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration. When disabled the
// in-memory stores are used.
type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Database string
	SSLMode  string
	Port     int
	MaxConns int32
	MinConns int32
	Enabled  bool
}

// ACHConfig is the originator identity handed to the processor
type ACHConfig struct {
	OriginatorID        string
	OriginatorName      string
	CompanyID           string
	OriginRoutingNumber string
	OrganizationID      string
	// HolidayCalendar is "none" or "federal_reserve"
	HolidayCalendar   string
	TestMode          bool
	StrictNACHAVerify bool
}

// NACHAConfig holds the file header identity
type NACHAConfig struct {
	ImmediateDestination     string
	ImmediateDestinationName string
	ImmediateOrigin          string
	ImmediateOriginName      string
	EntryDescription         string
	FileIDModifier           string
}

// TokenizerConfig selects and configures the token vault
type TokenizerConfig struct {
	Backend string

	VaultAddress    string
	VaultAuthMethod string
	VaultToken      string
	VaultRoleID     string
	VaultSecretID   string
	VaultNamespace  string
	VaultMountPath  string
	VaultPathPrefix string

	AWSRegion       string
	AWSProfile      string
	AWSEndpoint     string
	AWSSecretPrefix string
	AWSKMSKeyID     string
}

// OutboxConfig configures delivery of queued debits to the sync manager
type OutboxConfig struct {
	SinkURL          string
	SinkSecret       string
	DispatchInterval time.Duration
	BatchSize        int
	// DispatcherEnabled runs the dispatcher loop inside achd. Disable it when an
	// external scheduler calls the cron endpoint instead.
	DispatcherEnabled bool
}

// CronConfig holds the shared secret for cron endpoints
type CronConfig struct {
	Secret string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables and validates it
func LoadFromEnv() (*Config, error) {
	routing := getEnv("ACH_ORIGIN_ROUTING_NUMBER", "021000021")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			HTTPPort:        getEnvAsInt("HTTP_PORT", 8080),
			GRPCPort:        getEnvAsInt("GRPC_PORT", 50051),
			MetricsPort:     getEnvAsInt("METRICS_PORT", 9090),
			RateLimitRPS:    getEnvAsFloat("RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 200),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: LoadDatabaseFromEnv(),
		ACH: ACHConfig{
			OriginatorID:        getEnv("ACH_ORIGINATOR_ID", "TESTORIG01"),
			OriginatorName:      getEnv("ACH_ORIGINATOR_NAME", "ACH TEST ORIGINATOR"),
			CompanyID:           getEnv("ACH_COMPANY_ID", "1234567890"),
			OriginRoutingNumber: routing,
			OrganizationID:      getEnv("ACH_ORGANIZATION_ID", "org_test"),
			HolidayCalendar:     getEnv("ACH_HOLIDAY_CALENDAR", "none"),
			TestMode:            getEnvAsBool("ACH_TEST_MODE", true),
			StrictNACHAVerify:   getEnvAsBool("NACHA_STRICT_VERIFY", false),
		},
		NACHA: NACHAConfig{
			ImmediateDestination:     getEnv("NACHA_IMMEDIATE_DESTINATION", routing),
			ImmediateDestinationName: getEnv("NACHA_IMMEDIATE_DESTINATION_NAME", "FEDERAL RESERVE BANK"),
			ImmediateOrigin:          getEnv("NACHA_IMMEDIATE_ORIGIN", routing),
			ImmediateOriginName:      getEnv("NACHA_IMMEDIATE_ORIGIN_NAME", "ACH TEST ORIGINATOR"),
			EntryDescription:         getEnv("NACHA_ENTRY_DESCRIPTION", "PAYMENT"),
			FileIDModifier:           getEnv("NACHA_FILE_ID_MODIFIER", "A"),
		},
		Tokenizer: TokenizerConfig{
			Backend:         getEnv("TOKENIZER_BACKEND", TokenizerMemory),
			VaultAddress:    getEnv("VAULT_ADDR", ""),
			VaultAuthMethod: getEnv("VAULT_AUTH_METHOD", "token"),
			VaultToken:      getEnv("VAULT_TOKEN", ""),
			VaultRoleID:     getEnv("VAULT_ROLE_ID", ""),
			VaultSecretID:   getEnv("VAULT_SECRET_ID", ""),
			VaultNamespace:  getEnv("VAULT_NAMESPACE", ""),
			VaultMountPath:  getEnv("VAULT_MOUNT_PATH", "secret"),
			VaultPathPrefix: getEnv("VAULT_PATH_PREFIX", "ach/bank-accounts"),
			AWSRegion:       getEnv("AWS_REGION", ""),
			AWSProfile:      getEnv("AWS_PROFILE", ""),
			AWSEndpoint:     getEnv("AWS_SECRETS_ENDPOINT", ""),
			AWSSecretPrefix: getEnv("AWS_SECRET_PREFIX", "ach/bank-accounts"),
			AWSKMSKeyID:     getEnv("AWS_KMS_KEY_ID", ""),
		},
		Outbox: OutboxConfig{
			SinkURL:           getEnv("SYNC_MANAGER_URL", ""),
			SinkSecret:        getEnv("SYNC_MANAGER_SECRET", ""),
			DispatchInterval:  getEnvAsDuration("OUTBOX_DISPATCH_INTERVAL", 30*time.Second),
			BatchSize:         getEnvAsInt("OUTBOX_BATCH_SIZE", 100),
			DispatcherEnabled: getEnvAsBool("OUTBOX_DISPATCHER_ENABLED", true),
		},
		Cron: CronConfig{
			Secret: getEnv("CRON_SECRET", ""),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabaseFromEnv reads only the database settings, for tools that need
// nothing else
func LoadDatabaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Enabled:  getEnvAsBool("DB_ENABLED", false),
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", "ach_processor"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
	}
}

// Validate rejects inconsistent configuration. Every problem is reported at once.
func (c *Config) Validate() error {
	var problems []string

	if !domain.ValidateRoutingNumber(c.ACH.OriginRoutingNumber) {
		problems = append(problems, "ACH_ORIGIN_ROUTING_NUMBER is not a valid ABA routing number")
	}
	if c.ACH.CompanyID == "" || len(c.ACH.CompanyID) > 10 {
		problems = append(problems, "ACH_COMPANY_ID must be 1-10 characters")
	}
	if c.ACH.OriginatorName == "" {
		problems = append(problems, "ACH_ORIGINATOR_NAME is required")
	}
	switch c.ACH.HolidayCalendar {
	case "none", "federal_reserve", "fed":
	default:
		problems = append(problems, fmt.Sprintf("ACH_HOLIDAY_CALENDAR %q is not one of none, federal_reserve", c.ACH.HolidayCalendar))
	}

	if dest := strings.TrimSpace(c.NACHA.ImmediateDestination); !domain.ValidateRoutingNumber(dest) {
		problems = append(problems, "NACHA_IMMEDIATE_DESTINATION is not a valid ABA routing number")
	}
	if len(c.NACHA.ImmediateOrigin) == 0 || len(c.NACHA.ImmediateOrigin) > 10 {
		problems = append(problems, "NACHA_IMMEDIATE_ORIGIN must be 1-10 characters")
	}
	if m := c.NACHA.FileIDModifier; len(m) != 1 || !isUpperAlphanumeric(m[0]) {
		problems = append(problems, "NACHA_FILE_ID_MODIFIER must be a single A-Z or 0-9 character")
	}

	switch c.Tokenizer.Backend {
	case TokenizerMemory:
		if !c.ACH.TestMode {
			problems = append(problems, "TOKENIZER_BACKEND=memory is only allowed in test mode")
		}
	case TokenizerVault:
		if c.Tokenizer.VaultAddress == "" {
			problems = append(problems, "VAULT_ADDR is required for the vault tokenizer")
		}
	case TokenizerAWS:
		if c.Tokenizer.AWSRegion == "" {
			problems = append(problems, "AWS_REGION is required for the aws tokenizer")
		}
	default:
		problems = append(problems, fmt.Sprintf("TOKENIZER_BACKEND %q is not one of memory, vault, aws", c.Tokenizer.Backend))
	}

	if c.Database.Enabled && c.Database.URL == "" && c.Database.Password == "" {
		problems = append(problems, "DB_PASSWORD or DATABASE_URL is required when DB_ENABLED is set")
	}
	if c.Outbox.DispatcherEnabled && c.Outbox.SinkURL != "" && c.Outbox.SinkSecret == "" {
		problems = append(problems, "SYNC_MANAGER_SECRET is required when SYNC_MANAGER_URL is set")
	}
	if c.Outbox.DispatchInterval <= 0 {
		problems = append(problems, "OUTBOX_DISPATCH_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isUpperAlphanumeric(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// ConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
