package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for one process. Each binary reads the
// sections it needs: the domain APIs use Storage and Auth, the experience
// API uses Experience.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	AWS        AWSConfig        `yaml:"aws"`
	Storage    StorageConfig    `yaml:"storage"`
	Auth       AuthConfig       `yaml:"auth"`
	Experience ExperienceConfig `yaml:"experience"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	BasePath       string   `yaml:"base_path"`       // e.g. "/prod" when fronted by a staged gateway
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS, public experience API only
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// LogConfig holds logger settings
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on. It defaults to true.
func (c LogConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// AWSConfig holds the AWS settings shared by the DynamoDB store and the
// request signer.
type AWSConfig struct {
	Region           string `yaml:"region"`
	Profile          string `yaml:"profile"`           // Empty string uses default credential chain (IAM role on ECS)
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"` // DynamoDB Local, tests
}

// GetProfile returns the AWS profile, with environment variable override
func (c AWSConfig) GetProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.Profile
}

// StorageConfig holds the key-value store configuration of a domain service.
type StorageConfig struct {
	Type        string `yaml:"type"` // "dynamodb", "redis", "postgres" or "memory"
	TableName   string `yaml:"table_name"`
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
}

// AuthConfig controls how a domain API authenticates internal callers.
type AuthConfig struct {
	Enabled          bool            `yaml:"enabled"`
	Service          string          `yaml:"service"` // signing service name, default "execute-api"
	Region           string          `yaml:"region"`  // defaults to aws.region
	MaxClockSkewSecs int             `yaml:"max_clock_skew_seconds"`
	AllowedCIDRs     []string        `yaml:"allowed_cidrs"` // private network path; empty allows any origin
	TrustedCallers   []TrustedCaller `yaml:"trusted_callers"`
}

// MaxClockSkew returns the accepted signing time window as a duration
func (c AuthConfig) MaxClockSkew() time.Duration {
	return time.Duration(c.MaxClockSkewSecs) * time.Second
}

// TrustedCaller is an internal credential recognised by a domain API.
type TrustedCaller struct {
	Name            string `yaml:"name"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// ExperienceConfig holds the experience layer's view of the domain APIs.
type ExperienceConfig struct {
	CustomersDomainURL string `yaml:"customers_domain_url"`
	OrdersDomainURL    string `yaml:"orders_domain_url"`
	ConsumerID         string `yaml:"consumer_id"`
	SigningService     string `yaml:"signing_service"`
	SigningRegion      string `yaml:"signing_region"` // defaults to aws.region
	TimeoutSeconds     int    `yaml:"timeout_seconds"`

	// Static signing credentials. When empty the AWS default chain is used.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// Timeout returns the configured timeout as a duration
func (c ExperienceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HasStaticCredentials reports whether signing credentials are configured inline.
func (c ExperienceConfig) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "eu-west-1"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "dynamodb"
	}
	if cfg.Auth.Service == "" {
		cfg.Auth.Service = "execute-api"
	}
	if cfg.Auth.Region == "" {
		cfg.Auth.Region = cfg.AWS.Region
	}
	if cfg.Auth.MaxClockSkewSecs == 0 {
		cfg.Auth.MaxClockSkewSecs = 15 * 60
	}
	if cfg.Experience.ConsumerID == "" {
		cfg.Experience.ConsumerID = "experience-layer-bff"
	}
	if cfg.Experience.SigningService == "" {
		cfg.Experience.SigningService = "execute-api"
	}
	if cfg.Experience.SigningRegion == "" {
		cfg.Experience.SigningRegion = cfg.AWS.Region
	}
	if cfg.Experience.TimeoutSeconds == 0 {
		cfg.Experience.TimeoutSeconds = 30
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BASE_PATH"); v != "" {
		cfg.Server.BasePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
		cfg.Auth.Region = v
		cfg.Experience.SigningRegion = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		cfg.AWS.DynamoDBEndpoint = v
	}

	// Storage overrides
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("TABLE_NAME"); v != "" {
		cfg.Storage.TableName = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}

	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = strings.EqualFold(v, "true")
	}

	// Experience overrides
	if v := os.Getenv("CUSTOMERS_DOMAIN_URL"); v != "" {
		cfg.Experience.CustomersDomainURL = v
	}
	if v := os.Getenv("ORDERS_DOMAIN_URL"); v != "" {
		cfg.Experience.OrdersDomainURL = v
	}
	if v := os.Getenv("CONSUMER_ID"); v != "" {
		cfg.Experience.ConsumerID = v
	}
	if v := os.Getenv("SIGNING_ACCESS_KEY_ID"); v != "" {
		cfg.Experience.AccessKeyID = v
	}
	if v := os.Getenv("SIGNING_SECRET_ACCESS_KEY"); v != "" {
		cfg.Experience.SecretAccessKey = v
	}
	if v := os.Getenv("SIGNING_SESSION_TOKEN"); v != "" {
		cfg.Experience.SessionToken = v
	}

	return cfg, nil
}
