package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/AlotfyDev/ArchiNote/pkg/utils"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreBadger   = "badger"
	StoreDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `validate:"required"`
	Environment   string `validate:"required,oneof=development staging production"`
	GraphID       string `validate:"required"`

	// Storage
	StoreBackend   string `validate:"required,oneof=memory badger dynamodb"`
	BadgerPath     string
	BadgerInMemory bool
	DynamoDBTable  string
	AWSRegion      string

	// Messaging
	EventBusName string

	// Domain configuration file
	DomainConfigPath  string
	WatchDomainConfig bool

	// Logging
	LogLevel string `validate:"oneof=debug info warn error"`

	// HTTP
	AllowedOrigins []string

	// Authentication
	AuthEnabled bool
	JWTSecret   string
	JWTIssuer   string

	// Tracing
	EnableTracing   bool
	OTLPEndpoint    string
	TraceSampleRate float64 `validate:"gte=0,lte=1"`
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first; real environment variables win.
func LoadConfig() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		GraphID:       getEnv("GRAPH_ID", "default"),

		StoreBackend:   getEnv("STORE_BACKEND", StoreMemory),
		BadgerPath:     getEnv("BADGER_PATH", "./data/badger"),
		BadgerInMemory: getEnvBool("BADGER_IN_MEMORY", false),
		DynamoDBTable:  getEnv("DYNAMODB_TABLE", getEnv("TABLE_NAME", "archinote")),
		AWSRegion:      getEnv("AWS_REGION", "us-west-2"),

		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		DomainConfigPath:  getEnv("DOMAIN_CONFIG_PATH", ""),
		WatchDomainConfig: getEnvBool("WATCH_DOMAIN_CONFIG", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		AuthEnabled: getEnvBool("AUTH_ENABLED", false),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", "archinote"),

		EnableTracing:   getEnvBool("ENABLE_TRACING", false),
		OTLPEndpoint:    getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRate: getEnvFloat("TRACE_SAMPLE_RATE", 1.0),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv reads the given files, or .env when none are named. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if c.StoreBackend == StoreDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb store")
	}
	if c.StoreBackend == StoreBadger && !c.BadgerInMemory && c.BadgerPath == "" {
		return fmt.Errorf("BADGER_PATH is required for the badger store")
	}
	if c.WatchDomainConfig && c.DomainConfigPath == "" {
		return fmt.Errorf("DOMAIN_CONFIG_PATH is required when WATCH_DOMAIN_CONFIG is set")
	}
	if c.Environment == "production" && c.AuthEnabled && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
