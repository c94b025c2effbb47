package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Places    PlacesConfig
	OpenAI    OpenAIConfig
	OTEL      OTELConfig
	Pipeline  PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// PlacesConfig holds places-provider configuration
type PlacesConfig struct {
	Provider       string
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// PipelineConfig holds the decision-engine thresholds. Every value here is
// injected into the engines at construction; the engines never read the
// environment themselves.
type PipelineConfig struct {
	// Dedup
	JobFreshWindow time.Duration
	MaxRunningAge  time.Duration
	JobResultTTL   time.Duration

	// Requery
	LocationDriftMeters float64
	RadiusGrowthRatio   float64
	PoolFloor           int

	// Relaxation
	MinResults       int
	MaxRelaxAttempts int

	// Ranking weights (rule-delta engine)
	WeightClampMin int
	WeightClampMax int

	// Overall pipeline deadline enforced by the orchestrator
	ExecutionTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "platefinder"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Places: PlacesConfig{
			Provider:       getEnv("PLACES_PROVIDER", "mock"),
			APIKey:         getEnv("PLACES_API_KEY", ""),
			RateLimitRPS:   getEnvAsFloat("PLACES_RATE_LIMIT_RPS", 10),
			RateLimitBurst: getEnvAsInt("PLACES_RATE_LIMIT_BURST", 20),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 300),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 10),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "platefinder"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Pipeline: PipelineConfig{
			JobFreshWindow:      getEnvAsDuration("PIPELINE_JOB_FRESH_WINDOW", 5*time.Minute),
			MaxRunningAge:       getEnvAsDuration("PIPELINE_MAX_RUNNING_AGE", 90*time.Second),
			JobResultTTL:        getEnvAsDuration("PIPELINE_JOB_RESULT_TTL", 30*time.Minute),
			LocationDriftMeters: getEnvAsFloat("PIPELINE_LOCATION_DRIFT_METERS", 500),
			RadiusGrowthRatio:   getEnvAsFloat("PIPELINE_RADIUS_GROWTH_RATIO", 0.5),
			PoolFloor:           getEnvAsInt("PIPELINE_POOL_FLOOR", 5),
			MinResults:          getEnvAsInt("PIPELINE_MIN_RESULTS", 3),
			MaxRelaxAttempts:    getEnvAsInt("PIPELINE_MAX_RELAX_ATTEMPTS", 4),
			WeightClampMin:      getEnvAsInt("PIPELINE_WEIGHT_CLAMP_MIN", 5),
			WeightClampMax:      getEnvAsInt("PIPELINE_WEIGHT_CLAMP_MAX", 50),
			ExecutionTimeout:    getEnvAsDuration("PIPELINE_EXECUTION_TIMEOUT", 25*time.Second),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
