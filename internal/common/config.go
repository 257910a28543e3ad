package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Engine  EngineConfig
	LLM     LLMConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// CatalogConfig holds reference-catalog configuration. An empty DSN means
// no catalog: the matcher degrades to empty-match behavior, never an error.
type CatalogConfig struct {
	DSN          string
	QueryTimeout time.Duration
}

// EngineConfig carries the extraction and validation thresholds. These are
// empirical constants, so they are configurable rather than hard-coded.
type EngineConfig struct {
	SupplierMatchThreshold  float64 // confident supplier/company match
	ItemMatchThreshold      float64 // confident item match
	MinItemConfidence       float64 // line items below this need review
	InvoiceNumberConfidence float64 // invoice-number field floor
	MathTolerance           float64 // currency epsilon for totals checks
	MaxMatchCandidates      int
}

// LLMConfig holds the optional alternative-extraction-strategy client.
type LLMConfig struct {
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Catalog: CatalogConfig{
			DSN:          getEnv("CATALOG_DSN", ""),
			QueryTimeout: getEnvAsDuration("CATALOG_QUERY_TIMEOUT", 5*time.Second),
		},
		Engine: EngineConfig{
			SupplierMatchThreshold:  getEnvAsFloat64("SUPPLIER_MATCH_THRESHOLD", 0.8),
			ItemMatchThreshold:      getEnvAsFloat64("ITEM_MATCH_THRESHOLD", 0.7),
			MinItemConfidence:       getEnvAsFloat64("MIN_ITEM_CONFIDENCE", 0.6),
			InvoiceNumberConfidence: getEnvAsFloat64("INVOICE_NUMBER_CONFIDENCE", 0.8),
			MathTolerance:           getEnvAsFloat64("MATH_TOLERANCE", 0.01),
			MaxMatchCandidates:      getEnvAsInt("MAX_MATCH_CANDIDATES", 5),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", "llama3.2:1b"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for values the engine cannot
// work with. Data-quality thresholds are clamped elsewhere; only structural
// misconfiguration is an error.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Engine.MathTolerance < 0 {
		return NewAppError("CONFIG_ERROR", "MATH_TOLERANCE must be >= 0", ErrInvalidInput)
	}
	if c.Engine.MaxMatchCandidates <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_MATCH_CANDIDATES must be positive", ErrInvalidInput)
	}
	return nil
}
