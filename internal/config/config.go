// Package config loads runtime settings from environment variables, reading
// a .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/classifier"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	LogLevel   string
	OCR        extractor.OCRConfig
	Classifier classifier.Config
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string
	MaxUploadMB int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded when present; an explicit envPath must exist.
// Variables already set in the environment win over the file.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := Default()
	p := &envParser{}
	cfg.Server.Addr = getEnvOrDefault("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.MaxUploadMB = p.int("MAX_UPLOAD_MB", cfg.Server.MaxUploadMB)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	cfg.OCR.Language = getEnvOrDefault("OCR_LANGUAGE", cfg.OCR.Language)
	cfg.OCR.MinConfidence = p.float("OCR_MIN_CONFIDENCE", cfg.OCR.MinConfidence)
	cfg.OCR.DPI = p.int("OCR_DPI", cfg.OCR.DPI)
	cfg.OCR.Workers = p.int("OCR_WORKERS", cfg.OCR.Workers)

	cls := &cfg.Classifier
	cls.SuspiciousCashThreshold = p.decimal("SUSPICIOUS_CASH_THRESHOLD", cls.SuspiciousCashThreshold)
	cls.AnomalyCashThreshold = p.decimal("ANOMALY_CASH_THRESHOLD", cls.AnomalyCashThreshold)
	cls.UPIDailyLimit = p.int("UPI_DAILY_LIMIT", cls.UPIDailyLimit)
	cls.ExtendedBounceKeywords = p.bool("EXTENDED_BOUNCE_KEYWORDS", cls.ExtendedBounceKeywords)
	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// Default returns the configuration used when no variable is set. Load
// overlays the environment on top of it.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Addr: ":8080", MaxUploadMB: 32},
		LogLevel:   "info",
		OCR:        extractor.DefaultOCRConfig(),
		Classifier: classifier.DefaultConfig(),
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("SERVER_ADDR must not be empty"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.Server.MaxUploadMB))
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 100 {
		errs = append(errs, fmt.Errorf("OCR_MIN_CONFIDENCE must be within 0-100, got %v", c.OCR.MinConfidence))
	}
	if c.OCR.DPI < 72 {
		errs = append(errs, fmt.Errorf("OCR_DPI must be at least 72, got %d", c.OCR.DPI))
	}
	if c.OCR.Workers < 1 {
		errs = append(errs, fmt.Errorf("OCR_WORKERS must be at least 1, got %d", c.OCR.Workers))
	}
	if c.Classifier.SuspiciousCashThreshold.IsNegative() {
		errs = append(errs, errors.New("SUSPICIOUS_CASH_THRESHOLD must not be negative"))
	}
	if c.Classifier.AnomalyCashThreshold.IsNegative() {
		errs = append(errs, errors.New("ANOMALY_CASH_THRESHOLD must not be negative"))
	}
	if c.Classifier.UPIDailyLimit < 0 {
		errs = append(errs, fmt.Errorf("UPI_DAILY_LIMIT must not be negative, got %d", c.Classifier.UPIDailyLimit))
	}
	return errors.Join(errs...)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser parses typed variables and keeps the first malformed one.
type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	value := os.Getenv(key)
	return value, value != "" && p.err == nil
}

func (p *envParser) fail(key, value string) {
	p.err = fmt.Errorf("invalid value for %s: %q", key, value)
}

func (p *envParser) int(key string, defaultValue int) int {
	value, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value)
		return defaultValue
	}
	return n
}

func (p *envParser) float(key string, defaultValue float64) float64 {
	value, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value)
		return defaultValue
	}
	return f
}

func (p *envParser) bool(key string, defaultValue bool) bool {
	value, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value)
		return defaultValue
	}
	return b
}

func (p *envParser) decimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		p.fail(key, value)
		return defaultValue
	}
	return d
}
