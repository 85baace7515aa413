package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Pipeline PipelineConfig
	Sheets   SheetsConfig
	Log      LogConfig
}

// PipelineConfig holds the input and output locations of a run.
type PipelineConfig struct {
	Input  string
	OutDir string
}

// SheetsConfig contains configuration required to read from Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Pipeline: PipelineConfig{
			Input:  getenvWithDefault("FARM_SALES_INPUT", "data/farm_sales.csv"),
			OutDir: getenvWithDefault("FARM_SALES_OUTDIR", "outputs"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getenvWithDefault("LOG_LEVEL", "info")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(c.Pipeline.Input) == "" {
		return errors.New("FARM_SALES_INPUT must not be empty")
	}

	if strings.TrimSpace(c.Pipeline.OutDir) == "" {
		return errors.New("FARM_SALES_OUTDIR must not be empty")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Log.Level)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
