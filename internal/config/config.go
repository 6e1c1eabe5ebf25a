package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Addr string
	Env  string // development, production

	// Files
	ContentFile    string
	ArchiveDir     string
	DailyTemplate  string
	WeeklyTemplate string
}

func Load() (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Define flags with env var fallbacks
	flag.StringVar(&cfg.Addr, "addr", getEnv("ADDR", "127.0.0.1:8310"), "Listen address for the local form")
	flag.StringVar(&cfg.Env, "env", getEnv("ENV", "development"), "Environment (development, production)")
	flag.StringVar(&cfg.ContentFile, "content-file", getEnv("CONTENT_FILE", "content.json"), "Path to the JSON content file")
	flag.StringVar(&cfg.ArchiveDir, "archive-dir", getEnv("ARCHIVE_DIR", "archives"), "Directory rendered reports are archived to")
	flag.StringVar(&cfg.DailyTemplate, "daily-template", getEnv("DAILY_TEMPLATE", "daily_template.docx"), "Daily report document template")
	flag.StringVar(&cfg.WeeklyTemplate, "weekly-template", getEnv("WEEKLY_TEMPLATE", "weekly_template.xlsx"), "Weekly report workbook template")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ContentFile == "" {
		return fmt.Errorf("content file path is required")
	}
	if c.ArchiveDir == "" {
		return fmt.Errorf("archive directory is required")
	}
	if c.DailyTemplate == "" || c.WeeklyTemplate == "" {
		return fmt.Errorf("both template paths are required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
