package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Storage backends for the plan collection.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

// Config holds the configuration for the application.
type Config struct {
	DataDir          string
	DBPath           string
	Storage          string
	PlansFile        string
	CatalogPath      string
	Locale           string
	PathwayPlacement string
	MaxGrid          int

	// HTTP API
	Port         string
	APIJWTSecret string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	// Ghost blog publishing
	GhostURL      string
	GhostAdminKey string

	// Catalog clipper
	LLMProvider  string
	GroqAPIKey   string
	GeminiAPIKey string
}

// NewFromEnv creates a new Config object from environment variables.
// Credentials for the optional surfaces are checked by the Require*
// methods when that surface starts.
func NewFromEnv() (*Config, error) {
	dataDir := getEnv("GARDEN_DATA_DIR", "data")

	storage := strings.ToLower(getEnv("GARDEN_STORAGE", StorageSQLite))
	if storage != StorageSQLite && storage != StorageFile {
		return nil, fmt.Errorf("GARDEN_STORAGE must be %q or %q, got %q", StorageSQLite, StorageFile, storage)
	}

	pathway := strings.ToLower(getEnv("GARDEN_PATHWAY_PLACEMENT", "reject"))
	if pathway != "reject" && pathway != "allow" {
		return nil, fmt.Errorf("GARDEN_PATHWAY_PLACEMENT must be \"allow\" or \"reject\", got %q", pathway)
	}

	maxGrid := 20
	if s := os.Getenv("GARDEN_MAX_GRID"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("GARDEN_MAX_GRID must be a positive integer, got %q", s)
		}
		maxGrid = n
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		adminID, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return &Config{
		DataDir:                dataDir,
		DBPath:                 getEnv("GARDEN_DB_PATH", filepath.Join(dataDir, "garden.db")),
		Storage:                storage,
		PlansFile:              getEnv("GARDEN_PLANS_FILE", filepath.Join(dataDir, "plans.json")),
		CatalogPath:            getEnv("GARDEN_CATALOG_PATH", filepath.Join(dataDir, "vegetables.yaml")),
		Locale:                 getEnv("GARDEN_LOCALE", "en"),
		PathwayPlacement:       pathway,
		MaxGrid:                maxGrid,
		Port:                   getEnv("PORT", "8080"),
		APIJWTSecret:           os.Getenv("API_JWT_SECRET"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
		GhostURL:               os.Getenv("GHOST_URL"),
		GhostAdminKey:          os.Getenv("GHOST_ADMIN_API_KEY"),
		LLMProvider:            strings.ToLower(getEnv("LLM_PROVIDER", "groq")),
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
	}, nil
}

// RequireAPI checks the settings the HTTP API needs.
func (c *Config) RequireAPI() error {
	if c.APIJWTSecret == "" {
		return fmt.Errorf("API_JWT_SECRET environment variable not set")
	}
	return nil
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// RequireTelegram checks the settings the Telegram bot needs.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	if len(c.TelegramAllowedUserIDs) == 0 {
		return fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS environment variable not set")
	}
	return nil
}

// RequireGhost checks the settings plan publishing needs.
func (c *Config) RequireGhost() error {
	if c.GhostURL == "" {
		return fmt.Errorf("GHOST_URL environment variable not set")
	}
	if c.GhostAdminKey == "" {
		return fmt.Errorf("GHOST_ADMIN_API_KEY environment variable not set")
	}
	return nil
}

// RequireLLM checks the credentials of the selected LLM provider.
func (c *Config) RequireLLM() error {
	switch c.LLMProvider {
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be \"groq\" or \"gemini\", got %q", c.LLMProvider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
