package config

import (
	"path/filepath"
	"testing"
)

var allKeys = []string{
	"GARDEN_DATA_DIR", "GARDEN_DB_PATH", "GARDEN_STORAGE", "GARDEN_PLANS_FILE",
	"GARDEN_CATALOG_PATH", "GARDEN_LOCALE", "GARDEN_PATHWAY_PLACEMENT", "GARDEN_MAX_GRID",
	"PORT", "API_JWT_SECRET", "TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL",
	"TELEGRAM_ALLOWED_USER_IDS", "ADMIN_TELEGRAM_ID", "LLM_PROVIDER", "GROQ_API_KEY", "GEMINI_API_KEY",
}

func TestNewFromEnv(t *testing.T) {
	// Helper function to reset the environment for a test
	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, k := range allKeys {
			t.Setenv(k, "")
		}
	}

	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DataDir != "data" {
			t.Errorf("Expected DataDir 'data', got '%s'", cfg.DataDir)
		}
		if cfg.DBPath != filepath.Join("data", "garden.db") {
			t.Errorf("Unexpected DBPath '%s'", cfg.DBPath)
		}
		if cfg.Storage != StorageSQLite {
			t.Errorf("Expected sqlite storage, got '%s'", cfg.Storage)
		}
		if cfg.PathwayPlacement != "reject" {
			t.Errorf("Expected reject, got '%s'", cfg.PathwayPlacement)
		}
		if cfg.MaxGrid != 20 || cfg.Port != "8080" || cfg.Locale != "en" || cfg.LLMProvider != "groq" {
			t.Errorf("Unexpected defaults: %+v", cfg)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GARDEN_DATA_DIR", "/srv/garden")
		t.Setenv("GARDEN_STORAGE", "FILE")
		t.Setenv("GARDEN_PATHWAY_PLACEMENT", "allow")
		t.Setenv("GARDEN_MAX_GRID", "12")
		t.Setenv("GARDEN_LOCALE", "ja")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "11, 22,")
		t.Setenv("ADMIN_TELEGRAM_ID", "11")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.PlansFile != filepath.Join("/srv/garden", "plans.json") {
			t.Errorf("Unexpected PlansFile '%s'", cfg.PlansFile)
		}
		if cfg.Storage != StorageFile || cfg.PathwayPlacement != "allow" || cfg.MaxGrid != 12 || cfg.Locale != "ja" {
			t.Errorf("Unexpected overrides: %+v", cfg)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 22 {
			t.Errorf("Unexpected allow list %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 11 {
			t.Errorf("Expected admin 11, got %d", cfg.AdminTelegramID)
		}
	})

	invalid := map[string][2]string{
		"BadStorage":   {"GARDEN_STORAGE", "postgres"},
		"BadPathway":   {"GARDEN_PATHWAY_PLACEMENT", "sometimes"},
		"BadMaxGrid":   {"GARDEN_MAX_GRID", "0"},
		"BadAllowList": {"TELEGRAM_ALLOWED_USER_IDS", "1,abc"},
		"BadAdminID":   {"ADMIN_TELEGRAM_ID", "root"},
	}
	for name, kv := range invalid {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := NewFromEnv(); err == nil {
				t.Fatalf("Expected an error for %s=%s, got nil", kv[0], kv[1])
			}
		})
	}
}

func TestRequire(t *testing.T) {
	t.Run("API", func(t *testing.T) {
		cfg := &Config{}
		expectedError := "API_JWT_SECRET environment variable not set"
		if err := cfg.RequireAPI(); err == nil || err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%v'", expectedError, err)
		}
		cfg.APIJWTSecret = "s3cret"
		if err := cfg.RequireAPI(); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("Telegram", func(t *testing.T) {
		cfg := &Config{TelegramBotToken: "token"}
		expectedError := "TELEGRAM_WEBHOOK_URL environment variable not set"
		if err := cfg.RequireTelegram(); err == nil || err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%v'", expectedError, err)
		}
		cfg.TelegramWebhookURL = "https://example.test/webhook"
		cfg.TelegramAllowedUserIDs = []int64{1}
		if err := cfg.RequireTelegram(); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("LLM", func(t *testing.T) {
		cfg := &Config{LLMProvider: "gemini"}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err := cfg.RequireLLM(); err == nil || err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%v'", expectedError, err)
		}
		cfg.LLMProvider = "openai"
		if err := cfg.RequireLLM(); err == nil {
			t.Error("Expected an error for an unknown provider")
		}
		cfg.LLMProvider = "groq"
		cfg.GroqAPIKey = "key"
		if err := cfg.RequireLLM(); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})
	t.Run("Ghost", func(t *testing.T) {
		cfg := &Config{GhostURL: "https://blog.example"}
		expectedError := "GHOST_ADMIN_API_KEY environment variable not set"
		if err := cfg.RequireGhost(); err == nil || err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%v'", expectedError, err)
		}
		cfg.GhostAdminKey = "id:abcd"
		if err := cfg.RequireGhost(); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})
}
