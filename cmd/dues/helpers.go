package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/due-process/internal/config"
	"github.com/Veraticus/due-process/internal/extract"
	"github.com/Veraticus/due-process/internal/inbox"
	"github.com/Veraticus/due-process/internal/service"
	"github.com/Veraticus/due-process/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/dues/dues.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initExtractor builds the LLM extractor from configuration.
func initExtractor() (*extract.Extractor, error) {
	cfg := extract.Config{
		Provider:          viper.GetString("llm.provider"),
		APIKey:            viper.GetString("llm.api_key"),
		Model:             viper.GetString("llm.model"),
		Temperature:       viper.GetFloat64("llm.temperature"),
		MaxTokens:         viper.GetInt("llm.max_tokens"),
		RequestsPerMinute: viper.GetInt("llm.requests_per_minute"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}

	return extract.New(cfg)
}

// initInbox builds the message inbox from configuration.
func initInbox() (service.Inbox, error) {
	path := viper.GetString("inbox.path")
	if path == "" {
		return nil, fmt.Errorf("inbox.path is not configured; set it to your SMS backup file")
	}

	return inbox.NewFileInbox(config.ExpandPath(path)), nil
}
