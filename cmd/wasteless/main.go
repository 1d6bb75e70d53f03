package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/vbonduro/wasteless/internal/config"
	"github.com/vbonduro/wasteless/internal/db"
	"github.com/vbonduro/wasteless/internal/identity/local"
	"github.com/vbonduro/wasteless/internal/logging"
	"github.com/vbonduro/wasteless/internal/recipes"
	clauderecipes "github.com/vbonduro/wasteless/internal/recipes/claude"
	ollamarecipes "github.com/vbonduro/wasteless/internal/recipes/ollama"
	"github.com/vbonduro/wasteless/internal/service"
	"github.com/vbonduro/wasteless/internal/session"
	"github.com/vbonduro/wasteless/internal/store"
	"github.com/vbonduro/wasteless/internal/web"
	"github.com/vbonduro/wasteless/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	kv := store.NewKVStore(database)
	userStore := store.NewUserStore(database)

	inventory := service.NewInventoryService(kv, logger)
	if err := inventory.Load(context.Background()); err != nil {
		logger.Error("failed to load inventory", "error", err)
		return
	}
	auth := service.NewAuthService(local.NewProvider(userStore), kv, logger)

	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}
	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		logger.Error("failed to initialize sessions", "error", err)
		return
	}
	sessions.SetSecure(cfg.SecureCookies)

	server := web.NewServer(inventory, auth, sessions, newRecipeGenerator(cfg, logger), templates.FS, logger)
	server.SetRecipeTimeout(cfg.RecipeTimeout)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newRecipeGenerator(cfg *config.Config, logger *slog.Logger) recipes.Generator {
	switch cfg.RecipeBackend {
	case config.RecipeBackendClaude:
		logger.Info("using Claude recipe backend", "model", cfg.ClaudeModel)
		return clauderecipes.NewClaudeGenerator(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case config.RecipeBackendOllama:
		logger.Info("using Ollama recipe backend", "model", cfg.OllamaModel)
		return ollamarecipes.NewOllamaGenerator(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("recipe suggestions disabled")
		return nil
	}
}
