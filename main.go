package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sharpchat/server/internal/agent"
	"github.com/sharpchat/server/internal/agent/llm"
	"github.com/sharpchat/server/internal/agent/model"
	"github.com/sharpchat/server/internal/agent/repo"
	"github.com/sharpchat/server/internal/business"
	"github.com/sharpchat/server/internal/core"
	"github.com/sharpchat/server/internal/httpapi"
	"github.com/sharpchat/server/internal/kb"
	"github.com/sharpchat/server/internal/notify"
	"github.com/sharpchat/server/internal/whatsapp"
	logx "github.com/sharpchat/server/pkg/logger"
	pkgpostgres "github.com/sharpchat/server/pkg/postgres"
	pkgredis "github.com/sharpchat/server/pkg/redis"
)

// AppConfig defines every configurable parameter, sourced from environment
// variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        int    `envconfig:"PORT" default:"8000"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config
	Pinecone kb.PineconeConfig

	// LLM providers
	APIKey    string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL   string `envconfig:"GEMINI_BASE_URL"`
	Embedding kb.EmbeddingConfig

	// Outbound mail
	SMTP notify.SMTPConfig

	// Routing core
	Router       model.RouterModelConfig
	Response     model.ResponseModelConfig
	Conversation model.ConversationConfig
	Sync         kb.SyncConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("invalid SESSION_TTL")
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	db, err := cfg.Postgres.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to connect to Postgres")
	}
	defer db.Close()

	models, err := llm.NewChatModels(ctx, llm.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		RouterCfg:  &cfg.Router,
		RespConfig: &cfg.Response,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create chat models")
	}

	businesses := business.NewRepo(db)
	index := kb.NewPineconeIndex(cfg.Pinecone)
	embedder := kb.NewOpenAIEmbedder(cfg.Embedding)
	engine := kb.NewEngine(businesses, index, embedder, cfg.Sync)

	ag := agent.New(agent.Deps{
		Sessions:   repo.NewRedisSessionRepository(rdb, ttl),
		Businesses: businesses,
		Retriever:  kb.NewSearcher(embedder, index),
		Notifier:   notify.NewSMTPNotifier(cfg.SMTP),
		Models:     models,
		Config:     cfg.Conversation,
	})

	// non-fatal reachability check; the index may come up later
	if stats, err := engine.Stats(ctx); err != nil {
		logx.Warn().Err(err).Msg("vector index unreachable at startup")
	} else {
		logx.Info().Int("dimension", stats.Dimension).Int("vectors", stats.TotalVectorCount).Msg("vector index reachable")
	}

	waHandler := whatsapp.NewHandler(whatsapp.NewSessionStore(rdb), businesses, ag)

	router := httpapi.NewRouter(
		httpapi.NewChatHandler(ag),
		httpapi.NewKBHandler(engine),
		httpapi.NewWhatsAppHandler(waHandler),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logx.Info().Str("addr", addr).Str("environment", string(env)).Msg("server listening")
	if err := http.ListenAndServe(addr, router); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
