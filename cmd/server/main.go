// Command server runs the learning-progress API: engagement ledger,
// achievement engine, spaced-repetition reviews, and grounded answering
// over the reference document.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/mediqa-api/internal/api"
	"github.com/phrazzld/mediqa-api/internal/config"
	"github.com/phrazzld/mediqa-api/internal/domain/srs"
	"github.com/phrazzld/mediqa-api/internal/generation"
	"github.com/phrazzld/mediqa-api/internal/platform/document"
	"github.com/phrazzld/mediqa-api/internal/platform/gemini"
	"github.com/phrazzld/mediqa-api/internal/platform/logger"
	"github.com/phrazzld/mediqa-api/internal/platform/postgres"
	"github.com/phrazzld/mediqa-api/internal/retrieval"
	"github.com/phrazzld/mediqa-api/internal/service/auth"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
	"github.com/phrazzld/mediqa-api/internal/service/review"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := runMigrations(db, log); err != nil {
		return err
	}

	// Stores
	userStore := postgres.NewPostgresUserStore(db, log)
	achievementStore := postgres.NewPostgresAchievementStore(db, log)
	flashcardStore := postgres.NewPostgresFlashcardStore(db, log)

	// Services
	engine := gamification.NewEngine(userStore, achievementStore, cfg.Gamification, log)
	gamificationService := gamification.NewService(db, engine, userStore, achievementStore, log)
	reviewService := review.NewService(
		db,
		flashcardStore,
		userStore,
		srs.NewDefaultService(),
		engine,
		cfg.Gamification,
		log,
	)

	if err := gamificationService.SeedCatalog(ctx); err != nil {
		return fmt.Errorf("seeding achievement catalog: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("creating JWT service: %w", err)
	}

	index := buildRetrievalIndex(cfg, log)
	generator := buildGenerator(ctx, cfg, log)

	router := api.NewRouter(api.RouterDeps{
		UserStore:        userStore,
		JWTService:       jwtService,
		PasswordVerifier: auth.NewBcryptVerifier(),
		Gamification:     gamificationService,
		Review:           reviewService,
		Index:            index,
		Generator:        generator,
	})

	return serve(ctx, cfg.Server, router, log)
}

// buildRetrievalIndex loads and indexes the reference document. A
// missing document disables grounded answering but never stops the
// server.
func buildRetrievalIndex(cfg *config.Config, log *slog.Logger) *retrieval.Index {
	if cfg.Document.Path == "" {
		log.Warn("no reference document configured, grounded answering disabled")
		return nil
	}

	source, err := document.Load(cfg.Document.Path)
	if err != nil {
		log.Warn("failed to load reference document, grounded answering disabled",
			slog.String("path", cfg.Document.Path),
			slog.String("error", err.Error()))
		return nil
	}

	index, err := retrieval.BuildIndex(source, cfg.Retrieval.ChunkChars, log)
	if err != nil {
		log.Warn("failed to index reference document, grounded answering disabled",
			slog.String("error", err.Error()))
		return nil
	}

	return index
}

// buildGenerator creates the LLM client when an API key is configured.
func buildGenerator(ctx context.Context, cfg *config.Config, log *slog.Logger) generation.Generator {
	if cfg.LLM.GeminiAPIKey == "" {
		log.Info("no LLM API key configured, answer generation disabled")
		return nil
	}

	generator, err := gemini.NewGeminiGenerator(ctx, cfg.LLM, log)
	if err != nil {
		log.Warn("failed to create generator, answer generation disabled",
			slog.String("error", err.Error()))
		return nil
	}

	return generator
}
