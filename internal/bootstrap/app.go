package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/analyses"
	"tire-backend/internal/llm"
	openai "tire-backend/internal/llm/openai"
	"tire-backend/internal/photos"
	"tire-backend/internal/services/health"
	"tire-backend/internal/shared/cache"
	"tire-backend/internal/shared/config"
	"tire-backend/internal/shared/metrics"
	"tire-backend/internal/shared/server"
	"tire-backend/internal/shared/storage/db"
	"tire-backend/internal/shared/storage/object"
	localstore "tire-backend/internal/shared/storage/object/local"
	s3store "tire-backend/internal/shared/storage/object/s3"
	"tire-backend/internal/shared/telemetry"
	"tire-backend/internal/tires/engine"
	"tire-backend/internal/tires/narrative"
	"tire-backend/internal/vision"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.Store
	Presign  photos.Presigner
	LLM      llm.Client
	Vision   vision.Adapter
	Cache    cache.Cache
	Metrics  *metrics.Metrics
	Engine   *engine.Engine
	Analyses *analyses.Service
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, presign, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	llmClient, llmReady, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	visionAdapter, visionReady, err := buildVision(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Presign: presign,
		LLM:     llmClient,
		Vision:  visionAdapter,
		Cache:   cache.NewLRU(cfg.CacheSize, cfg.CacheTTL),
		Metrics: metrics.Default(),
	}

	// A nil narrator makes the engine return the baseline.
	var narrator engine.Narrator
	if llmReady {
		narrator = narrative.New(llmClient)
	}
	app.Engine = engine.New(narrator,
		engine.WithObserver(analyses.NewObserver(app.Metrics)),
		engine.WithBranchTimeout(cfg.BranchTimeout),
	)

	var repo analyses.Repo = analyses.NewMemoryRepo()
	if sqlDB != nil {
		repo = &analyses.PGRepo{DB: sqlDB}
	}
	app.Analyses = &analyses.Service{
		Repo:    repo,
		Images:  vision.Resolver{Store: store},
		Vision:  visionAdapter,
		Engine:  app.Engine,
		Cache:   app.Cache,
		Metrics: app.Metrics,
	}

	app.Router = server.NewRouter(server.Deps{
		Config:   cfg,
		Analyses: analyses.NewHandler(app.Analyses),
		Photos:   photos.NewHandler(store, presign),
		Health:   health.NewService(sqlDB, llmReady, visionReady),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"database":     sqlDB != nil,
		"llm":          llmReady,
		"vision":       visionReady,
		"presign":      presign != nil,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			telemetry.Warn("bootstrap.db_memory", map[string]any{"reason": "migrations failed", "error": err.Error()})
			return nil, nil
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, photos.Presigner, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, nil, err
		}
		// Presigned uploads land in the store's own bucket so store:// keys resolve.
		presign, err := s3store.NewPresigner(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, nil, err
		}
		return store, presign, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil, nil
	}
}

// buildLLM reports whether a real provider is configured. Dev environments
// fall back to the placeholder when credentials are missing.
func buildLLM(cfg config.Config) (llm.Client, bool, error) {
	if cfg.LLMProvider != "openai" {
		return llm.PlaceholderClient{}, false, nil
	}
	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"error": err.Error()})
			return llm.PlaceholderClient{}, false, nil
		}
		return nil, false, err
	}
	return client, true, nil
}

func buildVision(cfg config.Config) (vision.Adapter, bool, error) {
	if strings.TrimSpace(cfg.VisionEndpoint) == "" && strings.TrimSpace(cfg.VisionKey) == "" {
		if !isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.vision_placeholder", map[string]any{"reason": "VISION_ENDPOINT empty"})
		}
		return vision.Placeholder{}, false, nil
	}
	client, err := vision.NewAzureClient(cfg.VisionEndpoint, cfg.VisionKey, cfg.VisionMinConfidence)
	if err != nil {
		return nil, false, err
	}
	return client, true, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
