package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"imagegen-backend/cmd"
	"imagegen-backend/internal/api"
	"imagegen-backend/internal/core"
	"imagegen-backend/internal/core/imagegen"
	"imagegen-backend/internal/core/packager"
	"imagegen-backend/internal/database"
	"imagegen-backend/internal/gallery"
	"imagegen-backend/internal/storage"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/openai/openai-go/option"
)

type Config struct {
	APIKey        string `env:"API_KEY,notEmpty,required"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	Port int    `env:"PORT" envDefault:"8501"`
	Root string `env:"ROOT" envDefault:"./imagegen"`

	DatabaseURL string `env:"DATABASE_URL"`

	StorageType       string `env:"STORAGE_TYPE" envDefault:"local"`
	ArchiveBucket     string `env:"ARCHIVE_BUCKET" envDefault:"archives"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION"`

	GalleryDir string `env:"GALLERY_DIR" envDefault:"gallery"`
}

func createStorage(cfg Config) storage.Provider {
	provider, err := cmd.CreateStorageProvider(cmd.StorageConfig{
		Type:              cfg.StorageType,
		Root:              cfg.Root,
		S3EndpointURL:     cfg.S3EndpointURL,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3Region:          cfg.S3Region,
	})
	if err != nil {
		log.Fatalf("Failed to create storage provider: %v", err)
	}

	if err := provider.CreateBucket(context.Background(), cfg.ArchiveBucket); err != nil {
		log.Fatalf("Failed to create archive bucket: %v", err)
	}

	return provider
}

func createPipeline(cfg Config) *core.Pipeline {
	var opts []option.RequestOption
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	return core.NewPipeline(imagegen.NewOpenAI(cfg.APIKey, opts...), packager.NewHTTPFetcher())
}

func createServer(cfg Config, backend *api.BackendService, ui *api.UIService) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", backend.AddRoutes)
	ui.AddRoutes(r)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
}

func main() {
	cmd.LoadEnvFile()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(cfg.Root, os.ModePerm); err != nil {
		log.Fatalf("error creating root directory: %v", err)
	}

	f, err := os.OpenFile(filepath.Join(cfg.Root, "backend.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(f, os.Stderr))

	slog.Info("starting image generation server", "root", cfg.Root, "port", cfg.Port, "storage_type", cfg.StorageType, "gallery_dir", cfg.GalleryDir)

	db, err := database.Open(cfg.DatabaseURL, filepath.Join(cfg.Root, "db", "imagegen.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	store := createStorage(cfg)
	pipeline := createPipeline(cfg)
	g := gallery.New(cfg.GalleryDir)

	backend := api.NewBackendService(db, store, cfg.ArchiveBucket, pipeline, g)
	ui, err := api.NewUIService(backend, g)
	if err != nil {
		log.Fatalf("Failed to load page templates: %v", err)
	}

	server := createServer(cfg, backend, ui)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	slog.Info("server stopped")
}
