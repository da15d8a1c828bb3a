package cmd

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"imagegen-backend/internal/storage"

	"github.com/joho/godotenv"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

type StorageConfig struct {
	Type              string
	Root              string
	S3EndpointURL     string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
}

// CreateStorageProvider returns the archive store selected by cfg.Type. Local
// storage lives under Root/storage.
func CreateStorageProvider(cfg StorageConfig) (storage.Provider, error) {
	switch cfg.Type {
	case "", "local":
		provider, err := storage.NewLocalProvider(filepath.Join(cfg.Root, "storage"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return provider, nil
	case "s3":
		provider, err := storage.NewS3Provider(&storage.S3ProviderConfig{
			S3EndpointURL:     cfg.S3EndpointURL,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3Region:          cfg.S3Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 storage: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("invalid storage type '%s': must be 'local' or 's3'", cfg.Type)
	}
}
