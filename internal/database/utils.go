package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func UpdateGenerationStatus(ctx context.Context, txn *gorm.DB, generationId uuid.UUID, status string, errorMessage string) error {
	updates := map[string]any{"status": status}
	if status == GenerationSucceeded || status == GenerationFailed {
		updates["completion_time"] = time.Now().UTC()
	}
	if errorMessage != "" {
		updates["error_message"] = sql.NullString{String: errorMessage, Valid: true}
	}

	if err := txn.WithContext(ctx).Model(&Generation{Id: generationId}).Updates(updates).Error; err != nil {
		slog.Error("error updating generation status", "generation_id", generationId, "status", status, "error", err)
		return err
	}
	return nil
}

func GetGeneration(ctx context.Context, txn *gorm.DB, generationId uuid.UUID) (Generation, error) {
	var generation Generation
	if err := txn.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&generation, "id = ?", generationId).Error; err != nil {
		return Generation{}, fmt.Errorf("error retrieving generation %s: %w", generationId, err)
	}
	return generation, nil
}

func ListGenerations(ctx context.Context, txn *gorm.DB, limit int) ([]Generation, error) {
	var generations []Generation
	if err := txn.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("creation_time DESC").
		Limit(limit).
		Find(&generations).Error; err != nil {
		return nil, fmt.Errorf("error listing generations: %w", err)
	}
	return generations, nil
}
