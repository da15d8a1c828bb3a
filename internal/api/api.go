package api

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"sync"
	"time"

	"imagegen-backend/internal/core"
	"imagegen-backend/internal/core/packager"
	"imagegen-backend/internal/database"
	"imagegen-backend/internal/gallery"
	"imagegen-backend/internal/storage"
	"imagegen-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// Message shown for any failure of the image service call. The underlying
	// reason is only logged.
	generationFailedMessage = "image generation failed"

	defaultListLimit = 20
	maxListLimit     = 100
)

type BackendService struct {
	// Held for a whole submission, so a waiting submission has no record yet.
	submitMu sync.Mutex

	db       *gorm.DB
	storage  storage.Provider
	bucket   string
	pipeline *core.Pipeline
	gallery  *gallery.Gallery
}

func NewBackendService(db *gorm.DB, storage storage.Provider, bucket string, pipeline *core.Pipeline, gallery *gallery.Gallery) *BackendService {
	return &BackendService{db: db, storage: storage, bucket: bucket, pipeline: pipeline, gallery: gallery}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(s.Health))
	r.Get("/options", RestHandler(s.GetOptions))
	r.Get("/gallery", RestHandler(s.GetGallery))

	r.Route("/generations", func(r chi.Router) {
		r.Post("/", RestHandler(s.CreateGeneration))
		r.Get("/", RestHandler(s.ListGenerations))
		r.Get("/{generation_id}", RestHandler(s.GetGeneration))
		r.Get("/{generation_id}/download", s.DownloadArchive)
	})
}

func (s *BackendService) Health(r *http.Request) (any, error) {
	return api.HealthResponse{Status: "ok", PipelineState: string(s.pipeline.State())}, nil
}

func (s *BackendService) GetOptions(r *http.Request) (any, error) {
	return convertOptions(), nil
}

func (s *BackendService) GetGallery(r *http.Request) (any, error) {
	return convertGallery(s.gallery), nil
}

func submissionFromRequest(req api.GenerateRequest) (core.Submission, error) {
	submission, err := core.NewSubmission(req.Prompt, req.Size, req.Quality)
	if err != nil {
		if errors.Is(err, core.ErrEmptyPrompt) {
			return core.Submission{}, CodedError(http.StatusUnprocessableEntity, err)
		}
		return core.Submission{}, CodedError(http.StatusBadRequest, err)
	}
	return submission, nil
}

func (s *BackendService) CreateGeneration(r *http.Request) (any, error) {
	req, err := ParseRequest[api.GenerateRequest](r)
	if err != nil {
		return nil, err
	}

	submission, err := submissionFromRequest(req)
	if err != nil {
		return nil, err
	}

	generation, result, err := s.Submit(r.Context(), submission)
	if err != nil {
		return nil, err
	}

	if !result.Succeeded() {
		return nil, CodedErrorf(http.StatusBadGateway, generationFailedMessage)
	}

	return convertGeneration(generation), nil
}

// Submit runs one submission through the pipeline and records the outcome.
// A failed generation is not an error: it is returned as a FAILED record with
// the run result explaining why. Once started, a submission runs to completion
// even if the caller goes away.
func (s *BackendService) Submit(ctx context.Context, submission core.Submission) (database.Generation, core.RunResult, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	ctx = context.WithoutCancel(ctx)

	generation := database.Generation{
		Id:           uuid.New(),
		Prompt:       submission.Prompt(),
		Size:         string(submission.Size()),
		Quality:      string(submission.Quality()),
		Status:       database.GenerationRunning,
		CreationTime: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&generation).Error; err != nil {
		slog.Error("error creating generation", "error", err)
		return database.Generation{}, core.RunResult{}, CodedErrorf(http.StatusInternalServerError, "failed to create generation entry")
	}

	slog.Info("starting image generation", "generation_id", generation.Id, "size", generation.Size, "quality", generation.Quality)

	result := s.pipeline.Run(ctx, submission)

	if !result.Succeeded() {
		if err := database.UpdateGenerationStatus(ctx, s.db, generation.Id, database.GenerationFailed, generationFailedMessage); err != nil {
			slog.Error("error marking generation failed", "generation_id", generation.Id, "error", err)
			return database.Generation{}, result, CodedErrorf(http.StatusInternalServerError, "failed to update generation status")
		}
		generation.Status = database.GenerationFailed
		generation.ErrorMessage = sql.NullString{String: generationFailedMessage, Valid: true}
		return generation, result, nil
	}

	archiveKey := path.Join(generation.Id.String(), packager.ArchiveFileName)
	if err := s.storage.PutObject(ctx, s.bucket, archiveKey, bytes.NewReader(result.Archive.Data)); err != nil {
		slog.Error("error storing archive", "generation_id", generation.Id, "error", err)
		if err := database.UpdateGenerationStatus(ctx, s.db, generation.Id, database.GenerationFailed, "failed to store archive"); err != nil {
			slog.Error("error marking generation failed", "generation_id", generation.Id, "error", err)
		}
		return database.Generation{}, result, CodedErrorf(http.StatusInternalServerError, "failed to store archive")
	}

	images := generationImages(generation.Id, result)

	err := s.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if len(images) > 0 {
			if err := txn.Create(&images).Error; err != nil {
				return fmt.Errorf("error saving generation images: %w", err)
			}
		}
		if err := txn.Model(&database.Generation{Id: generation.Id}).Updates(map[string]any{
			"archive_key":     sql.NullString{String: archiveKey, Valid: true},
			"status":          database.GenerationSucceeded,
			"completion_time": time.Now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("error updating generation: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Error("error recording generation result", "generation_id", generation.Id, "error", err)
		return database.Generation{}, result, CodedErrorf(http.StatusInternalServerError, "failed to record generation result")
	}

	stored, err := database.GetGeneration(ctx, s.db, generation.Id)
	if err != nil {
		slog.Error("error reloading generation", "generation_id", generation.Id, "error", err)
		return database.Generation{}, result, CodedErrorf(http.StatusInternalServerError, "error retrieving generation record")
	}

	slog.Info("image generation stored", "generation_id", stored.Id, "archive_key", archiveKey)
	return stored, result, nil
}

func generationImages(generationId uuid.UUID, result core.RunResult) []database.GenerationImage {
	fetchErrors := make(map[int]packager.FetchError, len(result.Archive.FetchErrors))
	for _, ferr := range result.Archive.FetchErrors {
		fetchErrors[ferr.Index] = ferr
	}

	images := make([]database.GenerationImage, 0, len(result.ImageLocations))
	for i, location := range result.ImageLocations {
		img := database.GenerationImage{
			GenerationId:    generationId,
			Position:        i,
			Location:        location,
			FetchStatusCode: http.StatusOK,
		}
		if ferr, failed := fetchErrors[i]; failed {
			img.FetchStatusCode = ferr.StatusCode
			img.FetchError = sql.NullString{String: ferr.Error(), Valid: true}
		} else {
			img.ArchiveEntry = sql.NullString{String: packager.EntryName(i), Valid: true}
		}
		images = append(images, img)
	}
	return images
}

func (s *BackendService) ListGenerations(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.ListGenerationsParams](r)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		return nil, CodedErrorf(http.StatusBadRequest, "limit must be at most %d", maxListLimit)
	}

	generations, err := database.ListGenerations(r.Context(), s.db, limit)
	if err != nil {
		slog.Error("error listing generations", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving generation records")
	}

	return convertGenerations(generations), nil
}

func (s *BackendService) getGeneration(ctx context.Context, id uuid.UUID) (database.Generation, error) {
	generation, err := database.GetGeneration(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.Generation{}, CodedErrorf(http.StatusNotFound, "generation not found")
		}
		slog.Error("error getting generation", "generation_id", id, "error", err)
		return database.Generation{}, CodedErrorf(http.StatusInternalServerError, "error retrieving generation record")
	}
	return generation, nil
}

func (s *BackendService) GetGeneration(r *http.Request) (any, error) {
	id, err := URLParamUUID(r, "generation_id")
	if err != nil {
		return nil, err
	}

	generation, err := s.getGeneration(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return convertGeneration(generation), nil
}

// LoadArchive returns the stored zip archive for a generation.
func (s *BackendService) LoadArchive(ctx context.Context, id uuid.UUID) ([]byte, error) {
	generation, err := s.getGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	if !generation.ArchiveKey.Valid {
		return nil, CodedErrorf(http.StatusNotFound, "generation has no archive")
	}

	data, err := s.storage.GetObject(ctx, s.bucket, generation.ArchiveKey.String)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "archive not found")
		}
		slog.Error("error loading archive", "generation_id", id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error loading archive")
	}

	return data, nil
}

func (s *BackendService) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	id, err := URLParamUUID(r, "generation_id")
	if err != nil {
		http.Error(w, err.Error(), ErrorCode(err))
		return
	}

	data, err := s.LoadArchive(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), ErrorCode(err))
		return
	}

	WriteArchive(w, data)
}

func WriteArchive(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", packager.ArchiveMimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", packager.ArchiveFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("error writing archive response", "error", err)
	}
}
