package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"imagegen-backend/internal/core/packager"
)

type State string

const (
	StateIdle             State = "IDLE"
	StateSubmitting       State = "SUBMITTING"
	StateReadyForDownload State = "READY_FOR_DOWNLOAD"
	StateFailed           State = "FAILED"
)

// Generator issues a single image generation request for a submission.
type Generator interface {
	Generate(ctx context.Context, submission Submission) GenerationResult
}

// RunResult carries everything one pass through the pipeline produced.
type RunResult struct {
	Submission     Submission
	State          State
	ImageLocations []string
	Archive        *packager.Archive
	Err            error
}

func (r RunResult) Succeeded() bool {
	return r.State == StateReadyForDownload
}

// Pipeline runs submit -> generate -> package. Runs are serialized: a second
// submission blocks until the one in progress has finished.
type Pipeline struct {
	generator Generator
	fetcher   packager.Fetcher

	runMu sync.Mutex

	stateMu sync.RWMutex
	state   State
}

func NewPipeline(generator Generator, fetcher packager.Fetcher) *Pipeline {
	return &Pipeline{
		generator: generator,
		fetcher:   fetcher,
		state:     StateIdle,
	}
}

func (p *Pipeline) State() State {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(state State) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.state = state
}

func (p *Pipeline) Run(ctx context.Context, submission Submission) RunResult {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	p.setState(StateSubmitting)

	result := p.generator.Generate(ctx, submission)
	if result.Ok() && result.Location() == "" {
		result = Failure(errors.New("image service returned an empty image location"))
	}
	if !result.Ok() {
		slog.Error("image generation failed", "size", submission.Size(), "quality", submission.Quality(), "error", result.Reason())
		p.setState(StateIdle)
		return RunResult{Submission: submission, State: StateFailed, Err: result.Reason()}
	}

	// The image service is asked for a single image, but packaging works on
	// a list so more images per submission only changes this slice.
	locations := []string{result.Location()}

	archive, err := packager.Package(ctx, p.fetcher, locations)
	if err != nil {
		slog.Error("error packaging generated images", "error", err)
		p.setState(StateIdle)
		return RunResult{Submission: submission, State: StateFailed, ImageLocations: locations, Err: err}
	}

	slog.Info("image generation complete", "images", len(locations), "archived", len(archive.Entries), "fetch_errors", len(archive.FetchErrors))

	p.setState(StateReadyForDownload)
	return RunResult{
		Submission:     submission,
		State:          StateReadyForDownload,
		ImageLocations: locations,
		Archive:        archive,
	}
}
