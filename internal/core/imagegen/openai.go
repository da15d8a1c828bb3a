package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"imagegen-backend/internal/core"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	Model = openai.ImageModelDallE3

	// The service is always asked for exactly one image per submission.
	imagesPerRequest = 1
)

type OpenAI struct {
	client openai.Client
}

var _ core.Generator = (*OpenAI)(nil)

// NewOpenAI creates a generator for the OpenAI images endpoint. SDK retries
// are turned off so that each submission maps to at most one request.
func NewOpenAI(apiKey string, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAI{client: openai.NewClient(opts...)}
}

func (o *OpenAI) Generate(ctx context.Context, submission core.Submission) core.GenerationResult {
	params := openai.ImageGenerateParams{
		Model:          Model,
		Prompt:         submission.Prompt(),
		Size:           openai.ImageGenerateParamsSize(submission.Size()),
		Quality:        openai.ImageGenerateParamsQuality(submission.Quality()),
		N:              openai.Int(imagesPerRequest),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	}

	res, err := o.client.Images.Generate(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			slog.Error("openai error: image generation rejected", "status_code", apiErr.StatusCode, "error", err)
		} else {
			slog.Error("openai error: image generation failed", "error", err)
		}
		return core.Failure(fmt.Errorf("openai image generation failed: %w", err))
	}

	if len(res.Data) == 0 || res.Data[0].URL == "" {
		slog.Error("openai error: image generation returned no image url")
		return core.Failure(errors.New("openai image generation returned no image url"))
	}

	return core.Success(res.Data[0].URL)
}
