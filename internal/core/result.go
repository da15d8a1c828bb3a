package core

import "errors"

var ErrGenerationFailed = errors.New("image generation failed")

// GenerationResult is the outcome of one call to the image service: either a
// location for the generated image or the reason the call failed.
type GenerationResult struct {
	location string
	reason   error
}

func Success(location string) GenerationResult {
	return GenerationResult{location: location}
}

func Failure(reason error) GenerationResult {
	if reason == nil {
		reason = ErrGenerationFailed
	}
	return GenerationResult{reason: reason}
}

func (r GenerationResult) Ok() bool {
	return r.reason == nil
}

func (r GenerationResult) Location() string {
	return r.location
}

func (r GenerationResult) Reason() error {
	return r.reason
}
