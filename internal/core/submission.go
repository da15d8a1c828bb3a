package core

import (
	"errors"
	"fmt"
	"strings"
)

type Size string

const (
	Size1024x1024 Size = "1024x1024"
	Size1024x1792 Size = "1024x1792" // portrait
	Size1792x1024 Size = "1792x1024" // landscape
)

// Sizes lists the selectable image sizes in the order they are offered.
var Sizes = []Size{Size1024x1024, Size1024x1792, Size1792x1024}

type Quality string

const (
	QualityStandard Quality = "standard"
	QualityHD       Quality = "hd"
)

var Qualities = []Quality{QualityStandard, QualityHD}

const (
	DefaultSize    = Size1024x1024
	DefaultQuality = QualityStandard

	DefaultPrompt = "Flat designed logo with white background featuring a stylized [dragon] with an aggressive expression, vibrant and dynamic, with light colors and sharp geometric shapes. [dragon] appears fierce and formidable, embodying the spirit of competitive gaming."
)

var (
	ErrInvalidSize    = errors.New("invalid image size")
	ErrInvalidQuality = errors.New("invalid image quality")
	ErrEmptyPrompt    = errors.New("prompt must not be empty")
)

func ParseSize(s string) (Size, error) {
	if s == "" {
		return DefaultSize, nil
	}
	for _, size := range Sizes {
		if string(size) == s {
			return size, nil
		}
	}
	return "", fmt.Errorf("%w '%s': must be one of %v", ErrInvalidSize, s, Sizes)
}

func ParseQuality(q string) (Quality, error) {
	if q == "" {
		return DefaultQuality, nil
	}
	for _, quality := range Qualities {
		if string(quality) == q {
			return quality, nil
		}
	}
	return "", fmt.Errorf("%w '%s': must be one of %v", ErrInvalidQuality, q, Qualities)
}

// Submission is the user input captured when generation is triggered. It is
// immutable once built.
type Submission struct {
	prompt  string
	size    Size
	quality Quality
}

// NewSubmission validates raw user input. Empty size and quality select the
// defaults; the prompt is required.
func NewSubmission(prompt, size, quality string) (Submission, error) {
	if strings.TrimSpace(prompt) == "" {
		return Submission{}, ErrEmptyPrompt
	}

	s, err := ParseSize(size)
	if err != nil {
		return Submission{}, err
	}

	q, err := ParseQuality(quality)
	if err != nil {
		return Submission{}, err
	}

	return Submission{prompt: prompt, size: s, quality: q}, nil
}

func (s Submission) Prompt() string {
	return s.prompt
}

func (s Submission) Size() Size {
	return s.size
}

func (s Submission) Quality() Quality {
	return s.quality
}
