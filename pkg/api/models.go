package api

import (
	"time"

	"github.com/google/uuid"
)

type GenerateRequest struct {
	Prompt  string `schema:"prompt"`
	Size    string `schema:"size"`
	Quality string `schema:"quality"`
}

type GenerationImage struct {
	Position        int
	Location        string
	ArchiveEntry    string `json:",omitempty"`
	FetchStatusCode int
	FetchError      string `json:",omitempty"`
}

type Generation struct {
	Id uuid.UUID

	Prompt  string
	Size    string
	Quality string

	Status string
	Error  string `json:",omitempty"`

	DownloadUrl string `json:",omitempty"`

	CreationTime   time.Time
	CompletionTime *time.Time `json:",omitempty"`

	Images []GenerationImage
}

type ListGenerationsParams struct {
	Limit int `schema:"limit"`
}

type Options struct {
	Sizes          []string
	Qualities      []string
	DefaultSize    string
	DefaultQuality string
	DefaultPrompt  string
}

type GalleryItem struct {
	Name    string
	Caption string
	Url     string
}

type PromptFramework struct {
	Letter      string
	Name        string
	Description string
}

type Gallery struct {
	Framework      []PromptFramework
	ExamplePrompts []string
	Items          []GalleryItem
}

type HealthResponse struct {
	Status        string
	PipelineState string
}
