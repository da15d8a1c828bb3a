package api

import (
	"imagegen-backend/internal/core"
	"imagegen-backend/internal/database"
	"imagegen-backend/internal/gallery"
	"imagegen-backend/pkg/api"
)

func downloadUrl(g database.Generation) string {
	if !g.ArchiveKey.Valid {
		return ""
	}
	return "/api/v1/generations/" + g.Id.String() + "/download"
}

func convertGenerationImage(img database.GenerationImage) api.GenerationImage {
	return api.GenerationImage{
		Position:        img.Position,
		Location:        img.Location,
		ArchiveEntry:    img.ArchiveEntry.String,
		FetchStatusCode: img.FetchStatusCode,
		FetchError:      img.FetchError.String,
	}
}

func convertGeneration(g database.Generation) api.Generation {
	images := make([]api.GenerationImage, 0, len(g.Images))
	for _, img := range g.Images {
		images = append(images, convertGenerationImage(img))
	}

	generation := api.Generation{
		Id:           g.Id,
		Prompt:       g.Prompt,
		Size:         g.Size,
		Quality:      g.Quality,
		Status:       g.Status,
		Error:        g.ErrorMessage.String,
		DownloadUrl:  downloadUrl(g),
		CreationTime: g.CreationTime,
		Images:       images,
	}
	if g.CompletionTime.Valid {
		generation.CompletionTime = &g.CompletionTime.Time
	}
	return generation
}

func convertGenerations(gs []database.Generation) []api.Generation {
	generations := make([]api.Generation, 0, len(gs))
	for _, g := range gs {
		generations = append(generations, convertGeneration(g))
	}
	return generations
}

func convertOptions() api.Options {
	sizes := make([]string, 0, len(core.Sizes))
	for _, s := range core.Sizes {
		sizes = append(sizes, string(s))
	}
	qualities := make([]string, 0, len(core.Qualities))
	for _, q := range core.Qualities {
		qualities = append(qualities, string(q))
	}
	return api.Options{
		Sizes:          sizes,
		Qualities:      qualities,
		DefaultSize:    string(core.DefaultSize),
		DefaultQuality: string(core.DefaultQuality),
		DefaultPrompt:  core.DefaultPrompt,
	}
}

func convertGallery(g *gallery.Gallery) api.Gallery {
	framework := make([]api.PromptFramework, 0, len(gallery.Framework))
	for _, part := range gallery.Framework {
		framework = append(framework, api.PromptFramework{Letter: part.Letter, Name: part.Name, Description: part.Description})
	}

	items := make([]api.GalleryItem, 0, len(g.Images()))
	for _, img := range g.Images() {
		items = append(items, api.GalleryItem{Name: img.Name, Caption: img.Caption, Url: "/gallery/" + img.Name})
	}

	return api.Gallery{
		Framework:      framework,
		ExamplePrompts: gallery.ExamplePrompts,
		Items:          items,
	}
}
