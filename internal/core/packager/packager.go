package packager

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// FetchError records an image that could not be added to the archive.
// StatusCode is 0 when the request itself failed.
type FetchError struct {
	Index      int
	Location   string
	StatusCode int
	Err        error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("Failed to fetch image %d from %s. Error code: %d", e.Index+1, e.Location, e.StatusCode)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

type Archive struct {
	Data        []byte
	Entries     []string
	FetchErrors []FetchError
}

// Package fetches every location and stores each successful response in a
// new zip archive. A failed fetch is recorded and skipped; it never stops
// the remaining images from being packaged. The returned error is only set
// if the archive itself cannot be written.
func Package(ctx context.Context, fetcher Fetcher, locations []string) (*Archive, error) {
	w := newArchiveWriter()

	var fetchErrors []FetchError
	for i, location := range locations {
		body, status, err := fetcher.Fetch(ctx, location)
		if err != nil || status != http.StatusOK {
			ferr := FetchError{Index: i, Location: location, StatusCode: status, Err: err}
			slog.Error("error fetching generated image", "index", i+1, "location", location, "status_code", status, "error", err)
			fetchErrors = append(fetchErrors, ferr)
			continue
		}

		if err := w.add(EntryName(i), body); err != nil {
			return nil, err
		}
	}

	data, err := w.close()
	if err != nil {
		return nil, err
	}

	return &Archive{Data: data, Entries: w.entries, FetchErrors: fetchErrors}, nil
}
