package packager

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves the raw bytes behind an image location. A non-nil error
// means no response was received; otherwise status is the HTTP status code.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (body []byte, status int, err error)
}

type HTTPFetcher struct {
	client *resty.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher returns a fetcher issuing a single GET per location, with no
// retries.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: resty.New()}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, int, error) {
	res, err := f.client.R().SetContext(ctx).Get(location)
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching image from %s: %w", location, err)
	}
	return res.Body(), res.StatusCode(), nil
}
