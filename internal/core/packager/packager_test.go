package packager_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"imagegen-backend/internal/core/packager"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageServer(t *testing.T, images map[string][]byte, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		data, ok := images[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "output_file_1.png", packager.EntryName(0))
	assert.Equal(t, "output_file_3.png", packager.EntryName(2))
}

func TestPackageSingleImage(t *testing.T) {
	var hits atomic.Int32
	srv := imageServer(t, map[string][]byte{"/img.png": []byte("PNGDATA")}, &hits)

	archive, err := packager.Package(context.Background(), packager.NewHTTPFetcher(), []string{srv.URL + "/img.png"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Empty(t, archive.FetchErrors)
	assert.Equal(t, []string{"output_file_1.png"}, archive.Entries)

	files, err := packager.ReadArchive(archive.Data)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"output_file_1.png": []byte("PNGDATA")}, files)
}

func TestPackageFetchFailure(t *testing.T) {
	srv := imageServer(t, map[string][]byte{}, nil)
	location := srv.URL + "/missing.png"

	archive, err := packager.Package(context.Background(), packager.NewHTTPFetcher(), []string{location})
	require.NoError(t, err)

	require.Len(t, archive.FetchErrors, 1)
	ferr := archive.FetchErrors[0]
	assert.Equal(t, 0, ferr.Index)
	assert.Equal(t, http.StatusNotFound, ferr.StatusCode)
	assert.Equal(t, "Failed to fetch image 1 from "+location+". Error code: 404", ferr.Error())

	assert.Empty(t, archive.Entries)
	files, err := packager.ReadArchive(archive.Data)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPackageContinuesAfterFailure(t *testing.T) {
	srv := imageServer(t, map[string][]byte{
		"/a.png": []byte("first"),
		"/c.png": []byte("third"),
	}, nil)

	locations := []string{srv.URL + "/a.png", srv.URL + "/b.png", srv.URL + "/c.png"}
	archive, err := packager.Package(context.Background(), packager.NewHTTPFetcher(), locations)
	require.NoError(t, err)

	require.Len(t, archive.FetchErrors, 1)
	assert.Equal(t, 1, archive.FetchErrors[0].Index)

	files, err := packager.ReadArchive(archive.Data)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"output_file_1.png": []byte("first"),
		"output_file_3.png": []byte("third"),
	}, files)
}

type failingFetcher struct{}

func (failingFetcher) Fetch(ctx context.Context, location string) ([]byte, int, error) {
	return nil, 0, errors.New("connection refused")
}

func TestPackageTransportError(t *testing.T) {
	archive, err := packager.Package(context.Background(), failingFetcher{}, []string{"http://x/img.png"})
	require.NoError(t, err)

	require.Len(t, archive.FetchErrors, 1)
	assert.Equal(t, 0, archive.FetchErrors[0].StatusCode)
	assert.EqualError(t, errors.Unwrap(archive.FetchErrors[0]), "connection refused")
	assert.Empty(t, archive.Entries)
}

func TestArchiveRoundTrip(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x10}
	fetcher := staticFetcher{"http://x/img.png": data}

	archive, err := packager.Package(context.Background(), fetcher, []string{"http://x/img.png"})
	require.NoError(t, err)

	files, err := packager.ReadArchive(archive.Data)
	require.NoError(t, err)
	assert.Equal(t, data, files["output_file_1.png"])
}

type staticFetcher map[string][]byte

func (f staticFetcher) Fetch(ctx context.Context, location string) ([]byte, int, error) {
	data, ok := f[location]
	if !ok {
		return nil, http.StatusNotFound, nil
	}
	return data, http.StatusOK, nil
}
