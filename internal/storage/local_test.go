package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalProvider(t *testing.T) (*LocalProvider, string) {
	t.Helper()
	dir := t.TempDir()
	provider, err := NewLocalProvider(dir)
	require.NoError(t, err)
	return provider, dir
}

func TestLocalProvider_PutObject(t *testing.T) {
	provider, baseDir := setupLocalProvider(t)

	content := []byte("zip content")
	err := provider.PutObject(context.Background(), "archives", "gen-1/output_files.zip", bytes.NewReader(content))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(baseDir, "archives", "gen-1", "output_files.zip"))
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestLocalProvider_GetObject(t *testing.T) {
	provider, _ := setupLocalProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.CreateBucket(ctx, "archives"))
	require.NoError(t, provider.PutObject(ctx, "archives", "a.zip", bytes.NewReader([]byte("abc"))))

	data, err := provider.GetObject(ctx, "archives", "a.zip")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestLocalProvider_GetObjectNotFound(t *testing.T) {
	provider, _ := setupLocalProvider(t)

	_, err := provider.GetObject(context.Background(), "archives", "missing.zip")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalProvider_RejectsEscapingKeys(t *testing.T) {
	provider, _ := setupLocalProvider(t)

	err := provider.PutObject(context.Background(), "archives", "../outside.zip", bytes.NewReader([]byte("x")))
	assert.Error(t, err)

	_, err = provider.GetObject(context.Background(), "archives", "../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalProvider_CreateBucket(t *testing.T) {
	provider, baseDir := setupLocalProvider(t)

	require.NoError(t, provider.CreateBucket(context.Background(), "archives"))
	info, err := os.Stat(filepath.Join(baseDir, "archives"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
