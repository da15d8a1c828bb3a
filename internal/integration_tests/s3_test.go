package integrationtests

import (
	"bytes"
	"context"
	"testing"
	"time"

	"imagegen-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bucketName = "test-bucket"

func setupS3Provider(t *testing.T, ctx context.Context) *storage.S3Provider {
	t.Helper()

	endpoint := setupMinioContainer(t, ctx)

	provider, err := storage.NewS3Provider(&storage.S3ProviderConfig{
		S3EndpointURL:     endpoint,
		S3AccessKeyID:     minioUsername,
		S3SecretAccessKey: minioPassword,
		S3Region:          minioRegion,
	})
	require.NoError(t, err)

	require.NoError(t, provider.CreateBucket(ctx, bucketName))
	return provider
}

func TestS3Provider_PutGetObject(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	provider := setupS3Provider(t, ctx)

	key := "generation/output_files.zip"
	content := []byte("zip content")

	require.NoError(t, provider.PutObject(ctx, bucketName, key, bytes.NewReader(content)))

	data, err := provider.GetObject(ctx, bucketName, key)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	// Overwrites replace the object.
	require.NoError(t, provider.PutObject(ctx, bucketName, key, bytes.NewReader([]byte("v2"))))
	data, err = provider.GetObject(ctx, bucketName, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestS3Provider_CreateBucketIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	provider := setupS3Provider(t, ctx)
	assert.NoError(t, provider.CreateBucket(ctx, bucketName))
}

func TestS3Provider_GetMissingObject(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	provider := setupS3Provider(t, ctx)

	_, err := provider.GetObject(ctx, bucketName, "missing/output_files.zip")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
