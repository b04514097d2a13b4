package minio

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
)

type fakeAPI struct {
	buckets map[string]bool
	puts    map[string][]byte
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{buckets: map[string]bool{}, puts: map[string][]byte{}}
}

func (f *fakeAPI) BucketExists(_ context.Context, name string) (bool, error) {
	return f.buckets[name], nil
}

func (f *fakeAPI) MakeBucket(_ context.Context, name string, _ minio.MakeBucketOptions) error {
	f.buckets[name] = true
	return nil
}

func (f *fakeAPI) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.puts[bucket+"/"+key] = body
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, _, _ string, _ minio.GetObjectOptions) (*minio.Object, error) {
	// The concrete *minio.Object cannot be constructed outside the SDK;
	// download paths are covered by integration tests.
	panic("not implemented in fake")
}

func (f *fakeAPI) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	delete(f.puts, bucket+"/"+key)
	return nil
}

func (f *fakeAPI) PresignedGetObject(_ context.Context, bucket, key string, expiry time.Duration, _ url.Values) (*url.URL, error) {
	return url.Parse("https://minio.local/" + bucket + "/" + key + "?expires=" + expiry.String())
}

func TestEnsureBucketCreatesOnce(t *testing.T) {
	api := newFakeAPI()
	store := newArtifactStoreWithAPI(api, "patminer-reports", logging.NewNopLogger())

	require.NoError(t, store.ensureBucket(context.Background()))
	assert.True(t, api.buckets["patminer-reports"])

	// Second call is a no-op against the existing bucket.
	require.NoError(t, store.ensureBucket(context.Background()))
}

func TestUploadStoresBody(t *testing.T) {
	api := newFakeAPI()
	store := newArtifactStoreWithAPI(api, "patminer-reports", logging.NewNopLogger())

	body := []byte(`{"run_id":"run-1"}`)
	size, err := store.Upload(context.Background(), "runs/run-1/report.json", "application/json", body)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), size)
	assert.Equal(t, body, api.puts["patminer-reports/runs/run-1/report.json"])
}

func TestPresignedURL(t *testing.T) {
	api := newFakeAPI()
	store := newArtifactStoreWithAPI(api, "patminer-reports", logging.NewNopLogger())

	u, err := store.PresignedURL(context.Background(), "runs/run-1/report.csv", 30*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "patminer-reports/runs/run-1/report.csv")

	// Zero expiry falls back to the one hour default.
	u, err = store.PresignedURL(context.Background(), "runs/run-1/report.csv", 0)
	require.NoError(t, err)
	assert.Contains(t, u, "1h0m0s")
}

func TestRemove(t *testing.T) {
	api := newFakeAPI()
	store := newArtifactStoreWithAPI(api, "patminer-reports", logging.NewNopLogger())

	_, err := store.Upload(context.Background(), "runs/run-1/report.md", "text/markdown", []byte("# report"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(context.Background(), "runs/run-1/report.md"))
	assert.Empty(t, api.puts)
}
