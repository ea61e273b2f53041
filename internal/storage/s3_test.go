package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"alcyxob/workout-tracker/internal/config"
)

// fakeS3 serves path-style GET/PUT/DELETE object requests from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3Store(t *testing.T, prefix string) (*S3Storage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Storage(config.S3Config{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		BucketName:      "tracker",
		Prefix:          prefix,
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3Store(t *testing.T) {
	store, _ := newFakeS3Store(t, "")
	exerciseStore(t, store)
}

func TestS3StoreUsesPrefix(t *testing.T) {
	store, fake := newFakeS3Store(t, "snapshots")
	require.NoError(t, store.PutObject(context.Background(), "workouts", []byte(`[]`)))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, fake.objects, "tracker/snapshots/workouts.json")
}

func TestS3PresignedDownloadURL(t *testing.T) {
	store, _ := newFakeS3Store(t, "")
	url, err := store.GeneratePresignedDownloadURL(context.Background(), "workouts", 0)
	require.NoError(t, err)
	require.Contains(t, url, "/tracker/workouts.json")
	require.Contains(t, url, "X-Amz-Signature=")
}

func TestS3StoreRejectsPlainHTTPWithSSL(t *testing.T) {
	cfg := config.S3Config{
		Endpoint:   "http://minio.local:9000",
		Region:     "us-east-1",
		BucketName: "tracker",
		UseSSL:     true,
	}
	_, err := NewS3Storage(cfg)
	require.ErrorIs(t, err, ErrInsecureEndpoint)

	cfg.UseSSL = false
	_, err = NewS3Storage(cfg)
	require.NoError(t, err)
}
