package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alcyxob/workout-tracker/internal/storage"
)

// Runs against a live server only when TEST_MONGO_URI is set,
// e.g. TEST_MONGO_URI=mongodb://localhost:27017.
func TestMongoSnapshotRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	client, err := ConnectDB(uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = DisconnectDB(client) })

	db := client.Database(fmt.Sprintf("workout_tracker_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	ctx := context.Background()
	require.NoError(t, EnsureSnapshotIndexes(ctx, db.Collection(DefaultSnapshotCollection)))
	repo := NewMongoSnapshotRepository(db, "")

	_, err = repo.GetObject(ctx, "workouts")
	require.ErrorIs(t, err, storage.ErrObjectNotFound)

	require.NoError(t, repo.PutObject(ctx, "workouts", []byte(`[{"id":"a"}]`)))
	require.NoError(t, repo.PutObject(ctx, "workouts", []byte(`[{"id":"b"}]`)))
	got, err := repo.GetObject(ctx, "workouts")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"b"}]`, string(got))

	require.NoError(t, repo.DeleteObject(ctx, "workouts"))
	require.NoError(t, repo.DeleteObject(ctx, "workouts"))
	_, err = repo.GetObject(ctx, "workouts")
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestMongoSnapshotRepositoryRejectsEmptyKey(t *testing.T) {
	repo := &mongoSnapshotRepository{}
	_, err := repo.GetObject(context.Background(), "")
	require.ErrorIs(t, err, storage.ErrInvalidKey)
	require.ErrorIs(t, repo.PutObject(context.Background(), "", nil), storage.ErrInvalidKey)
}
