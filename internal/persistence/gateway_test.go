package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/storage"
)

type fixedGeocoder domain.Place

func (g fixedGeocoder) ReverseGeocode(context.Context, domain.Coords) domain.Place {
	return domain.Place(g)
}

func sampleWorkouts(t *testing.T) []*domain.Workout {
	t.Helper()
	geo := fixedGeocoder{City: "Lisbon", Country: "Portugal"}
	run, err := domain.NewWithDate(domain.KindRun, domain.Coords{Lat: 38.72, Lon: -9.14}, 5.2, 31, 172,
		time.Date(2026, time.March, 5, 8, 30, 15, 123000000, time.UTC))
	require.NoError(t, err)
	run.ResolveDescription(context.Background(), geo)

	ride, err := domain.NewWithDate(domain.KindRide, domain.Coords{Lat: -33.86, Lon: 151.2}, 42, 95, 0,
		time.Date(2026, time.April, 11, 17, 0, 0, 0, time.FixedZone("AEST", 10*3600)))
	require.NoError(t, err)
	ride.ResolveDescription(context.Background(), fixedGeocoder(domain.UnknownPlace))

	return []*domain.Workout{run, ride}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(storage.NewMemoryStore(), "")
	original := sampleWorkouts(t)

	require.NoError(t, gw.Save(ctx, original))
	loaded, err := gw.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(original))

	for i, want := range original {
		got := loaded[i]
		require.Equal(t, want.ID, got.ID)
		require.Equal(t, want.Kind, got.Kind)
		require.True(t, want.Date.Equal(got.Date), "date %v != %v", want.Date, got.Date)
		require.Equal(t, want.Coords, got.Coords)
		require.Equal(t, want.Distance, got.Distance)
		require.Equal(t, want.Duration, got.Duration)
		require.Equal(t, want.Cadence, got.Cadence)
		require.Equal(t, want.Elevation, got.Elevation)
		require.Equal(t, want.Description(), got.Description())
	}
}

func TestSnapshotFormat(t *testing.T) {
	data, err := Encode(sampleWorkouts(t))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)

	run := raw[0]
	require.Equal(t, "run", run["type"])
	require.Equal(t, "2026-03-05T08:30:15.123Z", run["date"])
	require.Equal(t, []any{38.72, -9.14}, run["coords"])
	require.Equal(t, "Run in Lisbon, Portugal on March 5", run["description"])
	require.Contains(t, run, "cadence")
	require.Contains(t, run, "pace")
	require.NotContains(t, run, "elevation")
	require.NotContains(t, run, "speed")

	ride := raw[1]
	require.Equal(t, "ride", ride["type"])
	require.Equal(t, 0.0, ride["elevation"])
	require.InDelta(t, 42/(95.0/60), ride["speed"], 1e-9)
	require.NotContains(t, ride, "cadence")
}

func TestLoadWithoutSnapshotIsEmpty(t *testing.T) {
	loaded, err := NewGateway(storage.NewMemoryStore(), "").Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Empty(t, loaded)
}

func TestLoadCorruptSnapshot(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"workouts":`,
		"object not array":  `{"type":"run"}`,
		"unknown type":      `[{"type":"swim","id":"1","date":"2026-01-01T00:00:00Z","coords":[0,0],"distance":1,"duration":1}]`,
		"missing id":        `[{"type":"run","date":"2026-01-01T00:00:00Z","coords":[0,0],"distance":1,"duration":1,"cadence":1}]`,
		"missing cadence":   `[{"type":"run","id":"1","date":"2026-01-01T00:00:00Z","coords":[0,0],"distance":1,"duration":1}]`,
		"negative distance": `[{"type":"ride","id":"1","date":"2026-01-01T00:00:00Z","coords":[0,0],"distance":-1,"duration":1,"elevation":1}]`,
		"bad date":          `[{"type":"ride","id":"1","date":"yesterday","coords":[0,0],"distance":1,"duration":1,"elevation":1}]`,
		"missing date":      `[{"type":"ride","id":"1","coords":[0,0],"distance":1,"duration":1,"elevation":1}]`,
		"missing coords":    `[{"type":"ride","id":"1","date":"2026-01-01T00:00:00Z","distance":1,"duration":1,"elevation":1}]`,
		"one coord":         `[{"type":"ride","id":"1","date":"2026-01-01T00:00:00Z","coords":[45],"distance":1,"duration":1,"elevation":1}]`,
		"three coords":      `[{"type":"ride","id":"1","date":"2026-01-01T00:00:00Z","coords":[1,2,3],"distance":1,"duration":1,"elevation":1}]`,
		"null coords":       `[{"type":"ride","id":"1","date":"2026-01-01T00:00:00Z","coords":null,"distance":1,"duration":1,"elevation":1}]`,
		"duplicate id": `[{"type":"ride","id":"1","date":"2026-01-01T00:00:00Z","coords":[0,0],"distance":1,"duration":1,"elevation":1},
			{"type":"ride","id":"1","date":"2026-01-02T00:00:00Z","coords":[0,0],"distance":2,"duration":1,"elevation":1}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			require.NoError(t, store.PutObject(context.Background(), DefaultKey, []byte(payload)))

			_, err := NewGateway(store, "").Load(context.Background())
			require.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestLoadBrowserSnapshot(t *testing.T) {
	// shape written by the browser-only tracker
	payload := `[
		{"date":"2024-05-14T16:02:11.480Z","id":"5702531480","coords":[51.5,-0.12],"distance":5,"duration":25,
		 "type":"running","cadence":178,"pace":5,"description":"Running in London, United Kingdom on May 14"},
		{"date":"2024-05-15T07:45:00.000Z","id":"5771100000","coords":[51.51,-0.1],"distance":20,"duration":60,
		 "type":"cycling","elevation":150,"speed":20,"description":"Cycling in London, United Kingdom on May 15"}
	]`
	store := storage.NewMemoryStore()
	require.NoError(t, store.PutObject(context.Background(), DefaultKey, []byte(payload)))

	loaded, err := NewGateway(store, "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, domain.KindRun, loaded[0].Kind)
	require.Equal(t, "5702531480", loaded[0].ID)
	require.Equal(t, 178.0, loaded[0].Cadence)
	require.Equal(t, "Running in London, United Kingdom on May 14", loaded[0].Description())
	require.Equal(t, domain.KindRide, loaded[1].Kind)
	require.Equal(t, 150.0, loaded[1].Elevation)
}

func TestClearRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	gw := NewGateway(store, "tracker")
	require.NoError(t, gw.Save(ctx, sampleWorkouts(t)))

	require.NoError(t, gw.Clear(ctx))
	_, err := store.GetObject(ctx, "tracker")
	require.ErrorIs(t, err, storage.ErrObjectNotFound)

	loaded, err := gw.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
	require.NoError(t, gw.Clear(ctx))
}

type failingStore struct{ storage.ObjectStore }

var errDisk = errors.New("disk on fire")

func (failingStore) GetObject(context.Context, string) ([]byte, error) { return nil, errDisk }
func (failingStore) PutObject(context.Context, string, []byte) error  { return errDisk }

func TestStoreErrorsAreNotCorruption(t *testing.T) {
	gw := NewGateway(failingStore{}, "")

	_, err := gw.Load(context.Background())
	require.ErrorIs(t, err, errDisk)
	require.NotErrorIs(t, err, ErrCorruptSnapshot)

	require.ErrorIs(t, gw.Save(context.Background(), nil), errDisk)
}

func TestSaveEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	gw := NewGateway(store, "")
	require.NoError(t, gw.Save(ctx, nil))

	data, err := gw.Export(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(data))
}
