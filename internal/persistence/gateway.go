// Package persistence serializes the workout collection to a byte store.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/storage"
)

// DefaultKey is the object key holding the snapshot.
const DefaultKey = "workouts"

// ErrCorruptSnapshot means a snapshot exists but cannot be decoded.
var ErrCorruptSnapshot = errors.New("workout snapshot is corrupt")

// record is the flat JSON form of one workout.
type record struct {
	Type        string     `json:"type"`
	ID          string     `json:"id"`
	Date        time.Time  `json:"date"`
	Coords      []float64  `json:"coords"`
	Distance    float64    `json:"distance"`
	Duration    float64    `json:"duration"`
	Description string     `json:"description"`
	Cadence     *float64   `json:"cadence,omitempty"`
	Pace        *float64   `json:"pace,omitempty"`
	Elevation   *float64   `json:"elevation,omitempty"`
	Speed       *float64   `json:"speed,omitempty"`
}

// Gateway reads and writes the snapshot under a fixed key.
type Gateway struct {
	store storage.ObjectStore
	key   string
}

// NewGateway uses DefaultKey when key is empty.
func NewGateway(store storage.ObjectStore, key string) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	return &Gateway{store: store, key: key}
}

// Key returns the object key of the snapshot.
func (g *Gateway) Key() string {
	return g.key
}

// Save overwrites the snapshot with the whole collection.
func (g *Gateway) Save(ctx context.Context, workouts []*domain.Workout) error {
	data, err := Encode(workouts)
	if err != nil {
		return err
	}
	if err := g.store.PutObject(ctx, g.key, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted collection. A missing snapshot yields an empty
// collection and no error; an unreadable one yields ErrCorruptSnapshot.
func (g *Gateway) Load(ctx context.Context) ([]*domain.Workout, error) {
	data, err := g.store.GetObject(ctx, g.key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return []*domain.Workout{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Decode(data)
}

// Clear removes the snapshot.
func (g *Gateway) Clear(ctx context.Context) error {
	if err := g.store.DeleteObject(ctx, g.key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Export returns the raw snapshot bytes, or storage.ErrObjectNotFound.
func (g *Gateway) Export(ctx context.Context) ([]byte, error) {
	return g.store.GetObject(ctx, g.key)
}

// Encode renders workouts in snapshot form.
func Encode(workouts []*domain.Workout) ([]byte, error) {
	records := make([]record, 0, len(workouts))
	for _, w := range workouts {
		records = append(records, toRecord(w))
	}
	return json.Marshal(records)
}

// Decode parses a snapshot. Every entry must be a valid workout with a unique id.
func Decode(data []byte) ([]*domain.Workout, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	workouts := make([]*domain.Workout, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		w, err := fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptSnapshot, i, err)
		}
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("%w: entry %d: duplicate id %q", ErrCorruptSnapshot, i, w.ID)
		}
		seen[w.ID] = struct{}{}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

func toRecord(w *domain.Workout) record {
	r := record{
		Type:        string(w.Kind),
		ID:          w.ID,
		Date:        w.Date,
		Coords:      []float64{w.Coords.Lat, w.Coords.Lon},
		Distance:    w.Distance,
		Duration:    w.Duration,
		Description: w.Description(),
	}
	switch w.Kind {
	case domain.KindRun:
		cadence := w.Cadence
		pace, _ := w.Pace()
		r.Cadence, r.Pace = &cadence, &pace
	case domain.KindRide:
		elevation := w.Elevation
		speed, _ := w.Speed()
		r.Elevation, r.Speed = &elevation, &speed
	}
	return r
}

// fromRecord ignores the stored pace/speed; they are derived again.
func fromRecord(r record) (*domain.Workout, error) {
	kind, ok := domain.ParseKind(r.Type)
	if !ok {
		return nil, fmt.Errorf("unknown workout type %q", r.Type)
	}
	if r.Date.IsZero() {
		return nil, errors.New("missing date")
	}
	if len(r.Coords) != 2 {
		return nil, fmt.Errorf("coords must be [lat, lon], got %d values", len(r.Coords))
	}
	rec := domain.Record{
		ID:          r.ID,
		Kind:        kind,
		Date:        r.Date,
		Coords:      domain.Coords{Lat: r.Coords[0], Lon: r.Coords[1]},
		Distance:    r.Distance,
		Duration:    r.Duration,
		Description: r.Description,
	}
	switch kind {
	case domain.KindRun:
		if r.Cadence == nil {
			return nil, errors.New("run without cadence")
		}
		rec.Cadence = *r.Cadence
	case domain.KindRide:
		if r.Elevation == nil {
			return nil, errors.New("ride without elevation")
		}
		rec.Elevation = *r.Elevation
	}
	return domain.Restore(rec)
}
