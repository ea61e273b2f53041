package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the discriminant of a Workout.
type Kind string

const (
	KindRun  Kind = "run"
	KindRide Kind = "ride"
)

// ParseKind maps a form or snapshot type to a Kind.
// "running" and "cycling" are the discriminants written by the browser-only
// version of the tracker and are still accepted.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run", "running":
		return KindRun, true
	case "ride", "cycling":
		return KindRide, true
	}
	return "", false
}

// Title returns the capitalized kind used in descriptions ("Run", "Ride").
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Coords is a (latitude, longitude) pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite and in range.
func (c Coords) Valid() bool {
	return finite(c.Lat, c.Lon) &&
		c.Lat >= -90 && c.Lat <= 90 &&
		c.Lon >= -180 && c.Lon <= 180
}

// Workout is a logged run or ride.
//
// Exactly one of Cadence (run) or Elevation (ride) is meaningful, selected by
// Kind. Pace and Speed are derived from Distance and Duration on every call.
type Workout struct {
	ID       string
	Kind     Kind
	Date     time.Time
	Coords   Coords
	Distance float64 // km
	Duration float64 // min

	Cadence   float64 // steps/min, run only
	Elevation float64 // metres gained, ride only

	description string
}

// New builds a workout dated now with a fresh ID.
func New(kind Kind, coords Coords, distance, duration, measure float64) (*Workout, error) {
	return NewWithDate(kind, coords, distance, duration, measure, time.Now())
}

// NewWithDate builds a workout with a fresh ID and the given date.
// measure is the cadence for runs and the elevation gain for rides.
func NewWithDate(kind Kind, coords Coords, distance, duration, measure float64, date time.Time) (*Workout, error) {
	w := &Workout{
		ID:       uuid.NewString(),
		Kind:     kind,
		Date:     date,
		Coords:   coords,
		Distance: distance,
		Duration: duration,
	}
	switch kind {
	case KindRun:
		w.Cadence = measure
	case KindRide:
		w.Elevation = measure
	}
	if err := w.check(); err != nil {
		return nil, err
	}
	return w, nil
}

// Record carries the persisted fields of a workout.
type Record struct {
	ID          string
	Kind        Kind
	Date        time.Time
	Coords      Coords
	Distance    float64
	Duration    float64
	Cadence     float64
	Elevation   float64
	Description string
}

// Restore rebuilds a workout from a persisted record, keeping its ID, date and
// previously resolved description.
func Restore(r Record) (*Workout, error) {
	if r.ID == "" {
		return nil, &ValidationError{Message: "workout id is required"}
	}
	w := &Workout{
		ID:          r.ID,
		Kind:        r.Kind,
		Date:        r.Date,
		Coords:      r.Coords,
		Distance:    r.Distance,
		Duration:    r.Duration,
		description: r.Description,
	}
	switch r.Kind {
	case KindRun:
		w.Cadence = r.Cadence
	case KindRide:
		w.Elevation = r.Elevation
	}
	if err := w.check(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workout) check() error {
	if !w.Coords.Valid() {
		return &ValidationError{Message: "coordinates must be finite and within range"}
	}
	if !finite(w.Distance, w.Duration) || w.Distance <= 0 || w.Duration <= 0 {
		return &ValidationError{Message: "distance and duration must be positive numbers"}
	}
	switch w.Kind {
	case KindRun:
		if !finite(w.Cadence) || w.Cadence <= 0 {
			return &ValidationError{Message: "cadence must be a positive number"}
		}
	case KindRide:
		if !finite(w.Elevation) || w.Elevation < 0 {
			return &ValidationError{Message: "elevation gain must not be negative"}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("unknown workout type %q", w.Kind)}
	}
	return nil
}

// Measure returns the kind-specific field: cadence for runs, elevation for rides.
func (w *Workout) Measure() float64 {
	if w.Kind == KindRun {
		return w.Cadence
	}
	return w.Elevation
}

// Pace is minutes per kilometre; ok is false for rides.
func (w *Workout) Pace() (pace float64, ok bool) {
	if w.Kind != KindRun {
		return 0, false
	}
	return w.Duration / w.Distance, true
}

// Speed is kilometres per hour; ok is false for runs.
func (w *Workout) Speed() (speed float64, ok bool) {
	if w.Kind != KindRide {
		return 0, false
	}
	return w.Distance / (w.Duration / 60), true
}

// Description returns the resolved label, or "" before ResolveDescription.
func (w *Workout) Description() string {
	return w.description
}

// ResolveDescription looks up the place name once and caches the label.
// Subsequent calls return the cached value without touching the geocoder.
func (w *Workout) ResolveDescription(ctx context.Context, g Geocoder) string {
	if w.description != "" {
		return w.description
	}
	place := UnknownPlace
	if g != nil {
		place = g.ReverseGeocode(ctx, w.Coords)
	}
	w.description = FormatDescription(w.Kind, place, w.Date)
	return w.description
}

// FormatDescription renders "<Kind> in <City>, <Country> on <Month> <Day>".
// The country part is dropped when unknown.
func FormatDescription(kind Kind, place Place, date time.Time) string {
	return fmt.Sprintf("%s in %s on %s %d", kind.Title(), place.String(), date.Month(), date.Day())
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
