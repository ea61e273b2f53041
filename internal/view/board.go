// Package view keeps the rendered state of the workout list and map so
// clients can draw it.
package view

import (
	"fmt"
	"math"
	"sync"

	"alcyxob/workout-tracker/internal/domain"
)

// MapZoom is the zoom level used when focusing the map.
const MapZoom = 13

var icons = map[domain.Kind]string{
	domain.KindRun:  "🏃‍♂️",
	domain.KindRide: "🚴‍♀️",
}

// ListItem is one entry of the workout list.
type ListItem struct {
	ID          string  `json:"id"`
	Kind        string  `json:"type"`
	Title       string  `json:"title"`
	Icon        string  `json:"icon"`
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Rate        float64 `json:"rate"`     // pace or speed, one decimal
	RateUnit    string  `json:"rateUnit"` // min/km or km/h
	Measure     float64 `json:"measure"`
	MeasureUnit string  `json:"measureUnit"` // spm or m
	Hidden      bool    `json:"hidden"`
}

// Marker is a pin on the map with its popup label.
type Marker struct {
	ID        string        `json:"id"`
	Coords    domain.Coords `json:"coords"`
	Label     string        `json:"label"`
	ClassName string        `json:"className"`
}

// Focus is the current map centre.
type Focus struct {
	Coords domain.Coords `json:"coords"`
	Zoom   int           `json:"zoom"`
}

// Popup is the last message shown to the user.
type Popup struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Snapshot is a copy of everything currently on screen.
type Snapshot struct {
	Version uint64     `json:"version"`
	Items   []ListItem `json:"items"`
	Markers []Marker   `json:"markers"`
	Focus   *Focus     `json:"focus,omitempty"`
	Popup   *Popup     `json:"popup,omitempty"`
}

// Board is an in-memory rendering surface. It is safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	version uint64
	items   []ListItem
	markers []Marker
	focus   *Focus
	popup   *Popup
}

func NewBoard() *Board {
	return &Board{}
}

// RenderMarker places or replaces the marker of w.
func (b *Board) RenderMarker(w *domain.Workout) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := Marker{
		ID:        w.ID,
		Coords:    w.Coords,
		Label:     fmt.Sprintf("%s %s", icons[w.Kind], w.Description()),
		ClassName: string(w.Kind) + "-popup",
	}
	for i := range b.markers {
		if b.markers[i].ID == w.ID {
			b.markers[i] = m
			b.version++
			return
		}
	}
	b.markers = append(b.markers, m)
	b.version++
}

// RenderListItem appends w to the list, or shows and refreshes it if present.
func (b *Board) RenderListItem(w *domain.Workout) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item := newListItem(w)
	b.version++
	for i := range b.items {
		if b.items[i].ID == w.ID {
			b.items[i] = item
			return
		}
	}
	b.items = append(b.items, item)
}

func (b *Board) HideListItem(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Hidden = true
			b.version++
			return
		}
	}
}

// RemoveListItem removes the list item and marker of id.
func (b *Board) RemoveListItem(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	for i := range b.markers {
		if b.markers[i].ID == id {
			b.markers = append(b.markers[:i], b.markers[i+1:]...)
			break
		}
	}
	b.version++
}

// ClearAllListItems empties the list; markers stay.
func (b *Board) ClearAllListItems() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = nil
	b.version++
}

// ResetSurface clears everything, as after a reload with no workouts.
func (b *Board) ResetSurface() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = nil
	b.markers = nil
	b.focus = nil
	b.popup = nil
	b.version++
}

func (b *Board) FocusMap(c domain.Coords) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.focus = &Focus{Coords: c, Zoom: MapZoom}
	b.version++
}

func (b *Board) ShowValidationPopup(title, message string, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.popup = &Popup{Title: title, Message: message, Success: success}
	b.version++
}

// Snapshot returns a copy of the current surface.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Snapshot{
		Version: b.version,
		Items:   append([]ListItem{}, b.items...),
		Markers: append([]Marker{}, b.markers...),
	}
	if b.focus != nil {
		f := *b.focus
		s.Focus = &f
	}
	if b.popup != nil {
		p := *b.popup
		s.Popup = &p
	}
	return s
}

func newListItem(w *domain.Workout) ListItem {
	item := ListItem{
		ID:       w.ID,
		Kind:     string(w.Kind),
		Title:    w.Description(),
		Icon:     icons[w.Kind],
		Distance: w.Distance,
		Duration: w.Duration,
	}
	switch w.Kind {
	case domain.KindRun:
		pace, _ := w.Pace()
		item.Rate, item.RateUnit = round1(pace), "min/km"
		item.Measure, item.MeasureUnit = w.Cadence, "spm"
	case domain.KindRide:
		speed, _ := w.Speed()
		item.Rate, item.RateUnit = round1(speed), "km/h"
		item.Measure, item.MeasureUnit = w.Elevation, "m"
	}
	return item
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
