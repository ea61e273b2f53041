package service

import (
	"context"

	"alcyxob/workout-tracker/internal/domain"
)

// Presenter renders the collection. The Tracker is its only caller.
type Presenter interface {
	RenderMarker(w *domain.Workout)
	RenderListItem(w *domain.Workout)
	HideListItem(id string)
	// RemoveListItem drops the list item and marker of a workout.
	RemoveListItem(id string)
	ClearAllListItems()
	// ResetSurface clears list items, markers, focus and popups.
	ResetSurface()
	FocusMap(c domain.Coords)
	ShowValidationPopup(title, message string, success bool)
}

// Locator reports the user's current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (domain.Coords, error)
}

// SnapshotGateway persists the whole collection.
type SnapshotGateway interface {
	Save(ctx context.Context, workouts []*domain.Workout) error
	Load(ctx context.Context) ([]*domain.Workout, error)
	Clear(ctx context.Context) error
}
