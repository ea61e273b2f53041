package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/observability"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound   = errors.New("workout not found")
	ErrNoPendingLocation = errors.New("pick a location on the map before submitting a workout")
	ErrInvalidLocation   = errors.New("coordinates must be finite, latitude within [-90,90] and longitude within [-180,180]")
)

// LoadFailedMessage is shown when saved workouts cannot be read at startup.
const LoadFailedMessage = "Saved workouts could not be loaded. Starting with an empty list."

// State of the form interaction.
type State string

const (
	StateIdle              State = "idle"
	StateAwaitingFormInput State = "awaiting_form_input"
	StateEditing           State = "editing"
)

// editContext is captured by BeginEdit and consumed by Submit.
type editContext struct {
	originalID   string
	originalDate time.Time
	kind         domain.Kind
	coords       domain.Coords
	original     *domain.Workout
}

// Status describes the current interaction state.
type Status struct {
	State         State          `json:"state"`
	PendingCoords *domain.Coords `json:"pendingCoords,omitempty"`
	EditingID     string         `json:"editingId,omitempty"`
	SelectedID    string         `json:"selectedId,omitempty"`
	Sorted        bool           `json:"sorted"`
	Count         int            `json:"count"`
}

// Tracker owns the workout collection and the form state machine.
//
// All transitions hold mu for their whole duration, including the geocoding
// call, so two submissions never interleave. The collection and snapshot are
// written only here.
type Tracker struct {
	mu sync.Mutex

	gateway   SnapshotGateway
	geocoder  domain.Geocoder
	presenter Presenter
	locator   Locator

	workouts   []*domain.Workout
	sorted     bool
	selectedID string
	pending    *domain.Coords
	edit       *editContext
}

// NewTracker creates an empty tracker; call Start to load the snapshot.
// locator may be nil.
func NewTracker(gateway SnapshotGateway, geocoder domain.Geocoder, presenter Presenter, locator Locator) *Tracker {
	return &Tracker{
		gateway:   gateway,
		geocoder:  geocoder,
		presenter: presenter,
		locator:   locator,
		workouts:  []*domain.Workout{},
	}
}

// Start loads the persisted collection, renders it and centres the map on the
// current position. A corrupt snapshot is reported and the tracker starts
// empty; the load error is returned for the caller to log.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	workouts, loadErr := t.gateway.Load(ctx)
	if loadErr != nil {
		log.Printf("ERROR: Failed to load workouts snapshot: %v", loadErr)
		t.presenter.ShowValidationPopup(domain.ErrorTitle, LoadFailedMessage, false)
		workouts = []*domain.Workout{}
	}
	t.workouts = workouts
	observability.SetCollectionSize(len(t.workouts))

	for _, w := range t.workouts {
		t.presenter.RenderMarker(w)
	}
	t.renderList()
	log.Printf("INFO: Loaded %d workouts", len(t.workouts))

	if t.locator != nil {
		pos, err := t.locator.CurrentPosition(ctx)
		if err != nil {
			log.Printf("WARN: Could not get current position: %v", err)
		} else {
			t.presenter.FocusMap(pos)
		}
	}
	return loadErr
}

// PickLocation records coordinates for the next workout. While editing, it
// moves the workout being edited instead.
func (t *Tracker) PickLocation(c domain.Coords) error {
	if !c.Valid() {
		return ErrInvalidLocation
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.edit != nil {
		t.edit.coords = c
		return nil
	}
	t.pending = &c
	return nil
}

// Select makes id the current workout and focuses the map on it.
func (t *Tracker) Select(id string) (*domain.Workout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.find(id)
	if w == nil {
		return nil, ErrWorkoutNotFound
	}
	t.selectedID = id
	t.presenter.FocusMap(w.Coords)
	return clone(w), nil
}

// BeginEdit enters the editing state for id and returns the pre-filled form.
// Any pending creation is abandoned.
func (t *Tracker) BeginEdit(id string) (domain.FormInput, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.find(id)
	if w == nil {
		return domain.FormInput{}, ErrWorkoutNotFound
	}
	t.abandonEdit()
	t.pending = nil
	t.selectedID = id
	t.edit = &editContext{
		originalID:   w.ID,
		originalDate: w.Date,
		kind:         w.Kind,
		coords:       w.Coords,
		original:     w,
	}
	t.presenter.HideListItem(w.ID)

	form := domain.FormInput{
		Kind:     string(w.Kind),
		Distance: w.Distance,
		Duration: w.Duration,
	}
	switch w.Kind {
	case domain.KindRun:
		form.Cadence = w.Cadence
	case domain.KindRide:
		form.Elevation = w.Elevation
	}
	return form, nil
}

// Submit completes a pending creation or edit.
//
// The workout is validated and built first, then its description is resolved;
// only after that is it added to the collection, persisted and rendered. An
// edit removes the original and adds a new workout with a new ID and the
// original date. Validation failures leave the state unchanged.
func (t *Tracker) Submit(ctx context.Context, in domain.FormInput) (*domain.Workout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.edit == nil && t.pending == nil {
		return nil, ErrNoPendingLocation
	}

	w, err := t.build(in)
	if err != nil {
		observability.RecordValidationFailure()
		message := domain.InvalidFieldsMessage
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			message = verr.Message
		}
		t.presenter.ShowValidationPopup(domain.ErrorTitle, message, false)
		return nil, err
	}

	// detached from the caller; bounded by the geocoder timeout
	w.ResolveDescription(context.WithoutCancel(ctx), t.geocoder)

	operation, message := "create", domain.AddedMessage
	if t.edit != nil {
		operation, message = "edit", domain.EditedMessage
		originalID := t.edit.originalID
		t.remove(originalID)
		t.presenter.RemoveListItem(originalID)
		t.selectedID = w.ID
	}
	t.workouts = append(t.workouts, w)
	t.pending = nil
	t.edit = nil

	t.persist(ctx)
	observability.RecordWorkoutCommitted(string(w.Kind), operation)
	observability.SetCollectionSize(len(t.workouts))

	t.presenter.RenderMarker(w)
	if t.sorted {
		t.renderList()
	} else {
		t.presenter.RenderListItem(w)
	}
	t.presenter.ShowValidationPopup(domain.SuccessTitle, message, true)
	return clone(w), nil
}

func (t *Tracker) build(in domain.FormInput) (*domain.Workout, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	kind, _ := domain.ParseKind(in.Kind)
	if t.edit != nil {
		return domain.NewWithDate(kind, t.edit.coords, in.Distance, in.Duration, in.Measure(kind), t.edit.originalDate)
	}
	return domain.New(kind, *t.pending, in.Distance, in.Duration, in.Measure(kind))
}

// Cancel abandons a pending creation or edit.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.abandonEdit()
	t.pending = nil
}

// Delete removes one workout and returns to idle.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.remove(id) {
		return ErrWorkoutNotFound
	}
	if t.edit != nil && t.edit.originalID == id {
		t.edit = nil
	}
	t.abandonEdit()
	t.pending = nil
	if t.selectedID == id {
		t.selectedID = ""
	}

	t.persist(ctx)
	observability.RecordWorkoutsDeleted(1)
	observability.SetCollectionSize(len(t.workouts))
	t.presenter.RemoveListItem(id)
	return nil
}

// DeleteAll empties the collection, removes the snapshot and resets the
// rendering surface, as on a fresh start. The in-memory reset happens even
// when removing the snapshot fails; that error is returned.
func (t *Tracker) DeleteAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := len(t.workouts)
	t.workouts = []*domain.Workout{}
	t.pending = nil
	t.edit = nil
	t.selectedID = ""
	t.sorted = false
	t.presenter.ResetSurface()
	observability.RecordWorkoutsDeleted(removed)
	observability.SetCollectionSize(0)

	if err := t.gateway.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Printf("ERROR: Failed to clear workouts snapshot: %v", err)
		return err
	}
	log.Printf("INFO: Deleted all %d workouts", removed)
	return nil
}

// ToggleSort flips between collection order and ascending distance and
// re-renders the list. The collection itself is never reordered.
func (t *Tracker) ToggleSort() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sorted = !t.sorted
	t.renderList()
	return t.sorted
}

// Workouts returns copies of the workouts in display order.
func (t *Tracker) Workouts() []*domain.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneAll(t.view())
}

// Collection returns copies of the workouts in insertion order.
func (t *Tracker) Collection() []*domain.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneAll(t.workouts)
}

// Status reports the interaction state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Status{
		State:      StateIdle,
		SelectedID: t.selectedID,
		Sorted:     t.sorted,
		Count:      len(t.workouts),
	}
	switch {
	case t.edit != nil:
		s.State = StateEditing
		s.EditingID = t.edit.originalID
		coords := t.edit.coords
		s.PendingCoords = &coords
	case t.pending != nil:
		s.State = StateAwaitingFormInput
		coords := *t.pending
		s.PendingCoords = &coords
	}
	return s
}

// --- helpers, called with mu held ---

func (t *Tracker) find(id string) *domain.Workout {
	for _, w := range t.workouts {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (t *Tracker) remove(id string) bool {
	for i, w := range t.workouts {
		if w.ID == id {
			t.workouts = append(t.workouts[:i:i], t.workouts[i+1:]...)
			return true
		}
	}
	return false
}

// abandonEdit shows the hidden original again.
func (t *Tracker) abandonEdit() {
	if t.edit == nil {
		return
	}
	if t.find(t.edit.originalID) != nil {
		t.presenter.RenderListItem(t.edit.original)
	}
	t.edit = nil
}

// persist writes the snapshot; a failure is logged and counted but does not
// undo the mutation.
func (t *Tracker) persist(ctx context.Context) {
	err := t.gateway.Save(context.WithoutCancel(ctx), t.workouts)
	observability.RecordSnapshotWrite(time.Now(), err)
	if err != nil {
		log.Printf("ERROR: Failed to persist workouts snapshot: %v", err)
	}
}

func (t *Tracker) view() []*domain.Workout {
	out := make([]*domain.Workout, len(t.workouts))
	copy(out, t.workouts)
	if t.sorted {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	}
	return out
}

func (t *Tracker) renderList() {
	t.presenter.ClearAllListItems()
	for _, w := range t.view() {
		t.presenter.RenderListItem(w)
	}
	if t.edit != nil {
		t.presenter.HideListItem(t.edit.originalID)
	}
}

func clone(w *domain.Workout) *domain.Workout {
	c := *w
	return &c
}

func cloneAll(ws []*domain.Workout) []*domain.Workout {
	out := make([]*domain.Workout, len(ws))
	for i, w := range ws {
		out[i] = clone(w)
	}
	return out
}
