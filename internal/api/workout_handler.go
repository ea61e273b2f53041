package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/persistence"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/view"
)

// WorkoutHandler exposes the tracker, its rendered view and the snapshot.
type WorkoutHandler struct {
	tracker   *service.Tracker
	board     *view.Board
	gateway   *persistence.Gateway
	presigner storage.Presigner // nil unless the snapshot lives in S3
}

// NewWorkoutHandler creates a new WorkoutHandler. presigner may be nil.
func NewWorkoutHandler(tracker *service.Tracker, board *view.Board, gateway *persistence.Gateway, presigner storage.Presigner) *WorkoutHandler {
	return &WorkoutHandler{tracker: tracker, board: board, gateway: gateway, presigner: presigner}
}

// --- DTOs for API (Data Transfer Objects) ---

// WorkoutResponse is the DTO for returning workout details.
type WorkoutResponse struct {
	ID          string        `json:"id"`
	Type        domain.Kind   `json:"type"`
	Date        time.Time     `json:"date"`
	Coords      domain.Coords `json:"coords"`
	Distance    float64       `json:"distance"`
	Duration    float64       `json:"duration"`
	Description string        `json:"description"`
	Cadence     *float64      `json:"cadence,omitempty"`
	Pace        *float64      `json:"pace,omitempty"`
	Elevation   *float64      `json:"elevation,omitempty"`
	Speed       *float64      `json:"speed,omitempty"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:          w.ID,
		Type:        w.Kind,
		Date:        w.Date,
		Coords:      w.Coords,
		Distance:    w.Distance,
		Duration:    w.Duration,
		Description: w.Description(),
	}
	if pace, ok := w.Pace(); ok {
		cadence := w.Cadence
		resp.Cadence, resp.Pace = &cadence, &pace
	}
	if speed, ok := w.Speed(); ok {
		elevation := w.Elevation
		resp.Elevation, resp.Speed = &elevation, &speed
	}
	return resp
}

// MapWorkoutsToResponse converts a slice of workouts, keeping the order.
func MapWorkoutsToResponse(workouts []*domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i, w := range workouts {
		responses[i] = MapWorkoutToResponse(w)
	}
	return responses
}

// LocationRequest is a map click.
type LocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

type SortResponse struct {
	Sorted   bool              `json:"sorted"`
	Workouts []WorkoutResponse `json:"workouts"`
}

// --- Handler Methods ---

// GetWorkouts returns the workouts in display order.
// @Router /workouts [get]
func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	c.JSON(http.StatusOK, MapWorkoutsToResponse(h.tracker.Workouts()))
}

// SelectWorkout focuses the map on one workout.
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) SelectWorkout(c *gin.Context) {
	w, err := h.tracker.Select(c.Param("id"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(w))
}

// BeginEdit opens the form pre-filled with an existing workout.
// @Router /workouts/{id}/edit [post]
func (h *WorkoutHandler) BeginEdit(c *gin.Context) {
	form, err := h.tracker.BeginEdit(c.Param("id"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// DeleteWorkout removes one workout.
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	if err := h.tracker.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAllWorkouts removes every workout and the snapshot.
// @Router /workouts [delete]
func (h *WorkoutHandler) DeleteAllWorkouts(c *gin.Context) {
	if err := h.tracker.DeleteAll(c.Request.Context()); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFormStatus reports the form state.
// @Router /form [get]
func (h *WorkoutHandler) GetFormStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Status())
}

// PickLocation opens the form for a new workout at the given coordinates.
// @Router /form/location [post]
func (h *WorkoutHandler) PickLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if err := h.tracker.PickLocation(domain.Coords{Lat: *req.Lat, Lon: *req.Lon}); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tracker.Status())
}

// SubmitForm creates or replaces a workout.
// @Router /form/submit [post]
func (h *WorkoutHandler) SubmitForm(c *gin.Context) {
	var req domain.FormInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	w, err := h.tracker.Submit(c.Request.Context(), req)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(w))
}

// CancelForm abandons the pending form.
// @Router /form/cancel [post]
func (h *WorkoutHandler) CancelForm(c *gin.Context) {
	h.tracker.Cancel()
	c.JSON(http.StatusOK, h.tracker.Status())
}

// GetView returns the rendered list, markers, focus and last popup.
// @Router /view [get]
func (h *WorkoutHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.board.Snapshot())
}

// ToggleSort switches the list between insertion and distance order.
// @Router /view/sort [post]
func (h *WorkoutHandler) ToggleSort(c *gin.Context) {
	sorted := h.tracker.ToggleSort()
	c.JSON(http.StatusOK, SortResponse{Sorted: sorted, Workouts: MapWorkoutsToResponse(h.tracker.Workouts())})
}

// ExportSnapshot downloads the persisted snapshot as stored.
// @Router /snapshot [get]
func (h *WorkoutHandler) ExportSnapshot(c *gin.Context) {
	data, err := h.gateway.Export(c.Request.Context())
	if errors.Is(err, storage.ErrObjectNotFound) {
		data, err = []byte("[]"), nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to export snapshot: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Could not read snapshot")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, h.gateway.Key()))
	c.Data(http.StatusOK, "application/json", data)
}

// GetSnapshotLink returns a temporary download URL for the snapshot.
// @Router /snapshot/link [get]
func (h *WorkoutHandler) GetSnapshotLink(c *gin.Context) {
	if h.presigner == nil {
		abortWithError(c, http.StatusNotImplemented, "Download links require the s3 storage driver")
		return
	}
	url, err := h.presigner.GeneratePresignedDownloadURL(c.Request.Context(), h.gateway.Key(), storage.DefaultPresignedURLExpiry)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not generate download link")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":       url,
		"expiresAt": time.Now().Add(storage.DefaultPresignedURLExpiry),
	})
}

// respondWithServiceError maps tracker errors to HTTP responses.
func respondWithServiceError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		abortWithError(c, http.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoPendingLocation):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidLocation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: Unexpected tracker error: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
