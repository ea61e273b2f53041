package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "workouts",
		Name:      "committed_total",
		Help:      "Workouts added to the collection, by kind and operation (create or edit).",
	}, []string{"kind", "operation"})
	workoutsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "workouts",
		Name:      "deleted_total",
		Help:      "Workouts removed from the collection.",
	})
	validationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "workouts",
		Name:      "validation_failures_total",
		Help:      "Form submissions rejected by validation.",
	})
	geocodeRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "geocoding",
		Name:      "requests_total",
		Help:      "Reverse geocoding lookups by result (ok, cached, failed).",
	}, []string{"result"})
	snapshotWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "persistence",
		Name:      "snapshot_writes_total",
		Help:      "Snapshot writes by result.",
	}, []string{"result"})
	snapshotPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_tracker",
		Subsystem: "persistence",
		Name:      "last_snapshot_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful snapshot write.",
	})
	collectionSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_tracker",
		Subsystem: "workouts",
		Name:      "collection_size",
		Help:      "Number of workouts currently held in memory.",
	})
)

func init() {
	prometheus.MustRegister(
		workoutsCreated,
		workoutsDeleted,
		validationFailures,
		geocodeRequests,
		snapshotWrites,
		snapshotPersistGauge,
		collectionSize,
	)
}

// RecordWorkoutCommitted counts a workout appended by a create or an edit.
func RecordWorkoutCommitted(kind, operation string) {
	workoutsCreated.WithLabelValues(kind, operation).Inc()
}

// RecordWorkoutsDeleted counts removed workouts.
func RecordWorkoutsDeleted(n int) {
	if n <= 0 {
		return
	}
	workoutsDeleted.Add(float64(n))
}

func RecordValidationFailure() {
	validationFailures.Inc()
}

// RecordGeocode counts a lookup outcome: "ok", "cached" or "failed".
func RecordGeocode(result string) {
	geocodeRequests.WithLabelValues(result).Inc()
}

// RecordSnapshotWrite counts a snapshot write and moves the watermark on success.
func RecordSnapshotWrite(ts time.Time, err error) {
	if err != nil {
		snapshotWrites.WithLabelValues("error").Inc()
		return
	}
	snapshotWrites.WithLabelValues("ok").Inc()
	if !ts.IsZero() {
		snapshotPersistGauge.Set(float64(ts.Unix()))
	}
}

// SetCollectionSize publishes the in-memory collection length.
func SetCollectionSize(n int) {
	collectionSize.Set(float64(n))
}
