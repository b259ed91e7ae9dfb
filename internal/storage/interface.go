// Package storage defines the local store contract shared by the tracking
// and sync services.
package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/outbox"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by Load when the database file is missing.
	ErrNotInitialized = errors.New("storage not initialized")
)

type LocalStore interface {
	// Profile
	GetProfile(id string) (models.Profile, error)
	// UpsertProfile replaces the row with a remote-confirmed snapshot and
	// clears needs_sync.
	UpsertProfile(p models.Profile, syncedAt time.Time) error
	// SaveProfile writes a locally edited profile with needs_sync set.
	SaveProfile(p models.Profile) error
	SetProfileXP(id string, xp int64, at time.Time) error

	// Activity
	InsertMeal(models.Meal) error
	MealsByDate(userID, date string) ([]models.Meal, error)
	InsertWorkout(models.Workout) error
	WorkoutsByDate(userID, date string) ([]models.Workout, error)
	// WaterByDate returns nil when the user has no row for date.
	WaterByDate(userID, date string) (*models.WaterConsumption, error)
	// AddWaterGlass creates the day's row with one glass, or increments it.
	// created reports which branch ran; newID is used only when creating.
	AddWaterGlass(userID, date, newID string, at time.Time) (w models.WaterConsumption, created bool, err error)
	SleepByDate(userID, date string) (*models.Sleep, error)
	AddSleepMinutes(userID, date string, minutes int, newID string, at time.Time) (s models.Sleep, created bool, err error)

	// Remote pulls. Rows with pending local changes are left alone.
	UpsertSyncedMeal(models.Meal) error
	UpsertSyncedWorkout(models.Workout) error
	UpsertSyncedWater(models.WaterConsumption) error
	UpsertSyncedSleep(models.Sleep) error

	// MarkSynced clears needs_sync on a row. For profiles it also stamps
	// last_synced.
	MarkSynced(table outbox.Table, id string, at time.Time) error

	// Outbox
	Enqueue(e outbox.Entry) (int64, error)
	// PendingEntries returns every queued row, oldest first.
	PendingEntries() ([]outbox.Record, error)
	DeleteEntry(id int64) error
	CountPending() (int, error)
}
