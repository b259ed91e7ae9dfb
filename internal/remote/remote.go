// Package remote defines the row-oriented backend the sync engine pushes
// to and pulls from.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/fitlog/internal/models"
)

// ErrNoRows is returned when an update or a required select matched no row.
var ErrNoRows = errors.New("no matching remote row")

// Error wraps a backend failure with the table and operation it came from.
type Error struct {
	Table string
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote %s %s: %v", e.Table, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err.
func Wrap(table, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Table: table, Op: op, Err: err}
}

// Client is the remote service. Inserts are idempotent by id.
type Client interface {
	// GetProfile returns nil, nil when the user has no remote profile.
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileXP(ctx context.Context, id string) (int64, error)
	// UpdateProfile pushes the editable fields. Experience points are only
	// written through UpdateProfileXP.
	UpdateProfile(ctx context.Context, p models.Profile) error
	UpdateProfileXP(ctx context.Context, id string, xp int64) error

	InsertMeal(ctx context.Context, m models.Meal) error
	InsertWorkout(ctx context.Context, w models.Workout) error
	InsertWater(ctx context.Context, w models.WaterConsumption) error
	UpdateWaterGlasses(ctx context.Context, id string, glasses int) error
	InsertSleep(ctx context.Context, s models.Sleep) error
	UpdateSleepMinutes(ctx context.Context, id string, minutes int) error

	MealsByDate(ctx context.Context, userID, date string) ([]models.Meal, error)
	WorkoutsByDate(ctx context.Context, userID, date string) ([]models.Workout, error)
	WaterByDate(ctx context.Context, userID, date string) (*models.WaterConsumption, error)
	SleepByDate(ctx context.Context, userID, date string) (*models.Sleep, error)
}
