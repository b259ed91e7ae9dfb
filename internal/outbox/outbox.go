// Package outbox defines the pending-mutation log entries that carry local
// writes to the remote backend.
//
// Every entry holds exactly one Mutation. The set of mutations is closed:
// one variant per (table, action) pair the remote accepts. Decode is the
// only place a persisted (table_name, action, data) triple becomes a
// variant, so the drain pass can switch on concrete types.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/fitlog/internal/models"
)

// Table names a remote table.
type Table string

// Action is the remote operation an entry performs.
type Action string

const (
	TableProfiles         Table = "profiles"
	TableMeals            Table = "meals"
	TableWorkouts         Table = "workouts"
	TableWaterConsumption Table = "water_consumption"
	TableSleep            Table = "sleep"

	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ErrUnknownMutation is returned by Decode for a (table, action) pair with
// no variant.
var ErrUnknownMutation = errors.New("unknown outbox mutation")

// Mutation is one pending remote write.
type Mutation interface {
	Table() Table
	Action() Action
	// RecordID is the id of the affected row, used as the remote key.
	RecordID() string
	mutation()
}

// Entry is a persisted outbox row.
type Entry struct {
	ID        int64
	Mutation  Mutation
	XPGained  int64
	CreatedAt time.Time
}

type MealInsert struct{ Meal models.Meal }

type WorkoutInsert struct{ Workout models.Workout }

type WaterInsert struct{ Water models.WaterConsumption }

// WaterUpdate carries only the new counter value.
type WaterUpdate struct {
	ID      string `json:"id"`
	Glasses int    `json:"glasses"`
}

type SleepInsert struct{ Sleep models.Sleep }

// SleepUpdate carries only the new accumulated minutes.
type SleepUpdate struct {
	ID           string `json:"id"`
	SleepMinutes int    `json:"sleep_minutes"`
}

// ProfileUpdate carries the full merged profile snapshot.
type ProfileUpdate struct{ Profile models.Profile }

func (MealInsert) Table() Table       { return TableMeals }
func (MealInsert) Action() Action     { return ActionInsert }
func (m MealInsert) RecordID() string { return m.Meal.ID }
func (MealInsert) mutation()          {}

func (WorkoutInsert) Table() Table       { return TableWorkouts }
func (WorkoutInsert) Action() Action     { return ActionInsert }
func (m WorkoutInsert) RecordID() string { return m.Workout.ID }
func (WorkoutInsert) mutation()          {}

func (WaterInsert) Table() Table       { return TableWaterConsumption }
func (WaterInsert) Action() Action     { return ActionInsert }
func (m WaterInsert) RecordID() string { return m.Water.ID }
func (WaterInsert) mutation()          {}

func (WaterUpdate) Table() Table       { return TableWaterConsumption }
func (WaterUpdate) Action() Action     { return ActionUpdate }
func (m WaterUpdate) RecordID() string { return m.ID }
func (WaterUpdate) mutation()          {}

func (SleepInsert) Table() Table       { return TableSleep }
func (SleepInsert) Action() Action     { return ActionInsert }
func (m SleepInsert) RecordID() string { return m.Sleep.ID }
func (SleepInsert) mutation()          {}

func (SleepUpdate) Table() Table       { return TableSleep }
func (SleepUpdate) Action() Action     { return ActionUpdate }
func (m SleepUpdate) RecordID() string { return m.ID }
func (SleepUpdate) mutation()          {}

func (ProfileUpdate) Table() Table       { return TableProfiles }
func (ProfileUpdate) Action() Action     { return ActionUpdate }
func (m ProfileUpdate) RecordID() string { return m.Profile.ID }
func (ProfileUpdate) mutation()          {}

// Encode serializes the mutation payload. The payload is the record
// snapshot itself, keyed by column name.
func Encode(m Mutation) ([]byte, error) {
	var payload any
	switch v := m.(type) {
	case MealInsert:
		payload = v.Meal
	case WorkoutInsert:
		payload = v.Workout
	case WaterInsert:
		payload = v.Water
	case WaterUpdate:
		payload = v
	case SleepInsert:
		payload = v.Sleep
	case SleepUpdate:
		payload = v
	case ProfileUpdate:
		payload = v.Profile
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMutation, m)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s: %w", m.Table(), m.Action(), err)
	}
	return data, nil
}

// Decode rebuilds the mutation stored as (table, action, data).
func Decode(table Table, action Action, data []byte) (Mutation, error) {
	var (
		m   Mutation
		err error
	)
	switch {
	case table == TableMeals && action == ActionInsert:
		var v MealInsert
		err = json.Unmarshal(data, &v.Meal)
		m = v
	case table == TableWorkouts && action == ActionInsert:
		var v WorkoutInsert
		err = json.Unmarshal(data, &v.Workout)
		m = v
	case table == TableWaterConsumption && action == ActionInsert:
		var v WaterInsert
		err = json.Unmarshal(data, &v.Water)
		m = v
	case table == TableWaterConsumption && action == ActionUpdate:
		var v WaterUpdate
		err = json.Unmarshal(data, &v)
		m = v
	case table == TableSleep && action == ActionInsert:
		var v SleepInsert
		err = json.Unmarshal(data, &v.Sleep)
		m = v
	case table == TableSleep && action == ActionUpdate:
		var v SleepUpdate
		err = json.Unmarshal(data, &v)
		m = v
	case table == TableProfiles && action == ActionUpdate:
		var v ProfileUpdate
		err = json.Unmarshal(data, &v.Profile)
		m = v
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownMutation, table, action)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", table, action, err)
	}
	return m, nil
}

// Record is an outbox row as persisted, before decoding.
type Record struct {
	ID        int64
	Table     Table
	Action    Action
	Data      []byte
	XPGained  int64
	CreatedAt time.Time
}

// Entry decodes the record payload.
func (r Record) Entry() (Entry, error) {
	m, err := Decode(r.Table, r.Action, r.Data)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %d: %w", r.ID, err)
	}
	return Entry{ID: r.ID, Mutation: m, XPGained: r.XPGained, CreatedAt: r.CreatedAt}, nil
}
