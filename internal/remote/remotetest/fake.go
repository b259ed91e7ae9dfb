// Package remotetest provides an in-memory remote.Client for tests.
package remotetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/remote"
)

// Call records one client invocation.
type Call struct {
	Op string
	ID string
}

// Fake mimics the Postgres backend: inserts ignore existing ids and
// updates of missing rows fail with remote.ErrNoRows.
type Fake struct {
	mu       sync.Mutex
	Profiles map[string]models.Profile
	Meals    map[string]models.Meal
	Workouts map[string]models.Workout
	Water    map[string]models.WaterConsumption
	Sleep    map[string]models.Sleep
	Calls    []Call

	failOn map[string]error
	// OnCall runs before every operation, outside the lock.
	OnCall func(op, id string)
}

func NewFake() *Fake {
	return &Fake{
		Profiles: map[string]models.Profile{},
		Meals:    map[string]models.Meal{},
		Workouts: map[string]models.Workout{},
		Water:    map[string]models.WaterConsumption{},
		Sleep:    map[string]models.Sleep{},
		failOn:   map[string]error{},
	}
}

var _ remote.Client = (*Fake)(nil)

// FailOn makes op fail with err until cleared with a nil err. An op may be
// scoped to a record as "op:id".
func (f *Fake) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failOn, op)
		return
	}
	f.failOn[op] = err
}

// Ops returns the recorded operation names in call order.
func (f *Fake) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		ops[i] = c.Op
	}
	return ops
}

func (f *Fake) begin(ctx context.Context, op, id string) error {
	if f.OnCall != nil {
		f.OnCall(op, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Op: op, ID: id})
	err := f.failOn[op]
	if scoped, ok := f.failOn[op+":"+id]; ok {
		err = scoped
	}
	f.mu.Unlock()
	return err
}

func (f *Fake) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if err := f.begin(ctx, "GetProfile", id); err != nil {
		return nil, remote.Wrap("profiles", "select", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *Fake) GetProfileXP(ctx context.Context, id string) (int64, error) {
	if err := f.begin(ctx, "GetProfileXP", id); err != nil {
		return 0, remote.Wrap("profiles", "select", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Profiles[id]
	if !ok {
		return 0, remote.Wrap("profiles", "select", remote.ErrNoRows)
	}
	return p.ExperiencePoints, nil
}

func (f *Fake) UpdateProfile(ctx context.Context, p models.Profile) error {
	if err := f.begin(ctx, "UpdateProfile", p.ID); err != nil {
		return remote.Wrap("profiles", "update", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.Profiles[p.ID]
	if !ok {
		return remote.Wrap("profiles", "update", remote.ErrNoRows)
	}
	p.ExperiencePoints = cur.ExperiencePoints
	p.CreatedAt = cur.CreatedAt
	p.LastSynced = nil
	p.NeedsSync = false
	f.Profiles[p.ID] = p
	return nil
}

func (f *Fake) UpdateProfileXP(ctx context.Context, id string, xp int64) error {
	if err := f.begin(ctx, "UpdateProfileXP", id); err != nil {
		return remote.Wrap("profiles", "update", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Profiles[id]
	if !ok {
		return remote.Wrap("profiles", "update", remote.ErrNoRows)
	}
	p.ExperiencePoints = xp
	f.Profiles[id] = p
	return nil
}

func (f *Fake) InsertMeal(ctx context.Context, m models.Meal) error {
	if err := f.begin(ctx, "InsertMeal", m.ID); err != nil {
		return remote.Wrap("meals", "insert", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Meals[m.ID]; !ok {
		m.NeedsSync = false
		f.Meals[m.ID] = m
	}
	return nil
}

func (f *Fake) InsertWorkout(ctx context.Context, w models.Workout) error {
	if err := f.begin(ctx, "InsertWorkout", w.ID); err != nil {
		return remote.Wrap("workouts", "insert", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Workouts[w.ID]; !ok {
		w.NeedsSync = false
		f.Workouts[w.ID] = w
	}
	return nil
}

func (f *Fake) InsertWater(ctx context.Context, w models.WaterConsumption) error {
	if err := f.begin(ctx, "InsertWater", w.ID); err != nil {
		return remote.Wrap("water_consumption", "insert", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Water[w.ID]; !ok {
		w.NeedsSync = false
		f.Water[w.ID] = w
	}
	return nil
}

func (f *Fake) UpdateWaterGlasses(ctx context.Context, id string, glasses int) error {
	if err := f.begin(ctx, "UpdateWaterGlasses", id); err != nil {
		return remote.Wrap("water_consumption", "update", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.Water[id]
	if !ok {
		return remote.Wrap("water_consumption", "update", remote.ErrNoRows)
	}
	w.Glasses = glasses
	f.Water[id] = w
	return nil
}

func (f *Fake) InsertSleep(ctx context.Context, s models.Sleep) error {
	if err := f.begin(ctx, "InsertSleep", s.ID); err != nil {
		return remote.Wrap("sleep", "insert", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Sleep[s.ID]; !ok {
		s.NeedsSync = false
		f.Sleep[s.ID] = s
	}
	return nil
}

func (f *Fake) UpdateSleepMinutes(ctx context.Context, id string, minutes int) error {
	if err := f.begin(ctx, "UpdateSleepMinutes", id); err != nil {
		return remote.Wrap("sleep", "update", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Sleep[id]
	if !ok {
		return remote.Wrap("sleep", "update", remote.ErrNoRows)
	}
	s.SleepMinutes = minutes
	f.Sleep[id] = s
	return nil
}

func (f *Fake) MealsByDate(ctx context.Context, userID, date string) ([]models.Meal, error) {
	if err := f.begin(ctx, "MealsByDate", userID); err != nil {
		return nil, remote.Wrap("meals", "select", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var meals []models.Meal
	for _, m := range f.Meals {
		if m.UserID == userID && m.Date == date {
			meals = append(meals, m)
		}
	}
	return meals, nil
}

func (f *Fake) WorkoutsByDate(ctx context.Context, userID, date string) ([]models.Workout, error) {
	if err := f.begin(ctx, "WorkoutsByDate", userID); err != nil {
		return nil, remote.Wrap("workouts", "select", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var workouts []models.Workout
	for _, w := range f.Workouts {
		if w.UserID == userID && w.Date == date {
			workouts = append(workouts, w)
		}
	}
	return workouts, nil
}

func (f *Fake) WaterByDate(ctx context.Context, userID, date string) (*models.WaterConsumption, error) {
	if err := f.begin(ctx, "WaterByDate", userID); err != nil {
		return nil, remote.Wrap("water_consumption", "select", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.Water {
		if w.UserID == userID && w.Date == date {
			return &w, nil
		}
	}
	return nil, nil
}

func (f *Fake) SleepByDate(ctx context.Context, userID, date string) (*models.Sleep, error) {
	if err := f.begin(ctx, "SleepByDate", userID); err != nil {
		return nil, remote.Wrap("sleep", "select", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.Sleep {
		if s.UserID == userID && s.Date == date {
			return &s, nil
		}
	}
	return nil, nil
}

// String summarizes the stored rows, for test failure messages.
func (f *Fake) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("profiles=%d meals=%d workouts=%d water=%d sleep=%d calls=%d",
		len(f.Profiles), len(f.Meals), len(f.Workouts), len(f.Water), len(f.Sleep), len(f.Calls))
}
