// Package tracking records meals, workouts, water and sleep locally and
// hands each change to the sync engine for delivery.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/fitlog/internal/constants"
	"github.com/julianstephens/fitlog/internal/logger"
	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/outbox"
	"github.com/julianstephens/fitlog/internal/storage"
	"github.com/julianstephens/fitlog/internal/xp"
)

// Syncer is the part of the sync engine the tracking service uses.
type Syncer interface {
	AddToSyncQueue(m outbox.Mutation, xpGained int64)
	GetLocalProfile(userID string) (models.Profile, error)
	UpdateLocalProfileXP(userID string, xp int64) error
	FetchAndUpdateLocal(ctx context.Context, userID string) (*models.Profile, error)
	PullDay(ctx context.Context, userID, date string) error
	HasPendingSyncs() (bool, error)
	Online(ctx context.Context) bool
}

// Scheduler runs a drain pass later without blocking the caller.
type Scheduler interface {
	Submit(userID string)
}

type Options struct {
	Rates xp.Rates
	Now   func() time.Time
	NewID func() string
}

type Service struct {
	store     storage.LocalStore
	syncer    Syncer
	scheduler Scheduler
	rates     xp.Rates
	now       func() time.Time
	newID     func() string
}

func NewService(store storage.LocalStore, syncer Syncer, scheduler Scheduler, opts Options) *Service {
	s := &Service{
		store:     store,
		syncer:    syncer,
		scheduler: scheduler,
		rates:     opts.Rates,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Rates returns the XP awards the service uses.
func (s *Service) Rates() xp.Rates {
	return s.rates
}

// today is the device-local calendar day.
func (s *Service) today() string {
	return s.now().Local().Format(constants.DateFormat)
}

// committed runs after a local write succeeded: queue the change, raise
// the local XP total and schedule delivery.
func (s *Service) committed(userID string, m outbox.Mutation, award int64) {
	s.syncer.AddToSyncQueue(m, award)
	s.bumpXP(userID, award)
	if s.scheduler != nil {
		s.scheduler.Submit(userID)
	}
}

func (s *Service) bumpXP(userID string, award int64) {
	if award <= 0 {
		return
	}
	p, err := s.syncer.GetLocalProfile(userID)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Debug("No local profile, skipping instant XP", "user", userID)
		return
	}
	if err == nil {
		err = s.syncer.UpdateLocalProfileXP(userID, p.ExperiencePoints+award)
	}
	if err != nil {
		logger.Warn("Failed to update local XP", "user", userID, "error", err)
	}
}

func (s *Service) LogMeal(ctx context.Context, userID string, in models.NewMeal) (models.Meal, error) {
	now := s.now()
	m := models.Meal{
		ID:        in.ID,
		UserID:    userID,
		Name:      in.Name,
		Calories:  in.Calories,
		Protein:   in.Protein,
		Carbs:     in.Carbs,
		Fat:       in.Fat,
		Date:      s.today(),
		LoggedAt:  now,
		CreatedAt: now,
		NeedsSync: true,
	}
	if m.ID == "" {
		m.ID = s.newID()
	}
	if err := s.store.InsertMeal(m); err != nil {
		return models.Meal{}, err
	}
	s.committed(userID, outbox.MealInsert{Meal: m}, s.rates.Meal())
	return m, nil
}

func (s *Service) LogWorkout(ctx context.Context, userID string, caloriesBurned int) (models.Workout, error) {
	if caloriesBurned < 0 {
		return models.Workout{}, fmt.Errorf("calories burned must not be negative: %d", caloriesBurned)
	}
	now := s.now()
	w := models.Workout{
		ID:             s.newID(),
		UserID:         userID,
		CaloriesBurned: caloriesBurned,
		Date:           s.today(),
		CompletedAt:    now,
		CreatedAt:      now,
		NeedsSync:      true,
	}
	if err := s.store.InsertWorkout(w); err != nil {
		return models.Workout{}, err
	}
	s.committed(userID, outbox.WorkoutInsert{Workout: w}, s.rates.Workout(caloriesBurned))
	return w, nil
}

// AddWater adds one glass to today's counter, creating it on first use.
func (s *Service) AddWater(ctx context.Context, userID string) (models.WaterConsumption, error) {
	w, created, err := s.store.AddWaterGlass(userID, s.today(), s.newID(), s.now())
	if err != nil {
		return models.WaterConsumption{}, err
	}
	var m outbox.Mutation = outbox.WaterUpdate{ID: w.ID, Glasses: w.Glasses}
	if created {
		m = outbox.WaterInsert{Water: w}
	}
	s.committed(userID, m, s.rates.Water())
	return w, nil
}

// AddSleep adds minutes to today's sleep total, creating it on first use.
func (s *Service) AddSleep(ctx context.Context, userID string, minutes int) (models.Sleep, error) {
	if minutes <= 0 {
		return models.Sleep{}, fmt.Errorf("sleep minutes must be positive: %d", minutes)
	}
	sl, created, err := s.store.AddSleepMinutes(userID, s.today(), minutes, s.newID(), s.now())
	if err != nil {
		return models.Sleep{}, err
	}
	var m outbox.Mutation = outbox.SleepUpdate{ID: sl.ID, SleepMinutes: sl.SleepMinutes}
	if created {
		m = outbox.SleepInsert{Sleep: sl}
	}
	s.committed(userID, m, s.rates.Sleep(minutes))
	return sl, nil
}

func (s *Service) TodayMeals(userID string) ([]models.Meal, error) {
	return s.store.MealsByDate(userID, s.today())
}

func (s *Service) TodayWorkouts(userID string) ([]models.Workout, error) {
	return s.store.WorkoutsByDate(userID, s.today())
}

func (s *Service) TodayWater(userID string) (*models.WaterConsumption, error) {
	return s.store.WaterByDate(userID, s.today())
}

func (s *Service) TodaySleep(userID string) (*models.Sleep, error) {
	return s.store.SleepByDate(userID, s.today())
}

// PullToday refreshes the profile and today's rows from the remote.
// Nothing is pulled while local changes are still queued. Failures are
// logged; local data stays usable.
func (s *Service) PullToday(ctx context.Context, userID string) {
	if !s.syncer.Online(ctx) {
		return
	}
	pending, err := s.syncer.HasPendingSyncs()
	if err != nil {
		logger.Warn("Failed to check pending changes", "user", userID, "error", err)
		return
	}
	if pending {
		logger.Debug("Skipping refresh with undelivered changes", "user", userID)
		return
	}
	if _, err := s.syncer.FetchAndUpdateLocal(ctx, userID); err != nil {
		logger.Warn("Failed to refresh profile", "user", userID, "error", err)
	}
	if err := s.syncer.PullDay(ctx, userID, s.today()); err != nil {
		logger.Warn("Failed to pull today's activity", "user", userID, "error", err)
	}
}

// GetTodayProgress pulls fresh remote state unless offline is set, then
// aggregates today's local rows.
func (s *Service) GetTodayProgress(ctx context.Context, userID string, offline bool) (models.TodayProgress, error) {
	if !offline {
		s.PullToday(ctx, userID)
	}

	meals, err := s.TodayMeals(userID)
	if err != nil {
		return models.TodayProgress{}, fmt.Errorf("failed to load meals: %w", err)
	}
	workouts, err := s.TodayWorkouts(userID)
	if err != nil {
		return models.TodayProgress{}, fmt.Errorf("failed to load workouts: %w", err)
	}
	water, err := s.TodayWater(userID)
	if err != nil {
		return models.TodayProgress{}, fmt.Errorf("failed to load water: %w", err)
	}
	sleep, err := s.TodaySleep(userID)
	if err != nil {
		return models.TodayProgress{}, fmt.Errorf("failed to load sleep: %w", err)
	}

	data := models.Aggregate(s.today(), meals, workouts, water, sleep)
	return models.TodayProgress{TodayData: data, XPGained: s.rates.Daily(data)}, nil
}
