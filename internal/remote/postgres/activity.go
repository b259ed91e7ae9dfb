package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/outbox"
)

// Inserts ignore an existing id so a replayed outbox entry is harmless.

func (s *Store) InsertMeal(ctx context.Context, m models.Meal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meals (id, user_id, name, calories, protein, carbs, fat, date, logged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		m.ID, m.UserID, m.Name, m.Calories, m.Protein, m.Carbs, m.Fat, m.Date, m.LoggedAt, m.CreatedAt)
	return wrap(string(outbox.TableMeals), "insert", err)
}

func (s *Store) InsertWorkout(ctx context.Context, w models.Workout) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workouts (id, user_id, calories_burned, date, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		w.ID, w.UserID, w.CaloriesBurned, w.Date, w.CompletedAt, w.CreatedAt)
	return wrap(string(outbox.TableWorkouts), "insert", err)
}

func (s *Store) InsertWater(ctx context.Context, w models.WaterConsumption) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO water_consumption (id, user_id, date, glasses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		w.ID, w.UserID, w.Date, w.Glasses, w.CreatedAt, w.UpdatedAt)
	return wrap(string(outbox.TableWaterConsumption), "insert", err)
}

func (s *Store) UpdateWaterGlasses(ctx context.Context, id string, glasses int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE water_consumption SET glasses = $2, updated_at = now() WHERE id = $1`, id, glasses)
	if err != nil {
		return wrap(string(outbox.TableWaterConsumption), "update", err)
	}
	return wrap(string(outbox.TableWaterConsumption), "update", requireRow(res))
}

func (s *Store) InsertSleep(ctx context.Context, sl models.Sleep) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sleep (id, user_id, date, sleep_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		sl.ID, sl.UserID, sl.Date, sl.SleepMinutes, sl.CreatedAt, sl.UpdatedAt)
	return wrap(string(outbox.TableSleep), "insert", err)
}

func (s *Store) UpdateSleepMinutes(ctx context.Context, id string, minutes int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sleep SET sleep_minutes = $2, updated_at = now() WHERE id = $1`, id, minutes)
	if err != nil {
		return wrap(string(outbox.TableSleep), "update", err)
	}
	return wrap(string(outbox.TableSleep), "update", requireRow(res))
}

func (s *Store) MealsByDate(ctx context.Context, userID, date string) ([]models.Meal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, calories, protein, carbs, fat, to_char(date, 'YYYY-MM-DD'), logged_at, created_at
		FROM meals WHERE user_id = $1 AND date = $2
		ORDER BY logged_at, id`, userID, date)
	if err != nil {
		return nil, wrap(string(outbox.TableMeals), "select", err)
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		var m models.Meal
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Calories, &m.Protein, &m.Carbs, &m.Fat,
			&m.Date, &m.LoggedAt, &m.CreatedAt); err != nil {
			return nil, wrap(string(outbox.TableMeals), "select", err)
		}
		meals = append(meals, m)
	}
	return meals, wrap(string(outbox.TableMeals), "select", rows.Err())
}

func (s *Store) WorkoutsByDate(ctx context.Context, userID, date string) ([]models.Workout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, calories_burned, to_char(date, 'YYYY-MM-DD'), completed_at, created_at
		FROM workouts WHERE user_id = $1 AND date = $2
		ORDER BY completed_at, id`, userID, date)
	if err != nil {
		return nil, wrap(string(outbox.TableWorkouts), "select", err)
	}
	defer rows.Close()

	var workouts []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.CaloriesBurned, &w.Date, &w.CompletedAt, &w.CreatedAt); err != nil {
			return nil, wrap(string(outbox.TableWorkouts), "select", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, wrap(string(outbox.TableWorkouts), "select", rows.Err())
}

func (s *Store) WaterByDate(ctx context.Context, userID, date string) (*models.WaterConsumption, error) {
	var w models.WaterConsumption
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), glasses, created_at, updated_at
		FROM water_consumption WHERE user_id = $1 AND date = $2`, userID, date).
		Scan(&w.ID, &w.UserID, &w.Date, &w.Glasses, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(string(outbox.TableWaterConsumption), "select", err)
	}
	return &w, nil
}

func (s *Store) SleepByDate(ctx context.Context, userID, date string) (*models.Sleep, error) {
	var sl models.Sleep
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), sleep_minutes, created_at, updated_at
		FROM sleep WHERE user_id = $1 AND date = $2`, userID, date).
		Scan(&sl.ID, &sl.UserID, &sl.Date, &sl.SleepMinutes, &sl.CreatedAt, &sl.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(string(outbox.TableSleep), "select", err)
	}
	return &sl, nil
}
