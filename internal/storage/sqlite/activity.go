package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/fitlog/internal/models"
)

type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) InsertMeal(m models.Meal) error {
	_, err := s.db.Exec(`
		INSERT INTO meals (id, user_id, name, calories, protein, carbs, fat, date, logged_at, needs_sync, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Name, m.Calories, m.Protein, m.Carbs, m.Fat, m.Date,
		formatTime(m.LoggedAt), boolInt(m.NeedsSync), formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

func (s *Store) UpsertSyncedMeal(m models.Meal) error {
	_, err := s.db.Exec(`
		INSERT INTO meals (id, user_id, name, calories, protein, carbs, fat, date, logged_at, needs_sync, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, calories = excluded.calories, protein = excluded.protein,
			carbs = excluded.carbs, fat = excluded.fat, date = excluded.date,
			logged_at = excluded.logged_at, needs_sync = 0
		WHERE meals.needs_sync = 0`,
		m.ID, m.UserID, m.Name, m.Calories, m.Protein, m.Carbs, m.Fat, m.Date,
		formatTime(m.LoggedAt), formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert meal %s: %w", m.ID, err)
	}
	return nil
}

func (s *Store) MealsByDate(userID, date string) ([]models.Meal, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, calories, protein, carbs, fat, date, logged_at, needs_sync, created_at
		FROM meals WHERE user_id = ? AND date = ?
		ORDER BY logged_at, id`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		var (
			m                   models.Meal
			loggedAt, createdAt string
			needsSync           int
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Calories, &m.Protein, &m.Carbs, &m.Fat,
			&m.Date, &loggedAt, &needsSync, &createdAt); err != nil {
			return nil, err
		}
		m.NeedsSync = needsSync == 1
		if m.LoggedAt, err = parseTime(loggedAt); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (s *Store) InsertWorkout(w models.Workout) error {
	_, err := s.db.Exec(`
		INSERT INTO workouts (id, user_id, calories_burned, date, completed_at, needs_sync, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.CaloriesBurned, w.Date, formatTime(w.CompletedAt),
		boolInt(w.NeedsSync), formatTime(w.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert workout: %w", err)
	}
	return nil
}

func (s *Store) UpsertSyncedWorkout(w models.Workout) error {
	_, err := s.db.Exec(`
		INSERT INTO workouts (id, user_id, calories_burned, date, completed_at, needs_sync, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(id) DO UPDATE SET
			calories_burned = excluded.calories_burned, date = excluded.date,
			completed_at = excluded.completed_at, needs_sync = 0
		WHERE workouts.needs_sync = 0`,
		w.ID, w.UserID, w.CaloriesBurned, w.Date, formatTime(w.CompletedAt), formatTime(w.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert workout %s: %w", w.ID, err)
	}
	return nil
}

func (s *Store) WorkoutsByDate(userID, date string) ([]models.Workout, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, calories_burned, date, completed_at, needs_sync, created_at
		FROM workouts WHERE user_id = ? AND date = ?
		ORDER BY completed_at, id`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []models.Workout
	for rows.Next() {
		var (
			w                      models.Workout
			completedAt, createdAt string
			needsSync              int
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.CaloriesBurned, &w.Date, &completedAt, &needsSync, &createdAt); err != nil {
			return nil, err
		}
		w.NeedsSync = needsSync == 1
		if w.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		if w.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

func scanWater(row *sql.Row) (*models.WaterConsumption, error) {
	var (
		w                    models.WaterConsumption
		needsSync            int
		createdAt, updatedAt string
	)
	err := row.Scan(&w.ID, &w.UserID, &w.Date, &w.Glasses, &needsSync, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.NeedsSync = needsSync == 1
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func waterByDate(q rowQuerier, userID, date string) (*models.WaterConsumption, error) {
	return scanWater(q.QueryRow(`
		SELECT id, user_id, date, glasses, needs_sync, created_at, updated_at
		FROM water_consumption WHERE user_id = ? AND date = ?`, userID, date))
}

func (s *Store) WaterByDate(userID, date string) (*models.WaterConsumption, error) {
	return waterByDate(s.db, userID, date)
}

func (s *Store) AddWaterGlass(userID, date, newID string, at time.Time) (models.WaterConsumption, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.WaterConsumption{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := waterByDate(tx, userID, date)
	if err != nil {
		return models.WaterConsumption{}, false, fmt.Errorf("failed to read water: %w", err)
	}

	created := existing == nil
	var w models.WaterConsumption
	if created {
		w = models.WaterConsumption{
			ID: newID, UserID: userID, Date: date, Glasses: 1,
			NeedsSync: true, CreatedAt: at, UpdatedAt: at,
		}
		_, err = tx.Exec(`
			INSERT INTO water_consumption (id, user_id, date, glasses, needs_sync, created_at, updated_at)
			VALUES (?, ?, ?, ?, 1, ?, ?)`,
			w.ID, w.UserID, w.Date, w.Glasses, formatTime(at), formatTime(at))
	} else {
		w = *existing
		w.Glasses++
		w.NeedsSync = true
		w.UpdatedAt = at
		_, err = tx.Exec(`UPDATE water_consumption SET glasses = ?, needs_sync = 1, updated_at = ? WHERE id = ?`,
			w.Glasses, formatTime(at), w.ID)
	}
	if err != nil {
		return models.WaterConsumption{}, false, fmt.Errorf("failed to write water: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.WaterConsumption{}, false, err
	}
	return w, created, nil
}

func (s *Store) UpsertSyncedWater(w models.WaterConsumption) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := waterByDate(tx, w.UserID, w.Date)
	if err != nil {
		return err
	}
	switch {
	case existing == nil:
		_, err = tx.Exec(`
			INSERT INTO water_consumption (id, user_id, date, glasses, needs_sync, created_at, updated_at)
			VALUES (?, ?, ?, ?, 0, ?, ?)`,
			w.ID, w.UserID, w.Date, w.Glasses, formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
	case existing.NeedsSync:
		return nil
	default:
		_, err = tx.Exec(`UPDATE water_consumption SET id = ?, glasses = ?, updated_at = ? WHERE id = ?`,
			w.ID, w.Glasses, formatTime(w.UpdatedAt), existing.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert water %s: %w", w.ID, err)
	}
	return tx.Commit()
}

func scanSleep(row *sql.Row) (*models.Sleep, error) {
	var (
		sl                   models.Sleep
		needsSync            int
		createdAt, updatedAt string
	)
	err := row.Scan(&sl.ID, &sl.UserID, &sl.Date, &sl.SleepMinutes, &needsSync, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sl.NeedsSync = needsSync == 1
	if sl.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sl.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &sl, nil
}

func sleepByDate(q rowQuerier, userID, date string) (*models.Sleep, error) {
	return scanSleep(q.QueryRow(`
		SELECT id, user_id, date, sleep_minutes, needs_sync, created_at, updated_at
		FROM sleep WHERE user_id = ? AND date = ?`, userID, date))
}

func (s *Store) SleepByDate(userID, date string) (*models.Sleep, error) {
	return sleepByDate(s.db, userID, date)
}

func (s *Store) AddSleepMinutes(userID, date string, minutes int, newID string, at time.Time) (models.Sleep, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Sleep{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := sleepByDate(tx, userID, date)
	if err != nil {
		return models.Sleep{}, false, fmt.Errorf("failed to read sleep: %w", err)
	}

	created := existing == nil
	var sl models.Sleep
	if created {
		sl = models.Sleep{
			ID: newID, UserID: userID, Date: date, SleepMinutes: minutes,
			NeedsSync: true, CreatedAt: at, UpdatedAt: at,
		}
		_, err = tx.Exec(`
			INSERT INTO sleep (id, user_id, date, sleep_minutes, needs_sync, created_at, updated_at)
			VALUES (?, ?, ?, ?, 1, ?, ?)`,
			sl.ID, sl.UserID, sl.Date, sl.SleepMinutes, formatTime(at), formatTime(at))
	} else {
		sl = *existing
		sl.SleepMinutes += minutes
		sl.NeedsSync = true
		sl.UpdatedAt = at
		_, err = tx.Exec(`UPDATE sleep SET sleep_minutes = ?, needs_sync = 1, updated_at = ? WHERE id = ?`,
			sl.SleepMinutes, formatTime(at), sl.ID)
	}
	if err != nil {
		return models.Sleep{}, false, fmt.Errorf("failed to write sleep: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Sleep{}, false, err
	}
	return sl, created, nil
}

func (s *Store) UpsertSyncedSleep(sl models.Sleep) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := sleepByDate(tx, sl.UserID, sl.Date)
	if err != nil {
		return err
	}
	switch {
	case existing == nil:
		_, err = tx.Exec(`
			INSERT INTO sleep (id, user_id, date, sleep_minutes, needs_sync, created_at, updated_at)
			VALUES (?, ?, ?, ?, 0, ?, ?)`,
			sl.ID, sl.UserID, sl.Date, sl.SleepMinutes, formatTime(sl.CreatedAt), formatTime(sl.UpdatedAt))
	case existing.NeedsSync:
		return nil
	default:
		_, err = tx.Exec(`UPDATE sleep SET id = ?, sleep_minutes = ?, updated_at = ? WHERE id = ?`,
			sl.ID, sl.SleepMinutes, formatTime(sl.UpdatedAt), existing.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert sleep %s: %w", sl.ID, err)
	}
	return tx.Commit()
}
