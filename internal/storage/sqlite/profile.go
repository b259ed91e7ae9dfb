package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/outbox"
	"github.com/julianstephens/fitlog/internal/storage"
)

func (s *Store) GetProfile(id string) (models.Profile, error) {
	row := s.db.QueryRow(`
		SELECT id, first_name, last_name, date_of_birth, gender, height_inches, weight_lbs,
		       experience_points, last_synced, needs_sync, created_at, updated_at
		FROM user_profile WHERE id = ?`, id)

	var (
		p                    models.Profile
		dob, gender, synced  sql.NullString
		height, weight       sql.NullInt64
		needsSync            int
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &dob, &gender, &height, &weight,
		&p.ExperiencePoints, &synced, &needsSync, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}

	p.DateOfBirth = dob.String
	p.Gender = gender.String
	p.HeightInches = int(height.Int64)
	p.WeightLbs = int(weight.Int64)
	p.NeedsSync = needsSync == 1
	if synced.Valid {
		t, err := parseTime(synced.String)
		if err != nil {
			return models.Profile{}, err
		}
		p.LastSynced = &t
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Profile{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) UpsertProfile(p models.Profile, syncedAt time.Time) error {
	p.NeedsSync = false
	p.LastSynced = &syncedAt
	return s.writeProfile(p)
}

func (s *Store) SaveProfile(p models.Profile) error {
	p.NeedsSync = true
	return s.writeProfile(p)
}

func (s *Store) writeProfile(p models.Profile) error {
	var synced sql.NullString
	if p.LastSynced != nil {
		synced = sql.NullString{String: formatTime(*p.LastSynced), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO user_profile
		(id, first_name, last_name, date_of_birth, gender, height_inches, weight_lbs,
		 experience_points, last_synced, needs_sync, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FirstName, p.LastName, nullString(p.DateOfBirth), nullString(p.Gender),
		nullInt(p.HeightInches), nullInt(p.WeightLbs), p.ExperiencePoints, synced,
		boolInt(p.NeedsSync), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) SetProfileXP(id string, xp int64, at time.Time) error {
	res, err := s.db.Exec(`
		UPDATE user_profile SET experience_points = ?, needs_sync = 1, updated_at = ?
		WHERE id = ?`, xp, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to set experience points: %w", err)
	}
	return requireRow(res)
}

func (s *Store) MarkSynced(table outbox.Table, id string, at time.Time) error {
	var (
		res sql.Result
		err error
	)
	switch table {
	case outbox.TableProfiles:
		res, err = s.db.Exec(`UPDATE user_profile SET needs_sync = 0, last_synced = ? WHERE id = ?`, formatTime(at), id)
	case outbox.TableMeals:
		res, err = s.db.Exec(`UPDATE meals SET needs_sync = 0 WHERE id = ?`, id)
	case outbox.TableWorkouts:
		res, err = s.db.Exec(`UPDATE workouts SET needs_sync = 0 WHERE id = ?`, id)
	case outbox.TableWaterConsumption:
		res, err = s.db.Exec(`UPDATE water_consumption SET needs_sync = 0 WHERE id = ?`, id)
	case outbox.TableSleep:
		res, err = s.db.Exec(`UPDATE sleep SET needs_sync = 0 WHERE id = ?`, id)
	default:
		return fmt.Errorf("%w: table %s", outbox.ErrUnknownMutation, table)
	}
	if err != nil {
		return fmt.Errorf("failed to mark %s %s synced: %w", table, id, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
