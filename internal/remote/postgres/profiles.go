package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/remote"
)

const profilesTable = "profiles"

func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, to_char(date_of_birth, 'YYYY-MM-DD'), gender,
		       height_inches, weight_lbs, experience_points, created_at, updated_at
		FROM profiles WHERE id = $1`, id)

	var (
		p              models.Profile
		dob, gender    sql.NullString
		height, weight sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &dob, &gender, &height, &weight,
		&p.ExperiencePoints, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(profilesTable, "select", err)
	}
	p.DateOfBirth = dob.String
	p.Gender = gender.String
	p.HeightInches = int(height.Int64)
	p.WeightLbs = int(weight.Int64)
	return &p, nil
}

func (s *Store) GetProfileXP(ctx context.Context, id string) (int64, error) {
	var xp int64
	err := s.db.QueryRowContext(ctx, `SELECT experience_points FROM profiles WHERE id = $1`, id).Scan(&xp)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, remote.Wrap(profilesTable, "select", remote.ErrNoRows)
	}
	if err != nil {
		return 0, wrap(profilesTable, "select", err)
	}
	return xp, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p models.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET first_name = $2, last_name = $3, date_of_birth = $4, gender = $5,
		       height_inches = $6, weight_lbs = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, nullString(p.DateOfBirth), nullString(p.Gender),
		nullInt(p.HeightInches), nullInt(p.WeightLbs), p.UpdatedAt)
	if err != nil {
		return wrap(profilesTable, "update", err)
	}
	return wrap(profilesTable, "update", requireRow(res))
}

func (s *Store) UpdateProfileXP(ctx context.Context, id string, xp int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET experience_points = $2, updated_at = now() WHERE id = $1`, id, xp)
	if err != nil {
		return wrap(profilesTable, "update", err)
	}
	return wrap(profilesTable, "update", requireRow(res))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
