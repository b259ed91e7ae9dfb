package models

import "time"

// Profile is the per-user snapshot mirrored from the remote profiles table.
// ExperiencePoints is the cumulative, authoritative XP total.
type Profile struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	DateOfBirth      string     `json:"date_of_birth,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	HeightInches     int        `json:"height_inches,omitempty"`
	WeightLbs        int        `json:"weight_lbs,omitempty"`
	ExperiencePoints int64      `json:"experience_points"`
	LastSynced       *time.Time `json:"last_synced,omitempty"`
	NeedsSync        bool       `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	DateOfBirth  *string
	Gender       *string
	HeightInches *int
	WeightLbs    *int
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.DateOfBirth == nil &&
		u.Gender == nil && u.HeightInches == nil && u.WeightLbs == nil
}

// Apply merges the update onto p and returns the result.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.DateOfBirth != nil {
		p.DateOfBirth = *u.DateOfBirth
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.HeightInches != nil {
		p.HeightInches = *u.HeightInches
	}
	if u.WeightLbs != nil {
		p.WeightLbs = *u.WeightLbs
	}
	return p
}

// DisplayName returns "First Last", falling back to the id.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	default:
		return p.ID
	}
}
