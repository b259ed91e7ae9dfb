package models

import "time"

// Meal is an append-only record of food eaten on Date.
type Meal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	Protein   int       `json:"protein"`
	Carbs     int       `json:"carbs"`
	Fat       int       `json:"fat"`
	Date      string    `json:"date"`
	LoggedAt  time.Time `json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`
	NeedsSync bool      `json:"-"`
}

// NewMeal is the caller-supplied part of a meal. ID is optional; one is
// generated when empty.
type NewMeal struct {
	ID       string
	Name     string
	Calories int
	Protein  int
	Carbs    int
	Fat      int
}

// Workout is an append-only record of calories burned on Date.
type Workout struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CaloriesBurned int       `json:"calories_burned"`
	Date           string    `json:"date"`
	CompletedAt    time.Time `json:"completed_at"`
	CreatedAt      time.Time `json:"created_at"`
	NeedsSync      bool      `json:"-"`
}

// WaterConsumption is the single per-(user, date) glasses counter.
type WaterConsumption struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Glasses   int       `json:"glasses"`
	NeedsSync bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sleep is the single per-(user, date) sleep minutes accumulator.
type Sleep struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	SleepMinutes int       `json:"sleep_minutes"`
	NeedsSync    bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
