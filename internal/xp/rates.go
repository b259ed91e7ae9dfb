// Package xp holds the experience-point award formulas and the level curve.
package xp

import (
	"github.com/julianstephens/fitlog/internal/constants"
	"github.com/julianstephens/fitlog/internal/models"
)

// Rates are the fixed per-activity XP awards. They are configuration, not
// derived values.
type Rates struct {
	MealLogged    int64 `yaml:"meal_logged"`
	CalorieBurned int64 `yaml:"calorie_burned"`
	GlassWater    int64 `yaml:"glass_water"`
	MinuteSleep   int64 `yaml:"minute_sleep"`
}

// DefaultRates returns the built-in awards.
func DefaultRates() Rates {
	return Rates{
		MealLogged:    constants.DefaultXPMealLogged,
		CalorieBurned: constants.DefaultXPCalorieBurned,
		GlassWater:    constants.DefaultXPGlassWater,
		MinuteSleep:   constants.DefaultXPMinuteSleep,
	}
}

// Meal is the award for one logged meal, independent of its size.
func (r Rates) Meal() int64 {
	return r.MealLogged
}

// Workout is the award for a workout burning caloriesBurned.
func (r Rates) Workout(caloriesBurned int) int64 {
	return int64(caloriesBurned) * r.CalorieBurned
}

// Water is the award for one glass.
func (r Rates) Water() int64 {
	return r.GlassWater
}

// Sleep is the award for minutes of sleep.
func (r Rates) Sleep(minutes int) int64 {
	return int64(minutes) * r.MinuteSleep
}

// Daily recomputes the XP earned in d. It is linear in every input, so it
// equals the sum of the individual awards in any order.
func (r Rates) Daily(d models.TodayData) int64 {
	return int64(len(d.Meals))*r.Meal() +
		r.Workout(d.CaloriesBurned) +
		r.Sleep(d.SleepMinutes) +
		int64(d.WaterGlasses)*r.Water()
}
