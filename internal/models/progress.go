package models

// TodayData aggregates one user's activity rows for one day.
type TodayData struct {
	Date             string    `json:"date"`
	Meals            []Meal    `json:"meals"`
	Workouts         []Workout `json:"workouts"`
	CaloriesConsumed int       `json:"calories_consumed"`
	CaloriesBurned   int       `json:"calories_burned"`
	WaterGlasses     int       `json:"water_glasses"`
	SleepMinutes     int       `json:"sleep_minutes"`
	ProteinGrams     int       `json:"protein_grams"`
	CarbsGrams       int       `json:"carbs_grams"`
	FatGrams         int       `json:"fat_grams"`
}

// TodayProgress is TodayData plus the XP recomputed from it. It is derived
// on demand and never persisted.
type TodayProgress struct {
	TodayData
	XPGained int64 `json:"xp_gained"`
}

// NetCalories is consumed minus burned.
func (d TodayData) NetCalories() int {
	return d.CaloriesConsumed - d.CaloriesBurned
}

// Aggregate builds TodayData from raw rows. water and sleep may be nil.
func Aggregate(date string, meals []Meal, workouts []Workout, water *WaterConsumption, sleep *Sleep) TodayData {
	d := TodayData{
		Date:     date,
		Meals:    meals,
		Workouts: workouts,
	}
	for _, m := range meals {
		d.CaloriesConsumed += m.Calories
		d.ProteinGrams += m.Protein
		d.CarbsGrams += m.Carbs
		d.FatGrams += m.Fat
	}
	for _, w := range workouts {
		d.CaloriesBurned += w.CaloriesBurned
	}
	if water != nil {
		d.WaterGlasses = water.Glasses
	}
	if sleep != nil {
		d.SleepMinutes = sleep.SleepMinutes
	}
	return d
}
