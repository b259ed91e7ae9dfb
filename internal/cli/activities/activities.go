// Package activities holds the commands that log meals, workouts, water
// and sleep, and the daily dashboard.
package activities

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/models"
)

type MealCmd struct {
	Name     string `arg:"" help:"What you ate."`
	Calories int    `short:"c" required:"" help:"Calories in the meal."`
	Protein  int    `short:"p" help:"Protein in grams."`
	Carbs    int    `help:"Carbohydrates in grams."`
	Fat      int    `help:"Fat in grams."`
	ID       string `help:"Record id to use instead of a generated one."`
}

func (c *MealCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	if c.Calories < 0 || c.Protein < 0 || c.Carbs < 0 || c.Fat < 0 {
		return fmt.Errorf("calories and macros cannot be negative")
	}
	meal, err := ctx.Tracker.LogMeal(ctx.Ctx(), userID, models.NewMeal{
		ID:       c.ID,
		Name:     c.Name,
		Calories: c.Calories,
		Protein:  c.Protein,
		Carbs:    c.Carbs,
		Fat:      c.Fat,
	})
	if err != nil {
		return fmt.Errorf("failed to log meal: %w", err)
	}
	fmt.Fprintf(ctx.Out, "%s %s\n", cli.Success("Logged %s (%d kcal)", meal.Name, meal.Calories), cli.XP(ctx.Tracker.Rates().Meal()))
	return nil
}

type WorkoutCmd struct {
	Calories int `arg:"" help:"Calories burned."`
}

func (c *WorkoutCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	w, err := ctx.Tracker.LogWorkout(ctx.Ctx(), userID, c.Calories)
	if err != nil {
		return fmt.Errorf("failed to log workout: %w", err)
	}
	fmt.Fprintf(ctx.Out, "%s %s\n", cli.Success("Logged workout (%d kcal burned)", w.CaloriesBurned), cli.XP(ctx.Tracker.Rates().Workout(w.CaloriesBurned)))
	return nil
}

type WaterCmd struct {
	Glasses int `arg:"" optional:"" default:"1" help:"Glasses to add."`
}

func (c *WaterCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	if c.Glasses < 1 {
		return fmt.Errorf("glasses must be at least 1")
	}
	var w models.WaterConsumption
	for range c.Glasses {
		if w, err = ctx.Tracker.AddWater(ctx.Ctx(), userID); err != nil {
			return fmt.Errorf("failed to add water: %w", err)
		}
	}
	fmt.Fprintf(ctx.Out, "%s %s\n", cli.Success("%d glasses today", w.Glasses), cli.XP(int64(c.Glasses)*ctx.Tracker.Rates().Water()))
	return nil
}

type SleepCmd struct {
	Minutes int `arg:"" help:"Minutes slept."`
}

func (c *SleepCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	s, err := ctx.Tracker.AddSleep(ctx.Ctx(), userID, c.Minutes)
	if err != nil {
		return fmt.Errorf("failed to add sleep: %w", err)
	}
	fmt.Fprintf(ctx.Out, "%s %s\n", cli.Success("%s of sleep today", cli.FormatMinutes(s.SleepMinutes)), cli.XP(ctx.Tracker.Rates().Sleep(c.Minutes)))
	return nil
}

type TodayCmd struct {
	JSON bool `help:"Print machine-readable JSON."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	progress, err := ctx.Tracker.GetTodayProgress(ctx.Ctx(), userID, ctx.Offline)
	if err != nil {
		return fmt.Errorf("failed to load today's progress: %w", err)
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(progress)
	}

	var profile *models.Profile
	if p, err := ctx.Engine.GetLocalProfile(userID); err == nil {
		profile = &p
	}
	fmt.Fprintln(ctx.Out, cli.RenderProgress(progress, profile))
	return nil
}
