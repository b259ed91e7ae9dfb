// Package validation flags implausible or suspicious local data: values
// no real day produces, likely double entries, and outbox rows that can
// no longer be delivered.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/outbox"
)

// IssueType names the kind of problem found.
type IssueType string

const (
	IssueImplausibleCalories  IssueType = "implausible_calories"
	IssueMacrosExceedCalories IssueType = "macros_exceed_calories"
	IssueDuplicateMeal        IssueType = "duplicate_meal"
	IssueExcessiveWater       IssueType = "excessive_water"
	IssueSleepExceedsDay      IssueType = "sleep_exceeds_day"
	IssueUndecodableEntry     IssueType = "undecodable_entry"
	IssueStaleEntry           IssueType = "stale_entry"
)

// Issue is one detected problem.
type Issue struct {
	Type        IssueType
	Description string
	Date        string   // YYYY-MM-DD, empty for queue issues
	IDs         []string // record or queue ids involved
}

type Result struct {
	Issues []Issue
}

func (r *Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// Merge appends other's issues to r.
func (r *Result) Merge(other Result) {
	r.Issues = append(r.Issues, other.Issues...)
}

// FormatReport returns a human-readable report of all issues.
func (r *Result) FormatReport() string {
	if !r.HasIssues() {
		return "No issues detected."
	}
	var b strings.Builder
	b.WriteString("Issues detected:\n")
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "- %s\n", issue.Description)
	}
	return b.String()
}

// Limits bound what counts as plausible.
type Limits struct {
	MaxMealCalories    int
	MaxWorkoutCalories int
	MaxWaterGlasses    int
	// DuplicateWindow is how close two identical meals must be logged to
	// look like a double entry.
	DuplicateWindow time.Duration
	// StaleAfter flags queue entries that have waited this long.
	StaleAfter time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxMealCalories:    5000,
		MaxWorkoutCalories: 4000,
		MaxWaterGlasses:    40,
		DuplicateWindow:    2 * time.Minute,
		StaleAfter:         7 * 24 * time.Hour,
	}
}

type Validator struct {
	limits Limits
}

func New() *Validator {
	return NewWithLimits(DefaultLimits())
}

func NewWithLimits(limits Limits) *Validator {
	return &Validator{limits: limits}
}

// ValidateDay checks one day's aggregated activity.
func (v *Validator) ValidateDay(d models.TodayData) Result {
	var result Result

	for _, m := range d.Meals {
		if m.Calories > v.limits.MaxMealCalories {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueImplausibleCalories,
				Description: fmt.Sprintf("Meal '%s' on %s has %d kcal (limit %d)", m.Name, d.Date, m.Calories, v.limits.MaxMealCalories),
				Date:        d.Date,
				IDs:         []string{m.ID},
			})
		}
		// 4 kcal per gram of protein or carbs, 9 per gram of fat. Allow
		// a quarter for rounding and fibre.
		fromMacros := 4*m.Protein + 4*m.Carbs + 9*m.Fat
		if fromMacros > m.Calories+m.Calories/4+50 {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueMacrosExceedCalories,
				Description: fmt.Sprintf("Meal '%s' on %s lists macros worth %d kcal but only %d kcal", m.Name, d.Date, fromMacros, m.Calories),
				Date:        d.Date,
				IDs:         []string{m.ID},
			})
		}
	}
	result.Merge(v.duplicateMeals(d))

	for _, w := range d.Workouts {
		if w.CaloriesBurned > v.limits.MaxWorkoutCalories {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueImplausibleCalories,
				Description: fmt.Sprintf("Workout on %s burned %d kcal (limit %d)", d.Date, w.CaloriesBurned, v.limits.MaxWorkoutCalories),
				Date:        d.Date,
				IDs:         []string{w.ID},
			})
		}
	}

	if d.WaterGlasses > v.limits.MaxWaterGlasses {
		result.Issues = append(result.Issues, Issue{
			Type:        IssueExcessiveWater,
			Description: fmt.Sprintf("%d glasses of water on %s (limit %d)", d.WaterGlasses, d.Date, v.limits.MaxWaterGlasses),
			Date:        d.Date,
		})
	}
	if d.SleepMinutes > 24*60 {
		result.Issues = append(result.Issues, Issue{
			Type:        IssueSleepExceedsDay,
			Description: fmt.Sprintf("%d minutes of sleep on %s is more than a day", d.SleepMinutes, d.Date),
			Date:        d.Date,
		})
	}
	return result
}

func (v *Validator) duplicateMeals(d models.TodayData) Result {
	var result Result
	for i := 0; i < len(d.Meals); i++ {
		for j := i + 1; j < len(d.Meals); j++ {
			a, b := d.Meals[i], d.Meals[j]
			if !strings.EqualFold(a.Name, b.Name) || a.Calories != b.Calories {
				continue
			}
			gap := b.LoggedAt.Sub(a.LoggedAt)
			if gap < 0 {
				gap = -gap
			}
			if gap > v.limits.DuplicateWindow {
				continue
			}
			result.Issues = append(result.Issues, Issue{
				Type:        IssueDuplicateMeal,
				Description: fmt.Sprintf("Meal '%s' was logged twice within %s on %s", a.Name, v.limits.DuplicateWindow, d.Date),
				Date:        d.Date,
				IDs:         []string{a.ID, b.ID},
			})
		}
	}
	return result
}

// ValidateQueue checks outbox rows as of now.
func (v *Validator) ValidateQueue(records []outbox.Record, now time.Time) Result {
	var result Result
	for _, r := range records {
		id := strconv.FormatInt(r.ID, 10)
		if _, err := r.Entry(); err != nil {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueUndecodableEntry,
				Description: fmt.Sprintf("Queue entry #%d (%s %s) cannot be decoded and will never sync: %v", r.ID, r.Action, r.Table, err),
				IDs:         []string{id},
			})
			continue
		}
		if v.limits.StaleAfter > 0 && now.Sub(r.CreatedAt) > v.limits.StaleAfter {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueStaleEntry,
				Description: fmt.Sprintf("Queue entry #%d (%s %s) has waited since %s", r.ID, r.Action, r.Table, r.CreatedAt.Local().Format("2006-01-02 15:04")),
				IDs:         []string{id},
			})
		}
	}
	return result
}
