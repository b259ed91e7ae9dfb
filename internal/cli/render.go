package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/fitlog/internal/models"
	fitsync "github.com/julianstephens/fitlog/internal/sync"
	"github.com/julianstephens/fitlog/internal/xp"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(12)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	xpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Success formats a confirmation line.
func Success(format string, args ...any) string {
	return successStyle.Render("✓ " + fmt.Sprintf(format, args...))
}

func Warning(format string, args ...any) string {
	return warningStyle.Render("⚠ " + fmt.Sprintf(format, args...))
}

// XP formats an award, e.g. "+50 XP".
func XP(n int64) string {
	return xpStyle.Render(fmt.Sprintf("+%d XP", n))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// FormatMinutes renders minutes as "7h 30m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// ProgressBar draws pct (0-100) over width cells.
func ProgressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// RenderProgress is the daily dashboard.
func RenderProgress(p models.TodayProgress, profile *models.Profile) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Today · "+p.Date) + "\n")
	b.WriteString(row("Calories", fmt.Sprintf("%d in · %d out · %d net", p.CaloriesConsumed, p.CaloriesBurned, p.NetCalories())) + "\n")
	b.WriteString(row("Macros", fmt.Sprintf("%dg protein · %dg carbs · %dg fat", p.ProteinGrams, p.CarbsGrams, p.FatGrams)) + "\n")
	b.WriteString(row("Water", fmt.Sprintf("%d glasses", p.WaterGlasses)) + "\n")
	b.WriteString(row("Sleep", FormatMinutes(p.SleepMinutes)) + "\n")
	b.WriteString(row("Workouts", fmt.Sprintf("%d", len(p.Workouts))) + "\n")

	if len(p.Meals) > 0 {
		b.WriteString(row("Meals", "") + "\n")
		for _, m := range p.Meals {
			fmt.Fprintf(&b, "  • %s (%d kcal)\n", m.Name, m.Calories)
		}
	}
	b.WriteString(row("XP today", XP(p.XPGained)))
	if profile != nil {
		b.WriteString("\n" + renderLevel(profile.ExperiencePoints))
	}
	return boxStyle.Render(b.String())
}

func renderLevel(total int64) string {
	return row("Level", fmt.Sprintf("%d %s %d XP (%d to next)",
		xp.Level(total), ProgressBar(xp.Progress(total), 20), total, xp.NeededForNext(total)))
}

// RenderProfile shows the local profile and its sync state.
func RenderProfile(p models.Profile) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.DisplayName()) + "\n")
	b.WriteString(row("ID", p.ID) + "\n")
	if p.DateOfBirth != "" {
		b.WriteString(row("Born", p.DateOfBirth) + "\n")
	}
	if p.Gender != "" {
		b.WriteString(row("Gender", p.Gender) + "\n")
	}
	if p.HeightInches > 0 {
		b.WriteString(row("Height", fmt.Sprintf("%d'%d\"", p.HeightInches/12, p.HeightInches%12)) + "\n")
	}
	if p.WeightLbs > 0 {
		b.WriteString(row("Weight", fmt.Sprintf("%d lbs", p.WeightLbs)) + "\n")
	}
	b.WriteString(renderLevel(p.ExperiencePoints) + "\n")

	synced := "never"
	if p.LastSynced != nil {
		synced = p.LastSynced.Local().Format("2006-01-02 15:04")
	}
	if p.NeedsSync {
		synced += " " + warningStyle.Render("(local changes pending)")
	}
	b.WriteString(row("Synced", synced))
	return boxStyle.Render(b.String())
}

// RenderReport summarizes a drain pass on one line.
func RenderReport(r fitsync.Report) string {
	switch r.Skipped {
	case fitsync.SkipOffline:
		return warningStyle.Render("offline, changes stay queued")
	case fitsync.SkipEmpty:
		return "nothing to sync"
	case fitsync.SkipInFlight:
		return "another sync is already running"
	}
	if r.Err != nil && r.Applied == 0 {
		return warningStyle.Render(fmt.Sprintf("sync failed: %v", r.Err))
	}

	line := fmt.Sprintf("synced %d of %d changes", r.Applied, r.Pending)
	if r.PushedXP > 0 {
		line += fmt.Sprintf(", XP %d → %d", r.BaselineXP, r.PushedXP)
	}
	line += fmt.Sprintf(" in %s", r.Duration.Round(time.Millisecond))
	if err := r.Error(); err != nil {
		return warningStyle.Render(line + ": " + err.Error())
	}
	return successStyle.Render(line)
}
