package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/fitlog/internal/models"
	fitsync "github.com/julianstephens/fitlog/internal/sync"
)

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{
		0:   "0m",
		45:  "45m",
		60:  "1h 00m",
		450: "7h 30m",
	}
	for in, want := range tests {
		if got := FormatMinutes(in); got != want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(50, 10); got != "[█████░░░░░]" {
		t.Errorf("ProgressBar(50) = %q", got)
	}
	if got := ProgressBar(150, 4); got != "[████]" {
		t.Errorf("ProgressBar(150) = %q", got)
	}
	if got := ProgressBar(-5, 4); got != "[░░░░]" {
		t.Errorf("ProgressBar(-5) = %q", got)
	}
}

func TestRenderProgress(t *testing.T) {
	data := models.Aggregate("2026-10-16",
		[]models.Meal{{Name: "Oats", Calories: 350, Protein: 12}},
		[]models.Workout{{CaloriesBurned: 200}},
		&models.WaterConsumption{Glasses: 3},
		&models.Sleep{SleepMinutes: 450},
	)
	out := RenderProgress(models.TodayProgress{TodayData: data, XPGained: 1060},
		&models.Profile{ID: "u1", ExperiencePoints: 2500})

	for _, want := range []string{"2026-10-16", "350 in", "200 out", "150 net", "3 glasses", "7h 30m", "Oats", "+1060 XP", "2500 XP"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderProgress() missing %q:\n%s", want, out)
		}
	}
}

func TestRenderProfile(t *testing.T) {
	synced := time.Date(2026, 10, 16, 7, 0, 0, 0, time.Local)
	out := RenderProfile(models.Profile{
		ID: "u1", FirstName: "Ada", LastName: "Lovelace",
		HeightInches: 66, WeightLbs: 130, ExperiencePoints: 1000,
		LastSynced: &synced, NeedsSync: true,
	})
	for _, want := range []string{"Ada Lovelace", "5'6\"", "130 lbs", "2026-10-16 07:00", "local changes pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderProfile() missing %q:\n%s", want, out)
		}
	}
	if out := RenderProfile(models.Profile{ID: "u2"}); !strings.Contains(out, "never") {
		t.Errorf("RenderProfile() without sync missing %q:\n%s", "never", out)
	}
}

func TestRenderReport(t *testing.T) {
	tests := []struct {
		name   string
		report fitsync.Report
		want   string
	}{
		{name: "offline", report: fitsync.Report{Skipped: fitsync.SkipOffline}, want: "offline"},
		{name: "empty", report: fitsync.Report{Skipped: fitsync.SkipEmpty}, want: "nothing to sync"},
		{name: "in flight", report: fitsync.Report{Skipped: fitsync.SkipInFlight}, want: "already running"},
		{name: "aborted", report: fitsync.Report{Pending: 2, Err: errors.New("boom")}, want: "sync failed: boom"},
		{
			name:   "clean",
			report: fitsync.Report{Pending: 2, Applied: 2, BaselineXP: 1000, EarnedXP: 60, PushedXP: 1060},
			want:   "synced 2 of 2 changes, XP 1000 → 1060",
		},
		{
			name:   "partial",
			report: fitsync.Report{Pending: 3, Applied: 2, Failed: 1},
			want:   "1 of 3 outbox entries failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderReport(tt.report); !strings.Contains(got, tt.want) {
				t.Errorf("RenderReport() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
