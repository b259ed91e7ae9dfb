package profiles

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/fitlog/internal/cli/clitest"
	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/storage"
)

func TestShowCmd(t *testing.T) {
	env := clitest.Setup(t)
	if err := (&ShowCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("show command failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "Ada") || !strings.Contains(env.Out.String(), "1000 XP") {
		t.Errorf("unexpected output: %s", env.Out.String())
	}

	env.Ctx.User = "nobody"
	if err := (&ShowCmd{}).Run(env.Ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("show for unknown user: error = %v, want ErrNotFound", err)
	}
}

func TestEditCmdOnline(t *testing.T) {
	env := clitest.Setup(t)

	cmd := &EditCmd{LastName: "Lovelace", Height: 66, DateOfBirth: "1815-12-10"}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("edit command failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "Updated profile for Ada Lovelace") {
		t.Errorf("unexpected output: %s", env.Out.String())
	}
	if strings.Contains(env.Out.String(), "will sync") {
		t.Errorf("online edit reported pending sync: %s", env.Out.String())
	}

	remote := env.Remote.Profiles[clitest.UserID]
	if remote.LastName != "Lovelace" || remote.HeightInches != 66 || remote.ExperiencePoints != 1000 {
		t.Errorf("remote profile = %+v", remote)
	}
	local, _ := env.Ctx.Store.GetProfile(clitest.UserID)
	if local.FirstName != "Ada" || local.DateOfBirth != "1815-12-10" {
		t.Errorf("local profile = %+v", local)
	}
}

func TestEditCmdOffline(t *testing.T) {
	env := clitest.Setup(t)
	env.Probe.Set(false)

	if err := (&EditCmd{FirstName: "Augusta"}).Run(env.Ctx); err != nil {
		t.Fatalf("edit command failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "will sync when online") {
		t.Errorf("unexpected output: %s", env.Out.String())
	}
	if env.Remote.Profiles[clitest.UserID].FirstName != "Ada" {
		t.Error("offline edit reached the remote")
	}
}

func TestEditCmdValidation(t *testing.T) {
	env := clitest.Setup(t)
	tests := map[string]*EditCmd{
		"nothing":         {},
		"bad date":        {DateOfBirth: "10/12/1815"},
		"negative height": {Height: -1},
	}
	for name, cmd := range tests {
		if err := cmd.Run(env.Ctx); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPullCmd(t *testing.T) {
	env := clitest.Setup(t)
	p := env.Remote.Profiles[clitest.UserID]
	p.ExperiencePoints = 4200
	env.Remote.Profiles[clitest.UserID] = p

	if err := (&PullCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("pull command failed: %v", err)
	}
	local, _ := env.Ctx.Store.GetProfile(clitest.UserID)
	if local.ExperiencePoints != 4200 {
		t.Errorf("local XP = %d, want 4200", local.ExperiencePoints)
	}

	env.Ctx.User = "nobody"
	if err := (&PullCmd{}).Run(env.Ctx); err == nil {
		t.Error("expected error when the remote has no profile")
	}
}

func TestProfileFormDiff(t *testing.T) {
	p := models.Profile{ID: "u1", FirstName: "Ada", HeightInches: 66}
	f := profileForm{FirstName: "Ada", LastName: "Lovelace", Height: "66", Weight: "130"}

	upd := f.diff(p)
	if upd.FirstName != nil || upd.HeightInches != nil {
		t.Errorf("unchanged fields included: %+v", upd)
	}
	if upd.LastName == nil || *upd.LastName != "Lovelace" {
		t.Errorf("LastName = %v", upd.LastName)
	}
	if upd.WeightLbs == nil || *upd.WeightLbs != 130 {
		t.Errorf("WeightLbs = %v", upd.WeightLbs)
	}
	if f := (profileForm{FirstName: "Ada", Height: "66"}); !f.diff(p).IsEmpty() {
		t.Error("identical form produced an update")
	}
}

func TestValidateCount(t *testing.T) {
	for _, ok := range []string{"", "0", "72"} {
		if err := validateCount(ok); err != nil {
			t.Errorf("validateCount(%q) error = %v", ok, err)
		}
	}
	for _, bad := range []string{"-1", "six", "5.5"} {
		if err := validateCount(bad); err == nil {
			t.Errorf("validateCount(%q) expected error", bad)
		}
	}
}
