// Package profiles holds the profile commands.
package profiles

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/constants"
	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/storage"
)

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	p, err := ctx.Engine.GetLocalProfile(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no local profile for %s: %w", userID, err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.RenderProfile(p))
	return nil
}

// PullCmd replaces the local profile with the remote one.
type PullCmd struct{}

func (c *PullCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	p, err := ctx.Engine.FetchAndUpdateLocal(ctx.Ctx(), userID)
	if err != nil {
		return fmt.Errorf("failed to pull profile: %w", err)
	}
	if p == nil {
		return fmt.Errorf("no remote profile for user %s", userID)
	}
	fmt.Fprintln(ctx.Out, cli.Success("Pulled profile for %s (%d XP)", p.DisplayName(), p.ExperiencePoints))
	return nil
}

type EditCmd struct {
	FirstName   string `help:"First name."`
	LastName    string `help:"Last name."`
	DateOfBirth string `name:"dob" help:"Date of birth (YYYY-MM-DD)."`
	Gender      string `help:"Gender."`
	Height      int    `help:"Height in inches."`
	Weight      int    `help:"Weight in pounds."`
	Interactive bool   `short:"i" help:"Edit every field in a form."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	current, err := ctx.Engine.GetLocalProfile(userID)
	if err != nil {
		return err
	}

	var upd models.ProfileUpdate
	if c.Interactive {
		upd, err = runForm(current)
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(ctx.Out, "Edit cancelled.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	} else if upd, err = c.update(); err != nil {
		return err
	}
	if upd.IsEmpty() {
		return errors.New("nothing to change, pass a field flag or -i")
	}

	p, err := ctx.Engine.UpdateProfile(ctx.Ctx(), userID, upd)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.Success("Updated profile for %s", p.DisplayName()))
	if pending, _ := ctx.Engine.HasPendingSyncs(); pending {
		fmt.Fprintln(ctx.Out, cli.Warning("saved locally, will sync when online"))
	}
	return nil
}

// update builds a ProfileUpdate from the flags that were set.
func (c *EditCmd) update() (models.ProfileUpdate, error) {
	var upd models.ProfileUpdate
	if c.FirstName != "" {
		upd.FirstName = &c.FirstName
	}
	if c.LastName != "" {
		upd.LastName = &c.LastName
	}
	if c.DateOfBirth != "" {
		if err := validateDate(c.DateOfBirth); err != nil {
			return upd, err
		}
		upd.DateOfBirth = &c.DateOfBirth
	}
	if c.Gender != "" {
		upd.Gender = &c.Gender
	}
	if c.Height < 0 || c.Weight < 0 {
		return upd, errors.New("height and weight cannot be negative")
	}
	if c.Height > 0 {
		upd.HeightInches = &c.Height
	}
	if c.Weight > 0 {
		upd.WeightLbs = &c.Weight
	}
	return upd, nil
}

func validateDate(s string) error {
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}

func validateCount(s string) error {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errors.New("must be a non-negative whole number")
	}
	return nil
}

type profileForm struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Gender      string
	Height      string
	Weight      string
}

func runForm(p models.Profile) (models.ProfileUpdate, error) {
	f := profileForm{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
	}
	if p.HeightInches > 0 {
		f.Height = strconv.Itoa(p.HeightInches)
	}
	if p.WeightLbs > 0 {
		f.Weight = strconv.Itoa(p.WeightLbs)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&f.FirstName),
			huh.NewInput().Title("Last name").Value(&f.LastName),
			huh.NewInput().
				Title("Date of birth").
				Placeholder("YYYY-MM-DD").
				Value(&f.DateOfBirth).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					return validateDate(s)
				}),
			huh.NewInput().Title("Gender").Value(&f.Gender),
			huh.NewInput().Title("Height (inches)").Value(&f.Height).Validate(validateCount),
			huh.NewInput().Title("Weight (lbs)").Value(&f.Weight).Validate(validateCount),
		),
	)
	if err := form.Run(); err != nil {
		return models.ProfileUpdate{}, err
	}
	return f.diff(p), nil
}

// diff returns the fields of f that differ from p.
func (f profileForm) diff(p models.Profile) models.ProfileUpdate {
	var upd models.ProfileUpdate
	if f.FirstName != p.FirstName {
		upd.FirstName = &f.FirstName
	}
	if f.LastName != p.LastName {
		upd.LastName = &f.LastName
	}
	if f.DateOfBirth != p.DateOfBirth {
		upd.DateOfBirth = &f.DateOfBirth
	}
	if f.Gender != p.Gender {
		upd.Gender = &f.Gender
	}
	if h, _ := strconv.Atoi(f.Height); h != p.HeightInches {
		upd.HeightInches = &h
	}
	if w, _ := strconv.Atoi(f.Weight); w != p.WeightLbs {
		upd.WeightLbs = &w
	}
	return upd
}
