// Package activity lists the meals and workouts logged for one day.
package activity

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/fitlog/internal/models"
)

type Item struct {
	title       string
	description string
}

func (i Item) Title() string       { return i.title }
func (i Item) Description() string { return i.description }
func (i Item) FilterValue() string { return i.title }

func MealItem(m models.Meal) Item {
	desc := fmt.Sprintf("%d kcal | %dg protein · %dg carbs · %dg fat | %s",
		m.Calories, m.Protein, m.Carbs, m.Fat, m.LoggedAt.Local().Format("15:04"))
	if m.NeedsSync {
		desc += " | pending sync"
	}
	return Item{title: "🍽 " + m.Name, description: desc}
}

func WorkoutItem(w models.Workout) Item {
	desc := fmt.Sprintf("%d kcal burned | %s", w.CaloriesBurned, w.CompletedAt.Local().Format("15:04"))
	if w.NeedsSync {
		desc += " | pending sync"
	}
	return Item{title: "🏃 Workout", description: desc}
}

type Model struct {
	list list.Model
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Activity"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	return Model{list: l}
}

// SetDay replaces the items with d's meals followed by its workouts.
func (m *Model) SetDay(d models.TodayData) {
	items := make([]list.Item, 0, len(d.Meals)+len(d.Workouts))
	for _, meal := range d.Meals {
		items = append(items, MealItem(meal))
	}
	for _, w := range d.Workouts {
		items = append(items, WorkoutItem(w))
	}
	m.list.SetItems(items)
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing logged today.\n  Try 'fitlog meal' or 'fitlog workout'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
