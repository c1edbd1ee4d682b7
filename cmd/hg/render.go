package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"hg-go/internal/hg"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorAccent  = lipgloss.Color("#2CD7C7")
	colorMuted   = lipgloss.Color("#6C7A80")
	colorWarning = lipgloss.Color("#F4D03F")
	colorOver    = lipgloss.Color("#E74C3C")
)

const barWidth = 20

// renderer writes styled output. Styles are empty when the output is not a
// terminal, so piped output stays plain text.
type renderer struct {
	w       io.Writer
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
	over    lipgloss.Style
	box     lipgloss.Style
}

func newRenderer(f *os.File) *renderer {
	plain := !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	return newStyledRenderer(f, plain)
}

func newStyledRenderer(w io.Writer, plain bool) *renderer {
	if plain {
		s := lipgloss.NewStyle()
		return &renderer{w: w, title: s, label: s, muted: s, warning: s, over: s, box: s}
	}
	return &renderer{
		w:       w,
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		label:   lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		warning: lipgloss.NewStyle().Foreground(colorWarning),
		over:    lipgloss.NewStyle().Foreground(colorOver),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1),
	}
}

// bar draws progress as a fixed-width gauge. pct is clamped to [0, 100].
func (r *renderer) bar(pct float64) string {
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

// Dashboard prints the day's summary for user.
func (r *renderer) Dashboard(user hg.User, d hg.Dashboard) {
	var b strings.Builder

	fmt.Fprintln(&b, r.title.Render(fmt.Sprintf("Hello, %s", d.Profile.Name)))
	fmt.Fprintln(&b, r.muted.Render(user.Email))
	fmt.Fprintln(&b)

	calories := fmt.Sprintf("%s %s %.0f / %.0f kcal (%.0f%%)",
		r.label.Render("Calories"), r.bar(d.CalorieProgress), d.CaloriesIn, d.CalorieTarget, d.CalorieProgress)
	if d.CaloriesIn > d.CalorieTarget {
		calories = r.over.Render(calories)
	}
	fmt.Fprintln(&b, calories)
	fmt.Fprintf(&b, "%s %.0f kcal   %s %.0f kcal\n",
		r.label.Render("Burned"), d.CaloriesOut, r.label.Render("Net"), d.NetCalories)
	fmt.Fprintf(&b, "%s P %.0fg  C %.0fg  F %.0fg\n",
		r.label.Render("Macros"), d.Macros.Protein, d.Macros.Carbs, d.Macros.Fats)
	fmt.Fprintf(&b, "%s    %s %d / %d ml (%.0f%%)\n",
		r.label.Render("Water"), r.bar(d.WaterProgress), d.WaterToday, d.WaterGoal, d.WaterProgress)

	if d.BMI > 0 {
		bmi := fmt.Sprintf("%s %.1f (%s)", r.label.Render("BMI"), d.BMI, d.BMICategory)
		if d.BMICategory != "Normal weight" {
			bmi = r.warning.Render(bmi)
		}
		fmt.Fprintln(&b, bmi)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, r.label.Render("Water history"))
	for _, day := range d.WaterHistory {
		fmt.Fprintf(&b, "  %-6s %5d ml\n", day.Label, day.Amount)
	}

	if len(d.Foods) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, r.label.Render("Food"))
		for _, f := range d.Foods {
			fmt.Fprintf(&b, "  %-24s %6.0f kcal  %s\n", f.Name, f.Calories, r.muted.Render(f.Portion))
		}
	}
	if len(d.Exercises) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, r.label.Render("Exercise"))
		for _, e := range d.Exercises {
			fmt.Fprintf(&b, "  %-24s %4.0f min  %6.0f kcal\n", e.Type, e.Duration, e.CaloriesBurned)
		}
	}

	fmt.Fprintln(r.w, r.box.Render(strings.TrimRight(b.String(), "\n")))
}

// Plan prints a generated diet plan.
func (r *renderer) Plan(p *hg.DietPlan) {
	fmt.Fprintln(r.w, r.title.Render(fmt.Sprintf("Daily target: %.0f kcal", p.DailyCalories)))
	for _, m := range p.Meals {
		fmt.Fprintf(r.w, "\n%s %s (~%.0f kcal)\n", r.label.Render(m.Time), m.Label, m.ApproxCalories)
		for _, s := range m.Suggestions {
			fmt.Fprintf(r.w, "  - %s\n", s)
		}
	}
	if len(p.Advice) > 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, r.label.Render("Advice"))
		for _, a := range p.Advice {
			fmt.Fprintf(r.w, "  - %s\n", a)
		}
	}
}

// Users prints the registry with the collections each user has stored.
func (r *renderer) Users(list []hg.UserOverview) {
	if len(list) == 0 {
		fmt.Fprintln(r.w, "No users registered.")
		return
	}
	for _, o := range list {
		data := r.muted.Render("no data")
		if len(o.Stored) > 0 {
			names := make([]string, len(o.Stored))
			for i, c := range o.Stored {
				names[i] = string(c)
			}
			data = strings.Join(names, ",")
		}
		fmt.Fprintf(r.w, "%-36s  %-30s  %-16s  %s\n", o.User.ID, o.User.Email, o.User.Name, data)
	}
}
