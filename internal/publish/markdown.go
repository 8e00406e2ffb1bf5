package publish

import (
	"bytes"
	"fmt"
	"strings"

	"protanni/internal/model"
)

// RenderReviewMarkdown renders a weekly review as a standalone markdown page.
func RenderReviewMarkdown(r model.WeeklyReview) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Week of " + r.WeekStart)
	writeLn("")
	writeLn(fmt.Sprintf("You showed up on **%d of %d** days.", r.DaysShowedUp, len(r.Days)))
	writeLn("")

	writeLn("| Day | Habits | Tasks | Mood |")
	writeLn("|---|---|---|---|")
	for _, d := range r.Days {
		mood := "-"
		if d.Mood != "" {
			mood = model.Label(d.Mood)
		}
		writeLn(fmt.Sprintf("| %s | %d | %d | %s |", d.Date, d.HabitCompletions, d.TasksCompleted, mood))
	}
	writeLn("")

	writeLn("## Totals")
	writeLn("")
	writeLn(fmt.Sprintf("- Habit check-ins: %d", r.HabitCompletions))
	writeLn(fmt.Sprintf("- Tasks completed: %d", r.TasksCompleted))
	writeLn(fmt.Sprintf("- Captures processed: %d", r.CapturesProcessed))
	if len(r.AreasTouched) > 0 {
		names := make([]string, 0, len(r.AreasTouched))
		for _, a := range r.AreasTouched {
			names = append(names, model.Label(a))
		}
		writeLn("- Areas touched: " + strings.Join(names, ", "))
	}
	if r.DominantMood != "" {
		writeLn("- Mostly felt: " + model.Label(r.DominantMood))
	}
	return buf.String()
}
