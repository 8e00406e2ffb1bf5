package store

import (
	"context"
	"sort"

	"protanni/internal/clock"
	"protanni/internal/model"
)

// WeeklyReview summarises the given local week for a user.
func (d *DB) WeeklyReview(ctx context.Context, userID, tz string, week clock.Week) (model.WeeklyReview, error) {
	r := model.WeeklyReview{MoodCounts: map[string]int{}, AreasTouched: []model.Area{}}
	if len(week.Days) == 0 {
		return r, nil
	}
	r.WeekStart = week.Days[0]
	r.WeekEnd = week.Days[len(week.Days)-1]

	byDate := map[string]*model.ReviewDay{}
	for _, day := range week.Days {
		r.Days = append(r.Days, model.ReviewDay{Date: day})
	}
	for i := range r.Days {
		byDate[r.Days[i].Date] = &r.Days[i]
	}

	rows, err := d.query(ctx, d.sql, `SELECT log_date, COUNT(*) FROM habit_logs WHERE user_id = ? AND log_date >= ? AND log_date <= ? GROUP BY log_date`,
		userID, r.WeekStart, r.WeekEnd)
	if err != nil {
		return r, err
	}
	for rows.Next() {
		var (
			day string
			n   int
		)
		if err := rows.Scan(&day, &n); err != nil {
			rows.Close()
			return r, err
		}
		if rd := byDate[day]; rd != nil {
			rd.HabitCompletions += n
			r.HabitCompletions += n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return r, err
	}

	loc := clock.Location(tz)
	areas := map[model.Area]bool{}
	rows, err = d.query(ctx, d.sql, `SELECT completed_at_unixms, COALESCE(area, '') FROM tasks WHERE user_id = ? AND is_deleted = 0 AND completed_at_unixms >= ? AND completed_at_unixms < ?`,
		userID, toMs(week.Start), toMs(week.End))
	if err != nil {
		return r, err
	}
	for rows.Next() {
		var (
			ms   int64
			area string
		)
		if err := rows.Scan(&ms, &area); err != nil {
			rows.Close()
			return r, err
		}
		day := fromMs(ms).In(loc).Format(clock.DateLayout)
		if rd := byDate[day]; rd != nil {
			rd.TasksCompleted++
		}
		r.TasksCompleted++
		if area != "" {
			areas[model.Area(area)] = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return r, err
	}
	for _, a := range model.Areas {
		if areas[a] {
			r.AreasTouched = append(r.AreasTouched, a)
		}
	}

	rows, err = d.query(ctx, d.sql, `SELECT checkin_date, mood FROM mood_checkins WHERE user_id = ? AND checkin_date >= ? AND checkin_date <= ?`,
		userID, r.WeekStart, r.WeekEnd)
	if err != nil {
		return r, err
	}
	for rows.Next() {
		var day, mood string
		if err := rows.Scan(&day, &mood); err != nil {
			rows.Close()
			return r, err
		}
		if rd := byDate[day]; rd != nil {
			rd.Mood = model.MoodLevel(mood)
		}
		r.MoodCounts[mood]++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return r, err
	}
	r.DominantMood = dominantMood(r.MoodCounts)

	if err := d.queryRow(ctx, d.sql, `SELECT COUNT(*) FROM captures WHERE user_id = ? AND processed_at_unixms >= ? AND processed_at_unixms < ?`,
		userID, toMs(week.Start), toMs(week.End)).Scan(&r.CapturesProcessed); err != nil {
		return r, err
	}

	for _, day := range r.Days {
		if day.ShowedUp() {
			r.DaysShowedUp++
		}
	}
	return r, nil
}

// dominantMood picks the most frequent level; ties go to the brighter mood.
func dominantMood(counts map[string]int) model.MoodLevel {
	type kv struct {
		level model.MoodLevel
		n     int
	}
	var all []kv
	for _, l := range model.MoodLevels {
		if n := counts[string(l)]; n > 0 {
			all = append(all, kv{l, n})
		}
	}
	if len(all) == 0 {
		return ""
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].n > all[j].n })
	return all[0].level
}
