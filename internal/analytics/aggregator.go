package analytics

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ykurohata/workorder-api/internal/models"
	"gorm.io/gorm"
)

// Aggregator computes the dashboard metrics with plain read-only SQL.
// Date-dependent metrics fetch raw column text and do the parsing and
// window math in Go, so they behave identically on every driver and a
// malformed row drops out of the affected metric instead of failing it.
type Aggregator struct {
	db   *gorm.DB
	caps Capabilities
	now  func() time.Time
}

// NewAggregator builds an aggregator over the given store. caps should
// come from DetectCapabilities at connection time.
func NewAggregator(db *gorm.DB, caps Capabilities) *Aggregator {
	return &Aggregator{
		db:   db,
		caps: caps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the evaluation instant. Tests use it to pin "now".
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// StatusCounts is the breakdown across the three live statuses.
type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

// ThroughputPoint is one day of completions in the throughput series.
type ThroughputPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HeatmapEntry is a label/count pair for the area and machine heatmaps.
type HeatmapEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LeaderboardEntry is one worker's row in the completion leaderboard.
type LeaderboardEntry struct {
	WorkerName string  `json:"worker_name"`
	TasksDone  int     `json:"tasks_done"`
	AvgDays    float64 `json:"avg_days"`
}

// AreaCount is an area/count pair for the bottleneck ranking.
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// GetStatusCounts returns exact-match counts for the three live
// statuses. All three keys are always present, zero included.
func (a *Aggregator) GetStatusCounts() (StatusCounts, error) {
	var counts StatusCounts
	for _, sc := range []struct {
		status models.TaskStatus
		dest   *int
	}{
		{models.TaskStatusPending, &counts.Pending},
		{models.TaskStatusInProgress, &counts.InProgress},
		{models.TaskStatusDone, &counts.Done},
	} {
		var n int64
		err := a.db.Raw("SELECT COUNT(*) FROM tasks WHERE status = ?", string(sc.status)).Scan(&n).Error
		if err != nil {
			return StatusCounts{}, fmt.Errorf("querying status counts: %w", err)
		}
		*sc.dest = int(n)
	}
	return counts, nil
}

// GetOverdueCount counts tasks not yet Done whose deadline is strictly
// before the evaluation instant. Deadlines that fail to parse drop out.
func (a *Aggregator) GetOverdueCount() (int, error) {
	rows, err := a.db.Raw(
		"SELECT deadline FROM tasks WHERE status != ? AND deadline IS NOT NULL",
		string(models.TaskStatusDone),
	).Rows()
	if err != nil {
		return 0, fmt.Errorf("querying overdue tasks: %w", err)
	}
	defer rows.Close()

	now := a.now()
	count := 0
	for rows.Next() {
		var deadline sql.NullString
		if err := rows.Scan(&deadline); err != nil {
			return 0, fmt.Errorf("scanning overdue row: %w", err)
		}
		if !deadline.Valid {
			continue
		}
		if t, ok := ParseTimestamp(deadline.String); ok && t.Before(now) {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading overdue rows: %w", err)
	}
	return count, nil
}

// GetUpcomingCount counts tasks not yet Done due within the next
// windowDays days, inclusive on both ends. The window math stays in Go;
// windowDays never reaches the query text.
func (a *Aggregator) GetUpcomingCount(windowDays int) (int, error) {
	rows, err := a.db.Raw(
		"SELECT deadline FROM tasks WHERE status != ? AND deadline IS NOT NULL",
		string(models.TaskStatusDone),
	).Rows()
	if err != nil {
		return 0, fmt.Errorf("querying upcoming tasks: %w", err)
	}
	defer rows.Close()

	now := a.now()
	until := now.AddDate(0, 0, windowDays)
	count := 0
	for rows.Next() {
		var deadline sql.NullString
		if err := rows.Scan(&deadline); err != nil {
			return 0, fmt.Errorf("scanning upcoming row: %w", err)
		}
		if !deadline.Valid {
			continue
		}
		if t, ok := ParseTimestamp(deadline.String); ok && !t.Before(now) && !t.After(until) {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading upcoming rows: %w", err)
	}
	return count, nil
}

// GetTaskThroughput returns completions per calendar day starting
// windowDays days before the evaluation instant, ascending and sparse.
// There is deliberately no upper bound, so future-dated completions
// stay visible.
func (a *Aggregator) GetTaskThroughput(windowDays int) ([]ThroughputPoint, error) {
	cf := a.caps.CompletionField()
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE status = ? AND %s IS NOT NULL", cf, cf)
	rows, err := a.db.Raw(query, string(models.TaskStatusDone)).Rows()
	if err != nil {
		return nil, fmt.Errorf("querying throughput: %w", err)
	}
	defer rows.Close()

	// ISO dates compare correctly as strings.
	cutoff := a.now().AddDate(0, 0, -windowDays).Format("2006-01-02")
	perDay := make(map[string]int)
	for rows.Next() {
		var completed sql.NullString
		if err := rows.Scan(&completed); err != nil {
			return nil, fmt.Errorf("scanning throughput row: %w", err)
		}
		if !completed.Valid {
			continue
		}
		t, ok := ParseTimestamp(completed.String)
		if !ok {
			continue
		}
		if day := t.Format("2006-01-02"); day >= cutoff {
			perDay[day]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading throughput rows: %w", err)
	}

	points := make([]ThroughputPoint, 0, len(perDay))
	for day, n := range perDay {
		points = append(points, ThroughputPoint{Date: day, Count: n})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// GetHeatmapData counts all tasks by area and by machine, regardless of
// status. NULL and blank labels surface as "Unspecified". The NULL
// group and the empty-string group are not merged after relabeling;
// both may appear, matching what the dashboard has always shown.
func (a *Aggregator) GetHeatmapData() ([]HeatmapEntry, []HeatmapEntry, error) {
	byArea, err := a.groupCounts("area")
	if err != nil {
		return nil, nil, err
	}
	byMachine, err := a.groupCounts("machine_id")
	if err != nil {
		return nil, nil, err
	}
	return byArea, byMachine, nil
}

func (a *Aggregator) groupCounts(column string) ([]HeatmapEntry, error) {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM tasks GROUP BY %s", column, column)
	rows, err := a.db.Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("querying %s heatmap: %w", column, err)
	}
	defer rows.Close()

	entries := make([]HeatmapEntry, 0)
	for rows.Next() {
		var label sql.NullString
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scanning %s heatmap row: %w", column, err)
		}
		name := label.String
		if !label.Valid || name == "" {
			name = "Unspecified"
		}
		entries = append(entries, HeatmapEntry{Label: name, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s heatmap rows: %w", column, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})
	return entries, nil
}

// GetLeaderboard ranks workers by completed tasks, truncated to limit.
// Grouping is by assignee id, so tasks never assigned and tasks whose
// assignee is gone stay distinct even though both render as "Unknown".
// On schemas with created_at, the per-worker average days to complete
// covers rows whose timestamps parse; rows that fail to parse still
// count as completions, exactly like the old SQL where julianday on
// garbage yields NULL, AVG skips NULLs and COUNT does not. On minimal
// schemas every Done task counts and the average is fixed at 0.0.
func (a *Aggregator) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}

	type workerAgg struct {
		name    string
		count   int
		sumDays float64
		parsed  int
	}
	// Keyed by assigned_to; -1 stands in for NULL.
	agg := make(map[int64]*workerAgg)

	collect := func(assignee sql.NullInt64, name sql.NullString) *workerAgg {
		key := int64(-1)
		if assignee.Valid {
			key = assignee.Int64
		}
		w, ok := agg[key]
		if !ok {
			label := name.String
			if !name.Valid || label == "" {
				label = "Unknown"
			}
			w = &workerAgg{name: label}
			agg[key] = w
		}
		return w
	}

	if a.caps.HasCreatedAt {
		cf := a.caps.CompletionField()
		query := fmt.Sprintf(`
			SELECT t.assigned_to, u.username, t.%s, t.created_at
			FROM tasks t
			LEFT JOIN users u ON t.assigned_to = u.id
			WHERE t.status = ? AND t.%s IS NOT NULL AND t.created_at IS NOT NULL`, cf, cf)
		rows, err := a.db.Raw(query, string(models.TaskStatusDone)).Rows()
		if err != nil {
			return nil, fmt.Errorf("querying leaderboard: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var assignee sql.NullInt64
			var name, completed, created sql.NullString
			if err := rows.Scan(&assignee, &name, &completed, &created); err != nil {
				return nil, fmt.Errorf("scanning leaderboard row: %w", err)
			}
			w := collect(assignee, name)
			w.count++
			c, okC := ParseTimestamp(completed.String)
			cr, okCr := ParseTimestamp(created.String)
			if okC && okCr {
				w.sumDays += c.Sub(cr).Seconds() / 86400.0
				w.parsed++
			}
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("reading leaderboard rows: %w", err)
		}
	} else {
		rows, err := a.db.Raw(`
			SELECT t.assigned_to, u.username
			FROM tasks t
			LEFT JOIN users u ON t.assigned_to = u.id
			WHERE t.status = ?`, string(models.TaskStatusDone)).Rows()
		if err != nil {
			return nil, fmt.Errorf("querying leaderboard: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var assignee sql.NullInt64
			var name sql.NullString
			if err := rows.Scan(&assignee, &name); err != nil {
				return nil, fmt.Errorf("scanning leaderboard row: %w", err)
			}
			collect(assignee, name).count++
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("reading leaderboard rows: %w", err)
		}
	}

	keys := make([]int64, 0, len(agg))
	for key := range agg {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		wi, wj := agg[keys[i]], agg[keys[j]]
		if wi.count != wj.count {
			return wi.count > wj.count
		}
		if wi.name != wj.name {
			return wi.name < wj.name
		}
		return keys[i] < keys[j]
	})

	entries := make([]LeaderboardEntry, 0, len(keys))
	for _, key := range keys {
		w := agg[key]
		avg := 0.0
		if w.parsed > 0 {
			avg = round2(w.sumDays / float64(w.parsed))
		}
		entries = append(entries, LeaderboardEntry{
			WorkerName: w.name,
			TasksDone:  w.count,
			AvgDays:    avg,
		})
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// GetCycleTimeAvg returns the mean days from creation to completion
// across Done tasks, rounded to 2 decimals. 0.0 when the store has no
// created_at column or no row carries both parseable timestamps.
func (a *Aggregator) GetCycleTimeAvg() (float64, error) {
	if !a.caps.HasCreatedAt {
		return 0, nil
	}

	cf := a.caps.CompletionField()
	query := fmt.Sprintf(
		"SELECT %s, created_at FROM tasks WHERE status = ? AND %s IS NOT NULL AND created_at IS NOT NULL", cf, cf)
	rows, err := a.db.Raw(query, string(models.TaskStatusDone)).Rows()
	if err != nil {
		return 0, fmt.Errorf("querying cycle time: %w", err)
	}
	defer rows.Close()

	sum := 0.0
	n := 0
	for rows.Next() {
		var completed, created sql.NullString
		if err := rows.Scan(&completed, &created); err != nil {
			return 0, fmt.Errorf("scanning cycle time row: %w", err)
		}
		c, okC := ParseTimestamp(completed.String)
		cr, okCr := ParseTimestamp(created.String)
		if okC && okCr {
			sum += c.Sub(cr).Seconds() / 86400.0
			n++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading cycle time rows: %w", err)
	}

	if n == 0 {
		return 0, nil
	}
	return round2(sum / float64(n)), nil
}

// GetOnTimePercentage returns how many Done tasks met their deadline,
// as a percentage rounded to 2 decimals. The denominator counts every
// Done task carrying both timestamps; a row whose values fail to parse
// stays in the denominator and out of the numerator. 0.0 with no
// qualifying rows.
func (a *Aggregator) GetOnTimePercentage() (float64, error) {
	cf := a.caps.CompletionField()
	query := fmt.Sprintf(
		"SELECT %s, deadline FROM tasks WHERE status = ? AND %s IS NOT NULL AND deadline IS NOT NULL", cf, cf)
	rows, err := a.db.Raw(query, string(models.TaskStatusDone)).Rows()
	if err != nil {
		return 0, fmt.Errorf("querying on-time percentage: %w", err)
	}
	defer rows.Close()

	total := 0
	onTime := 0
	for rows.Next() {
		var completed, deadline sql.NullString
		if err := rows.Scan(&completed, &deadline); err != nil {
			return 0, fmt.Errorf("scanning on-time row: %w", err)
		}
		total++
		c, okC := ParseTimestamp(completed.String)
		d, okD := ParseTimestamp(deadline.String)
		if okC && okD && !c.After(d) {
			onTime++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading on-time rows: %w", err)
	}

	if total == 0 {
		return 0, nil
	}
	return round2(float64(onTime) / float64(total) * 100), nil
}

// GetBottleneckTopAreas ranks areas by open work (Pending or In
// Progress), truncated to topN. Blank and NULL areas are excluded here
// even though the heatmap keeps them; the two views serve different
// purposes and the asymmetry is long-standing behavior.
func (a *Aggregator) GetBottleneckTopAreas(topN int) ([]AreaCount, error) {
	if topN <= 0 {
		return []AreaCount{}, nil
	}

	rows, err := a.db.Raw(`
		SELECT TRIM(area) AS area_label, COUNT(*) AS cnt
		FROM tasks
		WHERE status IN (?, ?) AND TRIM(COALESCE(area, '')) <> ''
		GROUP BY TRIM(area)
		ORDER BY cnt DESC, area_label ASC
		LIMIT ?`,
		string(models.TaskStatusPending), string(models.TaskStatusInProgress), topN,
	).Rows()
	if err != nil {
		return nil, fmt.Errorf("querying bottleneck areas: %w", err)
	}
	defer rows.Close()

	out := make([]AreaCount, 0)
	for rows.Next() {
		var area string
		var count int
		if err := rows.Scan(&area, &count); err != nil {
			return nil, fmt.Errorf("scanning bottleneck row: %w", err)
		}
		out = append(out, AreaCount{Area: area, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bottleneck rows: %w", err)
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
