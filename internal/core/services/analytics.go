package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

const (
	TimeFrameWeek    = "week"
	TimeFrameMonth   = "month"
	TimeFrameQuarter = "quarter"
	TimeFrameAll     = "all"
)

const (
	dayBucketLayout   = "2006-01-02"
	monthBucketLayout = "2006-01"
)

// NormalizeTimeFrame maps anything that is not week, month or quarter to all.
func NormalizeTimeFrame(tf string) string {
	switch tf = strings.ToLower(strings.TrimSpace(tf)); tf {
	case TimeFrameWeek, TimeFrameMonth, TimeFrameQuarter:
		return tf
	default:
		return TimeFrameAll
	}
}

// windowStart returns the lower creation bound for a time frame and the layout
// used to bucket dates inside it. "all" looks back ten years.
func windowStart(tf string, now time.Time) (time.Time, string) {
	switch tf {
	case TimeFrameWeek:
		return now.AddDate(0, 0, -7), dayBucketLayout
	case TimeFrameMonth:
		return minusMonths(now, 1), dayBucketLayout
	case TimeFrameQuarter:
		return minusMonths(now, 3), monthBucketLayout
	default:
		return minusMonths(now, 10*12), monthBucketLayout
	}
}

// minusMonths goes back n calendar months, clamping the day to the end of the
// target month. time.AddDate would normalize Mar 31 minus one month to Mar 3.
func minusMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	lastDay := time.Date(y, m-time.Month(n)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(y, m-time.Month(n), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func assigneeName(t *domain.Task) (string, bool) {
	if t.AssignedToID == nil {
		return "", false
	}
	if t.AssignedTo != nil && t.AssignedTo.Name != "" {
		return t.AssignedTo.Name, true
	}
	return "user " + strconv.FormatUint(uint64(*t.AssignedToID), 10), true
}

// Aggregate counts tasks by status, priority and assignee over the whole set,
// and by creation date over the tasks created inside the time frame.
func Aggregate(tasks []domain.Task, timeFrame string, now time.Time) *ports.Analytics {
	tf := NormalizeTimeFrame(timeFrame)
	out := &ports.Analytics{
		TotalTasks:      len(tasks),
		TasksByStatus:   map[string]int64{},
		TasksByPriority: map[string]int64{},
		TasksByUser:     map[string]int64{},
		TasksByDate:     map[string]int64{},
		TimeFrame:       tf,
	}

	start, layout := windowStart(tf, now)
	for i := range tasks {
		t := &tasks[i]
		out.TasksByStatus[string(t.Status)]++
		out.TasksByPriority[t.Priority]++
		if name, ok := assigneeName(t); ok {
			out.TasksByUser[name]++
		}
		if t.CreatedAt.After(start) {
			out.TasksByDate[t.CreatedAt.UTC().Format(layout)]++
		}
	}
	return out
}
