package table

import (
	"sort"
	"time"
)

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// Bounds returns the half-open index range [lo, hi) of the sorted times within [start, end].
// lo == hi when nothing falls in range, including when start is after end.
func (t TimeSlice) Bounds(start, end time.Time) (int, int) {
	lo := sort.Search(len(t), func(i int) bool {
		return !t[i].Before(start)
	})
	hi := sort.Search(len(t), func(i int) bool {
		return t[i].After(end)
	})
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
