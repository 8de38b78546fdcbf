// Package flightstatus derives the operational phase of an assignment at a
// reference instant. Everything here is a pure function of its inputs; the
// reference instant is always passed in, never read from a clock.
package flightstatus

import (
	"sort"
	"time"

	"missiontimeline/internal/mission"
)

// Status is the operational phase of a sortie.
type Status string

const (
	Pending   Status = "Pending"
	Takeoff   Status = "Takeoff"
	Enroute   Status = "Enroute"
	OnStation Status = "On Station"
	RTB       Status = "RTB"
	Complete  Status = "Mission Complete"
)

const (
	maxTakeoffWindow = 20 * time.Minute
	takeoffFraction  = 0.15
	rtbFraction      = 0.25
	maxAnchorOffset  = 20 * time.Minute
	anchorFraction   = 0.2
)

// Airborne reports whether s is one of the in-air phases.
func (s Status) Airborne() bool {
	return s != Pending && s != Complete
}

// Evaluate returns the phase of a at ref.
func Evaluate(a mission.Assignment, ref time.Time) Status {
	if ref.Before(a.Start) {
		return Pending
	}
	if !ref.Before(a.End) {
		return Complete
	}

	duration := a.End.Sub(a.Start)
	if duration < 1 {
		duration = 1
	}
	takeoffEnd := a.Start.Add(minDuration(maxTakeoffWindow, fraction(duration, takeoffFraction)))
	if ref.Before(takeoffEnd) {
		return Takeoff
	}

	windows := a.OnStationWindows()
	if len(windows) == 0 {
		rtbStart := a.End.Add(-fraction(duration, rtbFraction))
		if !ref.Before(rtbStart) {
			return RTB
		}
		return Enroute
	}

	for _, w := range windows {
		if !ref.Before(w.Time) && !ref.After(w.End()) {
			return OnStation
		}
	}
	if ref.After(lastWindowEnd(windows)) {
		return RTB
	}
	return Enroute
}

// lastWindowEnd returns the end of the last window by start order.
func lastWindowEnd(windows []mission.Event) time.Time {
	return windows[len(windows)-1].End()
}

// ReferenceTime picks the instant statuses are evaluated at for a day. The
// injected now is used when it falls inside the day. Otherwise the instant is
// anchored a little way into the median-start assignment so replayed or
// offline data still shows a spread of phases.
func ReferenceTime(day mission.Day, assignments []mission.Assignment, now time.Time) time.Time {
	if day.Contains(now) {
		return now
	}
	if len(assignments) == 0 {
		return day.Start.Add(day.End.Sub(day.Start) / 2)
	}

	sorted := make([]mission.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	mid := sorted[len(sorted)/2]
	duration := mid.End.Sub(mid.Start)
	if duration < time.Millisecond {
		duration = time.Millisecond
	}
	return mid.Start.Add(minDuration(maxAnchorOffset, fraction(duration, anchorFraction)))
}

// Count tallies statuses of assignments at ref.
func Count(assignments []mission.Assignment, ref time.Time) map[Status]int {
	counts := make(map[Status]int)
	for _, a := range assignments {
		counts[Evaluate(a, ref)]++
	}
	return counts
}

func fraction(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
