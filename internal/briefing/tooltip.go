package briefing

import (
	"fmt"
	"time"

	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/timescale"
)

// Tooltip returns the lines of the hover tooltip. A negative eventIndex, or
// one that does not address an event of a, describes the whole bar.
func Tooltip(a mission.Assignment, eventIndex int, ix *mission.Index, ref time.Time) []string {
	title := a.Callsign
	if a.MissionNumber != "" {
		title = a.MissionNumber + " " + a.Callsign
	}
	if eventIndex < 0 || eventIndex >= len(a.Events) {
		return []string{
			title,
			timescale.FormatHHMMSS(a.Start) + "–" + timescale.FormatHHMMSS(a.End),
			a.Status,
			string(flightstatus.Evaluate(a, ref)),
		}
	}

	ev := a.Events[eventIndex]
	when := timescale.FormatHHMMSS(ev.Time) + "Z"
	if ev.EndTime != nil {
		when = timescale.FormatHHMMSS(ev.Time) + "–" + timescale.FormatHHMMSS(*ev.EndTime) + "Z"
	}
	lines := []string{ev.Type.Label(), when}
	switch {
	case ev.Type.IsRefuel():
		lines = append(lines, refuelDetail(ev, ix))
	case ev.Type == mission.EventStrike:
		lines = append(lines, fmt.Sprintf("%d DMPIs", ev.DMPIs()))
	}
	return append(lines, title)
}
