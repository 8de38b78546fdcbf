package briefing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/timescale"
)

// StopKind is a milestone on the mission route.
type StopKind string

const (
	StopTakeoff    StopKind = "takeoff"
	StopOnStation  StopKind = "on-station"
	StopRefuel     StopKind = "refuel"
	StopStrike     StopKind = "strike"
	StopOffStation StopKind = "off-station"
	StopLanding    StopKind = "landing"
)

// Priority returns the same-instant rank of k, shared with event ordering.
func (k StopKind) Priority() int {
	switch k {
	case StopTakeoff:
		return mission.PriorityTakeoff
	case StopOnStation:
		return mission.PriorityOnStation
	case StopRefuel:
		return mission.PriorityRefuel
	case StopStrike:
		return mission.PriorityStrike
	case StopOffStation:
		return mission.PriorityOffStation
	default:
		return mission.PriorityLanding
	}
}

// Stop is one milestone of the route map.
type Stop struct {
	Time   time.Time `json:"time"`
	Label  string    `json:"label"`
	Detail string    `json:"detail,omitempty"`
	Kind   StopKind  `json:"kind"`
}

// Stops lists takeoff, landing and every event milestone of a, ordered by
// time and then by milestone priority.
func Stops(a mission.Assignment, ix *mission.Index) []Stop {
	stops := []Stop{
		{Time: a.Start, Label: "Takeoff", Kind: StopTakeoff},
		{Time: a.End, Label: "Landing", Kind: StopLanding},
	}
	for _, ev := range a.Events {
		switch {
		case ev.Type == mission.EventOnStation:
			stops = append(stops, Stop{Time: ev.Time, Label: "On Station", Kind: StopOnStation})
			if ev.EndTime != nil {
				stops = append(stops, Stop{Time: *ev.EndTime, Label: "Off Station", Kind: StopOffStation})
			}
		case ev.Type.IsRefuel():
			stops = append(stops, Stop{
				Time:   ev.Time,
				Label:  ev.Type.Label(),
				Detail: refuelDetail(ev, ix),
				Kind:   StopRefuel,
			})
		default:
			stops = append(stops, Stop{
				Time:   ev.Time,
				Label:  "Strike",
				Detail: fmt.Sprintf("%d DMPIs", ev.DMPIs()),
				Kind:   StopStrike,
			})
		}
	}
	sort.SliceStable(stops, func(i, j int) bool {
		if !stops[i].Time.Equal(stops[j].Time) {
			return stops[i].Time.Before(stops[j].Time)
		}
		return stops[i].Kind.Priority() < stops[j].Kind.Priority()
	})
	return stops
}

func refuelDetail(ev mission.Event, ix *mission.Index) string {
	return fmt.Sprintf("%s • %s lbs", ix.Callsign(ev.LinkedAssignmentID), mission.FormatFuelLbs(ev.Fuel()))
}

// Field is a labelled value of the category section.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CategoryFields returns the category specific figures of a. Assignments of
// an unrecognized category are shown with the CAP figures.
func CategoryFields(a mission.Assignment, category string, ix *mission.Index) []Field {
	switch category {
	case mission.CategoryTanker:
		var receivers []string
		for _, ev := range a.Events {
			if ev.Type != mission.EventRefuelTanker || ev.LinkedAssignmentID == "" {
				continue
			}
			receivers = append(receivers, ix.Callsign(ev.LinkedAssignmentID))
		}
		recv := "None"
		if len(receivers) > 0 {
			recv = strings.Join(receivers, ", ")
		}
		return []Field{
			{"Fuel Remaining", fmt.Sprintf("%s lbs (%d%%)", mission.FormatFuelLbs(a.RemainingFuelLbs), percent(a.RemainingFuelLbs, a.TotalFuelLbs))},
			{"Fuel Capacity", mission.FormatFuelLbs(a.TotalFuelLbs) + " lbs"},
			{"Receivers", recv},
		}
	case mission.CategoryStrike:
		return []Field{
			{"DMPIs Hit", fmt.Sprintf("%d/%d", a.DMPIHit, a.DMPITotal)},
			{"Missed", fmt.Sprint(max(0, a.DMPITotal-a.DMPIHit))},
			{"AAR Tanker", aarTanker(a, ix)},
		}
	default:
		return []Field{
			{"On-Station Time", fmt.Sprintf("%d min", a.OnStationMinutes)},
			{"Intercepts", fmt.Sprintf("%d/%d", a.InterceptsCompleted, a.ThreatContacts)},
			{"AAR Tanker", aarTanker(a, ix)},
		}
	}
}

// aarTanker names the tanker of the first linked receive event, "None"
// without one. Links to missing assignments read as UNKNOWN.
func aarTanker(a mission.Assignment, ix *mission.Index) string {
	for _, ev := range a.Events {
		if ev.Type == mission.EventRefuelReceiver && ev.LinkedAssignmentID != "" {
			return ix.Callsign(ev.LinkedAssignmentID)
		}
	}
	return "None"
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// EventLine is one row of the drawer's event list.
type EventLine struct {
	Label string `json:"label"`
	Time  string `json:"time"`
}

// Details is the content of the detail drawer for one assignment.
type Details struct {
	AssignmentID      string              `json:"assignmentId"`
	MissionNumber     string              `json:"missionNumber"`
	Callsign          string              `json:"callsign"`
	Category          string              `json:"category"`
	CategoryColor     string              `json:"categoryColor"`
	FlightStatus      flightstatus.Status `json:"flightStatus"`
	FlightStatusColor string              `json:"flightStatusColor"`
	Status            string              `json:"status"`
	StatusColor       string              `json:"statusColor"`
	Takeoff           string              `json:"takeoff"`
	Land              string              `json:"land"`
	Duration          string              `json:"duration"`
	Stops             []Stop              `json:"stops"`
	Fields            []Field             `json:"fields"`
	Events            []EventLine         `json:"events"`
}

// Build assembles the drawer for a at reference time ref.
func Build(a mission.Assignment, ix *mission.Index, ref time.Time, palette flightstatus.Palette) Details {
	category := ix.CategoryName(a.CategoryID)
	status := flightstatus.Evaluate(a, ref)
	d := Details{
		AssignmentID:      a.AssignmentID,
		MissionNumber:     a.MissionNumber,
		Callsign:          a.Callsign,
		Category:          category,
		CategoryColor:     CategoryColor(category),
		FlightStatus:      status,
		FlightStatusColor: palette.Color(status),
		Status:            a.Status,
		StatusColor:       StatusColor(a.Status),
		Takeoff:           timescale.FormatHHMMSS(a.Start),
		Land:              timescale.FormatHHMMSS(a.End),
		Duration:          timescale.FormatDuration(a.Start, a.End),
		Stops:             Stops(a, ix),
		Fields:            CategoryFields(a, category, ix),
	}
	for _, ev := range a.Events {
		d.Events = append(d.Events, EventLine{Label: ev.Type.Label(), Time: timescale.FormatHHMMSS(ev.Time)})
	}
	return d
}

// Text renders d as plain lines for terminals and logs.
func (d Details) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", d.MissionNumber, d.Callsign)
	fmt.Fprintf(&b, "[%s] [%s] [%s]\n", strings.ToUpper(d.Category), d.FlightStatus, d.Status)
	fmt.Fprintf(&b, "Takeoff %sZ  Land %sZ  Duration %s\n", d.Takeoff, d.Land, d.Duration)
	b.WriteString("\nRoute\n")
	for _, s := range d.Stops {
		fmt.Fprintf(&b, "  %sZ  %s", timescale.FormatHHMMSS(s.Time), s.Label)
		if s.Detail != "" {
			fmt.Fprintf(&b, " (%s)", s.Detail)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	if len(d.Events) > 0 {
		b.WriteString("\nEvents\n")
		for _, ev := range d.Events {
			fmt.Fprintf(&b, "  %s  %s\n", ev.Time, ev.Label)
		}
	}
	return b.String()
}
