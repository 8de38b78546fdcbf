// Package mission holds the immutable schedule records the timeline draws:
// days, categories, assignments and the in-flight events attached to them.
package mission

import (
	"sort"
	"time"
)

// EventType identifies the kind of an in-flight event.
type EventType string

const (
	EventOnStation      EventType = "on-station"
	EventRefuelTanker   EventType = "refuel-tanker"
	EventRefuelReceiver EventType = "refuel-receiver"
	EventStrike         EventType = "strike"
)

// Milestone priorities used to order anything that happens at the same instant.
// Events and detail-drawer stops share this single ordering.
const (
	PriorityTakeoff = iota
	PriorityOnStation
	PriorityRefuel
	PriorityStrike
	PriorityOffStation
	PriorityLanding
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventOnStation, EventRefuelTanker, EventRefuelReceiver, EventStrike:
		return true
	}
	return false
}

// Interval reports whether events of this type span a window rather than an instant.
func (t EventType) Interval() bool {
	return t == EventOnStation
}

// IsRefuel reports whether t is either side of an air-to-air refueling.
func (t EventType) IsRefuel() bool {
	return t == EventRefuelTanker || t == EventRefuelReceiver
}

// Priority returns the tiebreak rank of t among events sharing an instant.
func (t EventType) Priority() int {
	switch t {
	case EventOnStation:
		return PriorityOnStation
	case EventRefuelTanker, EventRefuelReceiver:
		return PriorityRefuel
	case EventStrike:
		return PriorityStrike
	default:
		return PriorityLanding + 1
	}
}

// Label returns the human readable name used in drawers and tooltips.
func (t EventType) Label() string {
	switch t {
	case EventOnStation:
		return "On Station"
	case EventRefuelTanker:
		return "Fuel Offload"
	case EventRefuelReceiver:
		return "Fuel Receive"
	case EventStrike:
		return "Strike"
	default:
		return string(t)
	}
}

// Day is one schedule date and the time window the timeline shows for it.
type Day struct {
	DayID string    `json:"dayId"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the day window, zero when the window is malformed.
func (d Day) Duration() time.Duration {
	if !d.End.After(d.Start) {
		return 0
	}
	return d.End.Sub(d.Start)
}

// Contains reports whether t falls inside the day window, both ends inclusive.
func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.Start) && !t.After(d.End)
}

// Category names of the closed lookup table.
const (
	CategoryTanker = "Tanker"
	CategoryStrike = "Strike"
	CategoryCAP    = "CAP"
)

// Category classifies an assignment.
type Category struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

// Event is one in-flight event of an assignment. Only on-station events carry
// an EndTime; the optional quantities depend on the type.
type Event struct {
	Type               EventType  `json:"type"`
	Time               time.Time  `json:"time"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	FuelLbs            *int       `json:"fuelLbs,omitempty"`
	LinkedAssignmentID string     `json:"linkedAssignmentId,omitempty"`
	DMPICount          *int       `json:"dmpiCount,omitempty"`
}

// End returns the end of the event window, or the event instant for point events.
func (e Event) End() time.Time {
	if e.EndTime != nil {
		return *e.EndTime
	}
	return e.Time
}

// HasWindow reports whether e is an interval event with a usable end.
func (e Event) HasWindow() bool {
	return e.Type.Interval() && e.EndTime != nil
}

// DMPIs returns the strike aim point count; a strike without one counts as one.
func (e Event) DMPIs() int {
	if e.DMPICount == nil {
		return 1
	}
	return *e.DMPICount
}

// Fuel returns the transferred fuel in pounds, zero when unknown.
func (e Event) Fuel() int {
	if e.FuelLbs == nil {
		return 0
	}
	return *e.FuelLbs
}

// Metrics are the category specific figures of an assignment.
type Metrics struct {
	TotalFuelLbs        int `json:"totalFuelLbs,omitempty"`
	RemainingFuelLbs    int `json:"remainingFuelLbs,omitempty"`
	DMPITotal           int `json:"dmpiTotal,omitempty"`
	DMPIHit             int `json:"dmpiHit,omitempty"`
	OnStationMinutes    int `json:"onStationMinutes,omitempty"`
	ThreatContacts      int `json:"threatContacts,omitempty"`
	InterceptsCompleted int `json:"interceptsCompleted,omitempty"`
}

// Assignment is one scheduled sortie. Records are never mutated once loaded;
// selection and other view state is tracked by AssignmentID elsewhere.
type Assignment struct {
	AssignmentID  string    `json:"assignmentId"`
	DayID         string    `json:"dayId"`
	MissionNumber string    `json:"missionNumber"`
	Callsign      string    `json:"callsign"`
	CategoryID    string    `json:"categoryId"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Status        string    `json:"status"`
	Location      string    `json:"location,omitempty"`
	Events        []Event   `json:"events"`
	Metrics
}

// Duration returns the scheduled length, zero for a malformed range.
func (a Assignment) Duration() time.Duration {
	if !a.End.After(a.Start) {
		return 0
	}
	return a.End.Sub(a.Start)
}

// OnStationWindows returns the on-station events that carry an end, ordered by start.
func (a Assignment) OnStationWindows() []Event {
	var out []Event
	for _, ev := range a.Events {
		if ev.HasWindow() {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// Normalized returns a copy of a with events in canonical order and any
// reversed event window swapped so that EndTime >= Time.
func (a Assignment) Normalized() Assignment {
	events := make([]Event, len(a.Events))
	for i, ev := range a.Events {
		if ev.EndTime != nil && ev.EndTime.Before(ev.Time) {
			start, end := *ev.EndTime, ev.Time
			ev.Time = start
			ev.EndTime = &end
		}
		events[i] = ev
	}
	a.Events = SortEvents(events)
	return a
}

// SortEvents orders events by instant, breaking ties by type priority and then
// by original position.
func SortEvents(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.Before(out[j].Time)
		}
		return out[i].Type.Priority() < out[j].Type.Priority()
	})
	return out
}
