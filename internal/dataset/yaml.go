package dataset

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"missiontimeline/internal/mission"
)

// The raw types mirror the file layout. Times stay strings so every format in
// timestampFormats is accepted, not just the ones YAML resolves itself.
type rawFile struct {
	Days        []rawDay        `yaml:"days"`
	Categories  []rawCategory   `yaml:"categories"`
	Assignments []rawAssignment `yaml:"assignments"`
}

type rawDay struct {
	DayID string `yaml:"dayId"`
	Label string `yaml:"label"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type rawCategory struct {
	CategoryID string `yaml:"categoryId"`
	Name       string `yaml:"name"`
}

type rawEvent struct {
	Type               string `yaml:"type"`
	Time               string `yaml:"time"`
	EndTime            string `yaml:"endTime"`
	FuelLbs            *int   `yaml:"fuelLbs"`
	LinkedAssignmentID string `yaml:"linkedAssignmentId"`
	DMPICount          *int   `yaml:"dmpiCount"`
}

type rawAssignment struct {
	AssignmentID        string     `yaml:"assignmentId"`
	DayID               string     `yaml:"dayId"`
	MissionNumber       string     `yaml:"missionNumber"`
	Callsign            string     `yaml:"callsign"`
	CategoryID          string     `yaml:"categoryId"`
	Start               string     `yaml:"start"`
	End                 string     `yaml:"end"`
	Status              string     `yaml:"status"`
	Location            string     `yaml:"location"`
	Events              []rawEvent `yaml:"events"`
	TotalFuelLbs        int        `yaml:"totalFuelLbs"`
	RemainingFuelLbs    int        `yaml:"remainingFuelLbs"`
	DMPITotal           int        `yaml:"dmpiTotal"`
	DMPIHit             int        `yaml:"dmpiHit"`
	OnStationMinutes    int        `yaml:"onStationMinutes"`
	ThreatContacts      int        `yaml:"threatContacts"`
	InterceptsCompleted int        `yaml:"interceptsCompleted"`
}

func loadYAML(path string, loc *time.Location) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading schedule file: %w", err)
	}
	return Parse(data, loc)
}

// Parse decodes a YAML or JSON schedule document.
func Parse(data []byte, loc *time.Location) (*Dataset, error) {
	if loc == nil {
		loc = time.UTC
	}
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing schedule file: %w", err)
	}

	days := make([]mission.Day, 0, len(raw.Days))
	for _, rd := range raw.Days {
		day, err := rd.convert(loc)
		if err != nil {
			return nil, fmt.Errorf("day %q: %w", rd.DayID, err)
		}
		days = append(days, day)
	}

	categories := make([]mission.Category, 0, len(raw.Categories))
	for _, rc := range raw.Categories {
		categories = append(categories, mission.Category{CategoryID: rc.CategoryID, Name: rc.Name})
	}

	assignments := make([]mission.Assignment, 0, len(raw.Assignments))
	for _, ra := range raw.Assignments {
		a, err := ra.convert(loc)
		if err != nil {
			return nil, fmt.Errorf("assignment %q: %w", ra.AssignmentID, err)
		}
		assignments = append(assignments, a)
	}
	return New(days, categories, assignments), nil
}

func (rd rawDay) convert(loc *time.Location) (mission.Day, error) {
	start, err := parseTime(rd.Start, loc)
	if err != nil {
		return mission.Day{}, err
	}
	end, err := parseTime(rd.End, loc)
	if err != nil {
		return mission.Day{}, err
	}
	label := rd.Label
	if label == "" {
		label = rd.DayID
	}
	return mission.Day{DayID: rd.DayID, Label: label, Start: start, End: end}, nil
}

func (ra rawAssignment) convert(loc *time.Location) (mission.Assignment, error) {
	if ra.AssignmentID == "" {
		return mission.Assignment{}, errors.New("missing assignmentId")
	}
	start, err := parseTime(ra.Start, loc)
	if err != nil {
		return mission.Assignment{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseTime(ra.End, loc)
	if err != nil {
		return mission.Assignment{}, fmt.Errorf("end: %w", err)
	}

	events := make([]mission.Event, 0, len(ra.Events))
	for i, re := range ra.Events {
		ev, err := re.convert(loc)
		if err != nil {
			return mission.Assignment{}, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}

	return mission.Assignment{
		AssignmentID:  ra.AssignmentID,
		DayID:         ra.DayID,
		MissionNumber: ra.MissionNumber,
		Callsign:      ra.Callsign,
		CategoryID:    ra.CategoryID,
		Start:         start,
		End:           end,
		Status:        ra.Status,
		Location:      ra.Location,
		Events:        events,
		Metrics: mission.Metrics{
			TotalFuelLbs:        ra.TotalFuelLbs,
			RemainingFuelLbs:    ra.RemainingFuelLbs,
			DMPITotal:           ra.DMPITotal,
			DMPIHit:             ra.DMPIHit,
			OnStationMinutes:    ra.OnStationMinutes,
			ThreatContacts:      ra.ThreatContacts,
			InterceptsCompleted: ra.InterceptsCompleted,
		},
	}, nil
}

func (re rawEvent) convert(loc *time.Location) (mission.Event, error) {
	typ := mission.EventType(re.Type)
	if !typ.Valid() {
		return mission.Event{}, fmt.Errorf("unknown event type %q", re.Type)
	}
	at, err := parseTime(re.Time, loc)
	if err != nil {
		return mission.Event{}, fmt.Errorf("time: %w", err)
	}
	ev := mission.Event{
		Type:               typ,
		Time:               at,
		FuelLbs:            re.FuelLbs,
		LinkedAssignmentID: re.LinkedAssignmentID,
		DMPICount:          re.DMPICount,
	}
	if re.EndTime != "" {
		end, err := parseTime(re.EndTime, loc)
		if err != nil {
			return mission.Event{}, fmt.Errorf("endTime: %w", err)
		}
		ev.EndTime = &end
	}
	return ev, nil
}
