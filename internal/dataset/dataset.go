// Package dataset loads the schedule input contract {days, categories,
// assignments} and implements the day/category/search filter the timeline is
// fed from.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"missiontimeline/internal/mission"
)

// ErrUnknownDay is returned when a day id is not part of the dataset.
var ErrUnknownDay = errors.New("unknown day")

// Dataset is a loaded schedule. It is read-only after Load.
type Dataset struct {
	Days        []mission.Day
	Categories  []mission.Category
	Assignments []mission.Assignment
	Index       *mission.Index
}

// New builds a dataset from records and indexes it.
func New(days []mission.Day, categories []mission.Category, assignments []mission.Assignment) *Dataset {
	return &Dataset{
		Days:        days,
		Categories:  categories,
		Assignments: assignments,
		Index:       mission.NewIndex(assignments, categories),
	}
}

// Load reads a schedule file. The format follows the extension: .csv files
// hold assignment rows only, everything else is read as YAML (which includes
// JSON). Times without a zone are interpreted in loc, UTC when nil.
func Load(path string, loc *time.Location) (*Dataset, error) {
	if loc == nil {
		loc = time.UTC
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSV(path, loc)
	}
	return loadYAML(path, loc)
}

// Day returns the day with the given id.
func (d *Dataset) Day(id string) (mission.Day, error) {
	for _, day := range d.Days {
		if day.DayID == id {
			return day, nil
		}
	}
	return mission.Day{}, fmt.Errorf("%w: %q", ErrUnknownDay, id)
}

// DefaultDay returns the earliest day of the dataset.
func (d *Dataset) DefaultDay() (mission.Day, error) {
	if len(d.Days) == 0 {
		return mission.Day{}, fmt.Errorf("%w: dataset has no days", ErrUnknownDay)
	}
	first := d.Days[0]
	for _, day := range d.Days[1:] {
		if day.Start.Before(first.Start) {
			first = day
		}
	}
	return first, nil
}

// CategoryID resolves a category by id or by case-insensitive name. The empty
// string means all categories.
func (d *Dataset) CategoryID(ref string) (string, bool) {
	if ref == "" {
		return "", true
	}
	for _, c := range d.Categories {
		if c.CategoryID == ref || strings.EqualFold(c.Name, ref) {
			return c.CategoryID, true
		}
	}
	return "", false
}

// Filter returns the assignments of dayID, restricted to categoryID when it
// is not empty, whose callsign, mission number, id or location contains query
// case-insensitively. The result is ordered by start, then assignment id.
func Filter(assignments []mission.Assignment, dayID, categoryID, query string) []mission.Assignment {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []mission.Assignment
	for _, a := range assignments {
		if a.DayID != dayID {
			continue
		}
		if categoryID != "" && a.CategoryID != categoryID {
			continue
		}
		if q != "" && !matches(a, q) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].AssignmentID < out[j].AssignmentID
	})
	return out
}

func matches(a mission.Assignment, q string) bool {
	for _, field := range []string{a.Callsign, a.MissionNumber, a.AssignmentID, a.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// timestampFormats are tried in order when parsing schedule times.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var (
		t   time.Time
		err error
	)
	for _, format := range timestampFormats {
		t, err = time.ParseInLocation(format, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp '%s': %w", s, err)
}
