package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"missiontimeline/internal/mission"
)

// csvColumns are the accepted assignment columns, matched case-insensitively.
var csvColumns = []string{
	"assignment_id",
	"day_id",
	"mission_number",
	"callsign",
	"category",
	"start",
	"end",
	"status",
	"location",
	"total_fuel_lbs",
	"remaining_fuel_lbs",
	"dmpi_total",
	"dmpi_hit",
	"on_station_minutes",
	"threat_contacts",
	"intercepts_completed",
}

var requiredCSVColumns = []string{"assignment_id", "callsign", "start", "end"}

// loadCSV reads assignment rows. CSV carries no events; days and categories
// are derived from the rows.
func loadCSV(filename string, loc *time.Location) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()
	return readCSV(file, loc)
}

func readCSV(r io.Reader, loc *time.Location) (*Dataset, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	known := make(map[string]bool, len(csvColumns))
	for _, c := range csvColumns {
		known[c] = true
	}
	columnMap := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if !known[name] {
			return nil, fmt.Errorf("unknown CSV column '%s'. Accepted columns: %v", col, csvColumns)
		}
		columnMap[name] = i
	}
	for _, req := range requiredCSVColumns {
		if _, ok := columnMap[req]; !ok {
			return nil, fmt.Errorf("required column '%s' not found in CSV. Available columns: %v", req, header)
		}
	}

	var assignments []mission.Assignment
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line++

		a, err := parseCSVRow(record, columnMap, loc)
		if err != nil {
			return nil, fmt.Errorf("error parsing CSV row %d: %w", line, err)
		}
		assignments = append(assignments, a)
	}

	categories := deriveCategories(assignments)
	days := deriveDays(assignments)
	return New(days, categories, assignments), nil
}

func parseCSVRow(record []string, columnMap map[string]int, loc *time.Location) (mission.Assignment, error) {
	get := func(name string) string {
		if i, ok := columnMap[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	num := func(name string) (int, error) {
		s := get(name)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		return n, nil
	}

	start, err := parseTime(get("start"), loc)
	if err != nil {
		return mission.Assignment{}, err
	}
	end, err := parseTime(get("end"), loc)
	if err != nil {
		return mission.Assignment{}, err
	}

	a := mission.Assignment{
		AssignmentID:  get("assignment_id"),
		DayID:         get("day_id"),
		MissionNumber: get("mission_number"),
		Callsign:      get("callsign"),
		CategoryID:    categoryID(get("category")),
		Start:         start,
		End:           end,
		Status:        get("status"),
		Location:      get("location"),
	}
	if a.AssignmentID == "" {
		return mission.Assignment{}, errors.New("empty assignment_id")
	}
	if a.DayID == "" {
		a.DayID = start.Format("2006-01-02")
	}

	metrics := []struct {
		column string
		dst    *int
	}{
		{"total_fuel_lbs", &a.TotalFuelLbs},
		{"remaining_fuel_lbs", &a.RemainingFuelLbs},
		{"dmpi_total", &a.DMPITotal},
		{"dmpi_hit", &a.DMPIHit},
		{"on_station_minutes", &a.OnStationMinutes},
		{"threat_contacts", &a.ThreatContacts},
		{"intercepts_completed", &a.InterceptsCompleted},
	}
	for _, m := range metrics {
		if *m.dst, err = num(m.column); err != nil {
			return mission.Assignment{}, err
		}
	}
	return a, nil
}

// categoryID turns a category name such as "Tanker" into the id "tanker".
func categoryID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func deriveCategories(assignments []mission.Assignment) []mission.Category {
	canonical := map[string]string{
		categoryID(mission.CategoryTanker): mission.CategoryTanker,
		categoryID(mission.CategoryStrike): mission.CategoryStrike,
		categoryID(mission.CategoryCAP):    mission.CategoryCAP,
	}
	seen := make(map[string]bool)
	var out []mission.Category
	for _, a := range assignments {
		if a.CategoryID == "" || seen[a.CategoryID] {
			continue
		}
		seen[a.CategoryID] = true
		name, ok := canonical[a.CategoryID]
		if !ok {
			name = a.CategoryID
		}
		out = append(out, mission.Category{CategoryID: a.CategoryID, Name: name})
	}
	return out
}

// deriveDays spans each day id over its assignments, widened to whole hours.
func deriveDays(assignments []mission.Assignment) []mission.Day {
	byID := make(map[string]*mission.Day)
	var order []string
	for _, a := range assignments {
		d, ok := byID[a.DayID]
		if !ok {
			d = &mission.Day{DayID: a.DayID, Label: a.DayID, Start: a.Start, End: a.End}
			byID[a.DayID] = d
			order = append(order, a.DayID)
		}
		if a.Start.Before(d.Start) {
			d.Start = a.Start
		}
		if a.End.After(d.End) {
			d.End = a.End
		}
	}

	days := make([]mission.Day, 0, len(order))
	for _, id := range order {
		d := *byID[id]
		d.Start = floorHour(d.Start)
		if ceil := floorHour(d.End); ceil.Before(d.End) {
			d.End = ceil.Add(time.Hour)
		}
		days = append(days, d)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Start.Before(days[j].Start) })
	return days
}

func floorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
