package briefing

import (
	"fmt"
	"time"

	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/mission"
)

// PanelRow is the side panel entry aligned with one timeline row.
type PanelRow struct {
	AssignmentID      string              `json:"assignmentId"`
	ShortCallsign     string              `json:"shortCallsign"`
	MissionNumber     string              `json:"missionNumber"`
	Category          string              `json:"category"`
	CategoryColor     string              `json:"categoryColor"`
	Status            string              `json:"status"`
	StatusColor       string              `json:"statusColor"`
	FlightStatus      flightstatus.Status `json:"flightStatus"`
	FlightStatusColor string              `json:"flightStatusColor"`
	Summary           string              `json:"summary"`
	SummaryColor      string              `json:"summaryColor"`
}

// Panel returns one row per assignment, in the given order.
func Panel(assignments []mission.Assignment, ix *mission.Index, ref time.Time, palette flightstatus.Palette) []PanelRow {
	rows := make([]PanelRow, 0, len(assignments))
	for _, a := range assignments {
		category := ix.CategoryName(a.CategoryID)
		status := flightstatus.Evaluate(a, ref)
		row := PanelRow{
			AssignmentID:      a.AssignmentID,
			ShortCallsign:     mission.ShortCallsign(a.Callsign),
			MissionNumber:     a.MissionNumber,
			Category:          category,
			CategoryColor:     CategoryColor(category),
			Status:            a.Status,
			StatusColor:       StatusColor(a.Status),
			FlightStatus:      status,
			FlightStatusColor: palette.Color(status),
		}
		row.Summary, row.SummaryColor = summary(a, category, ix)
		rows = append(rows, row)
	}
	return rows
}

func summary(a mission.Assignment, category string, ix *mission.Index) (string, string) {
	switch category {
	case mission.CategoryTanker:
		pct := 0.0
		if a.TotalFuelLbs > 0 {
			pct = float64(a.RemainingFuelLbs) / float64(a.TotalFuelLbs) * 100
		}
		return fmt.Sprintf("%s / %s lbs", mission.FormatFuelLbs(a.RemainingFuelLbs), mission.FormatFuelLbs(a.TotalFuelLbs)),
			FuelColor(pct)
	case mission.CategoryStrike:
		ratio := 0.0
		if a.DMPITotal > 0 {
			ratio = float64(a.DMPIHit) / float64(a.DMPITotal)
		}
		text := fmt.Sprintf("%d/%d DMPIs", a.DMPIHit, a.DMPITotal)
		if tanker := aarTanker(a, ix); tanker != "None" {
			text += " • AAR " + tanker
		}
		return text, HitColor(ratio)
	default:
		text := fmt.Sprintf("%d/%d intercepts", a.InterceptsCompleted, a.ThreatContacts)
		if tanker := aarTanker(a, ix); tanker != "None" {
			text += " • AAR " + tanker
		}
		return text, InterceptColor(a.InterceptsCompleted, a.ThreatContacts)
	}
}
