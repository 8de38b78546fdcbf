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

// ReserveFraction is the share of capacity a tanker keeps for itself.
const ReserveFraction = 0.15

// Offload is one scheduled fuel transfer from a tanker.
type Offload struct {
	Receiver string    `json:"receiver"`
	Time     time.Time `json:"time"`
	FuelLbs  int       `json:"fuelLbs"`
}

// TankerCard summarizes one airborne tanker.
type TankerCard struct {
	AssignmentID  string    `json:"assignmentId"`
	MissionNumber string    `json:"missionNumber"`
	Callsign      string    `json:"callsign"`
	RemainingLbs  int       `json:"remainingLbs"`
	TotalLbs      int       `json:"totalLbs"`
	FuelPercent   int       `json:"fuelPercent"`
	ReserveLbs    int       `json:"reserveLbs"`
	MarginLbs     int       `json:"marginLbs"`
	MarginColor   string    `json:"marginColor"`
	Offloads      []Offload `json:"offloads"`
}

// TankerBoard lists the tankers airborne at Reference.
type TankerBoard struct {
	Reference time.Time    `json:"reference"`
	Tankers   []TankerCard `json:"tankers"`
}

// Tankers builds the board for day. The reference time is derived from the
// day's tanker sorties only, so the board shows a busy tanker moment even when
// now falls outside the day.
func Tankers(day mission.Day, assignments []mission.Assignment, categories []mission.Category, ix *mission.Index, now time.Time) TankerBoard {
	sorties := tankerSorties(day, assignments, categories)
	return tankerBoard(sorties, ix, flightstatus.ReferenceTime(day, sorties, now))
}

// TankersAt builds the board for day at exactly ref, for callers that pinned
// the reference time.
func TankersAt(day mission.Day, assignments []mission.Assignment, categories []mission.Category, ix *mission.Index, ref time.Time) TankerBoard {
	return tankerBoard(tankerSorties(day, assignments, categories), ix, ref)
}

func tankerSorties(day mission.Day, assignments []mission.Assignment, categories []mission.Category) []mission.Assignment {
	tankerIDs := make(map[string]bool)
	for _, c := range categories {
		if strings.EqualFold(c.Name, mission.CategoryTanker) {
			tankerIDs[c.CategoryID] = true
		}
	}

	var sorties []mission.Assignment
	for _, a := range assignments {
		if a.DayID == day.DayID && tankerIDs[a.CategoryID] {
			sorties = append(sorties, a)
		}
	}
	sort.SliceStable(sorties, func(i, j int) bool { return sorties[i].Start.Before(sorties[j].Start) })
	return sorties
}

func tankerBoard(sorties []mission.Assignment, ix *mission.Index, ref time.Time) TankerBoard {
	board := TankerBoard{Reference: ref}
	for _, a := range sorties {
		if !flightstatus.Evaluate(a, ref).Airborne() {
			continue
		}
		board.Tankers = append(board.Tankers, tankerCard(a, ix))
	}
	return board
}

func tankerCard(a mission.Assignment, ix *mission.Index) TankerCard {
	reserve := int(math.Round(float64(a.TotalFuelLbs) * ReserveFraction))
	margin := a.RemainingFuelLbs - reserve
	card := TankerCard{
		AssignmentID:  a.AssignmentID,
		MissionNumber: a.MissionNumber,
		Callsign:      a.Callsign,
		RemainingLbs:  a.RemainingFuelLbs,
		TotalLbs:      a.TotalFuelLbs,
		FuelPercent:   percent(a.RemainingFuelLbs, a.TotalFuelLbs),
		ReserveLbs:    reserve,
		MarginLbs:     margin,
		MarginColor:   MarginColor(a.TotalFuelLbs, margin),
	}
	for _, ev := range a.Events {
		if ev.Type != mission.EventRefuelTanker {
			continue
		}
		card.Offloads = append(card.Offloads, Offload{
			Receiver: ix.Callsign(ev.LinkedAssignmentID),
			Time:     ev.Time,
			FuelLbs:  ev.Fuel(),
		})
	}
	sort.SliceStable(card.Offloads, func(i, j int) bool { return card.Offloads[i].Time.Before(card.Offloads[j].Time) })
	return card
}

// FormatMargin renders a margin with an explicit sign for surpluses.
func FormatMargin(lbs int) string {
	if lbs >= 0 {
		return "+" + mission.FormatFuelLbs(lbs) + " lbs"
	}
	return mission.FormatFuelLbs(lbs) + " lbs"
}

// Text renders the board as plain lines.
func (b TankerBoard) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tankers airborne at %sZ\n", timescale.FormatHHMMSS(b.Reference))
	if len(b.Tankers) == 0 {
		sb.WriteString("  none\n")
		return sb.String()
	}
	for _, c := range b.Tankers {
		fmt.Fprintf(&sb, "\n%s  %s  %s / %s lbs (%d%%)  margin %s\n",
			c.MissionNumber, c.Callsign,
			mission.FormatFuelLbs(c.RemainingLbs), mission.FormatFuelLbs(c.TotalLbs), c.FuelPercent,
			FormatMargin(c.MarginLbs))
		for _, o := range c.Offloads {
			fmt.Fprintf(&sb, "  %sZ  %-10s %s lbs\n", timescale.FormatHHMMSS(o.Time), o.Receiver, mission.FormatFuelLbs(o.FuelLbs))
		}
	}
	return sb.String()
}
