// Package briefing derives the text and colors shown around the timeline:
// the detail drawer, tooltips, the side panel and the tanker board.
package briefing

import (
	"missiontimeline/internal/mission"
)

// Mission status values carried on assignment records.
const (
	StatusOK       = "OK"
	StatusAtRisk   = "AT RISK"
	StatusDegraded = "DEGRADED"
)

const (
	colorGreen   = "#4CAF50"
	colorAmber   = "#FF9800"
	colorRed     = "#F44336"
	colorNeutral = "#9E9E9E"
	colorMuted   = "#555555"
)

// StatusColor returns the chip color of a mission status.
func StatusColor(status string) string {
	switch status {
	case StatusOK:
		return colorGreen
	case StatusAtRisk:
		return colorAmber
	case StatusDegraded:
		return colorRed
	default:
		return colorNeutral
	}
}

// CategoryColor returns the accent color of a category name.
func CategoryColor(name string) string {
	switch name {
	case mission.CategoryTanker:
		return "#5B9BD5"
	case mission.CategoryStrike:
		return "#E07B39"
	case mission.CategoryCAP:
		return "#4CAF7D"
	default:
		return colorNeutral
	}
}

// FuelColor grades a remaining fuel percentage.
func FuelColor(pct float64) string {
	switch {
	case pct > 50:
		return "#4ADE80"
	case pct > 25:
		return "#FACC15"
	default:
		return "#EF4444"
	}
}

// HitColor grades a strike's DMPI hit ratio in [0, 1].
func HitColor(ratio float64) string {
	switch {
	case ratio > 0.8:
		return colorGreen
	case ratio > 0.5:
		return colorAmber
	default:
		return colorRed
	}
}

// InterceptColor grades a CAP's intercept ratio. Without threat contacts
// there is nothing to grade.
func InterceptColor(intercepts, contacts int) string {
	if contacts <= 0 {
		return colorMuted
	}
	ratio := float64(intercepts) / float64(contacts)
	switch {
	case ratio > 0.7:
		return colorGreen
	case ratio > 0.4:
		return colorAmber
	default:
		return colorRed
	}
}

// MarginColor grades a tanker's fuel margin over its reserve.
func MarginColor(totalLbs, marginLbs int) string {
	if totalLbs <= 0 {
		return "#9CA3AF"
	}
	pct := float64(marginLbs) / float64(totalLbs) * 100
	switch {
	case pct > 10:
		return "#34D399"
	case pct > 0:
		return "#FBBF24"
	default:
		return "#F87171"
	}
}
