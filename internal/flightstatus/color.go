package flightstatus

// Default colors of the two-valued status projection.
const (
	DefaultInAirColor  = "#3B82F6"
	DefaultGroundColor = "#6B7280"
)

// Palette projects statuses onto colors. It is kept apart from Status so the
// color policy can change without touching the state machine.
type Palette struct {
	Ground string
	InAir  string
}

// DefaultPalette returns the ground/in-air colors used by the timeline.
func DefaultPalette() Palette {
	return Palette{Ground: DefaultGroundColor, InAir: DefaultInAirColor}
}

// Color returns the ground color for Pending and Mission Complete and the
// in-air color for every other phase.
func (p Palette) Color(s Status) string {
	if s.Airborne() {
		return p.InAir
	}
	return p.Ground
}
