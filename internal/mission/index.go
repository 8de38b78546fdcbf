package mission

import (
	"regexp"
	"strconv"
	"strings"
)

// UnknownCallsign stands in for a linked assignment that cannot be resolved.
const UnknownCallsign = "UNKNOWN"

// Index resolves assignment and category ids. Links between assignments stay
// ids; the index is rebuilt whenever the data set is reloaded.
type Index struct {
	assignments map[string]Assignment
	categories  map[string]Category
}

// NewIndex builds a lookup over the full assignment set and category table.
func NewIndex(assignments []Assignment, categories []Category) *Index {
	ix := &Index{
		assignments: make(map[string]Assignment, len(assignments)),
		categories:  make(map[string]Category, len(categories)),
	}
	for _, a := range assignments {
		ix.assignments[a.AssignmentID] = a
	}
	for _, c := range categories {
		ix.categories[c.CategoryID] = c
	}
	return ix
}

// Assignment returns the assignment with the given id.
func (ix *Index) Assignment(id string) (Assignment, bool) {
	if ix == nil || id == "" {
		return Assignment{}, false
	}
	a, ok := ix.assignments[id]
	return a, ok
}

// Callsign resolves a linked assignment id to its callsign, or UnknownCallsign.
func (ix *Index) Callsign(id string) string {
	if a, ok := ix.Assignment(id); ok {
		return a.Callsign
	}
	return UnknownCallsign
}

// CategoryName returns the name of a category id, or "Unknown".
func (ix *Index) CategoryName(id string) string {
	if ix != nil {
		if c, ok := ix.categories[id]; ok {
			return c.Name
		}
	}
	return "Unknown"
}

var callsignPattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)

// ShortCallsign compresses a callsign to first letter, last letter and number:
// FALCON01 becomes FN01. Callsigns of another shape are cut to four characters.
func ShortCallsign(callsign string) string {
	m := callsignPattern.FindStringSubmatch(callsign)
	if m == nil {
		if len(callsign) > 4 {
			return callsign[:4]
		}
		return callsign
	}
	word := strings.ToUpper(m[1])
	return word[:1] + word[len(word)-1:] + m[2]
}

// FormatFuelLbs renders a fuel quantity compactly: 142000 becomes "142k".
func FormatFuelLbs(lbs int) string {
	if lbs >= 1000 {
		return strconv.Itoa(int(float64(lbs)/1000+0.5)) + "k"
	}
	return strconv.Itoa(lbs)
}
