package timescale

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func clock(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-14 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBaseMapIsLinearOverDay(t *testing.T) {
	s := New(clock("06:00"), clock("18:00"), 1200, Identity)
	cases := map[string]float64{
		"06:00": 0,
		"12:00": 600,
		"18:00": 1200,
		"09:00": 300,
	}
	for hhmm, want := range cases {
		if got := s.PositionOf(clock(hhmm)); math.Abs(got-want) > 1e-9 {
			t.Fatalf("PositionOf(%s) = %f, want %f", hhmm, got, want)
		}
	}
}

func TestTransformComposesWithBaseMap(t *testing.T) {
	s := New(clock("06:00"), clock("18:00"), 1200, Transform{K: 2, X: -300})
	// base(09:00) = 300 -> -300 + 2*300 = 300
	if got := s.PositionOf(clock("09:00")); math.Abs(got-300) > 1e-9 {
		t.Fatalf("expected 300, got %f", got)
	}
}

func TestRoundTripAcrossTransforms(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start, end := clock("06:00"), clock("18:00")
	for i := 0; i < 500; i++ {
		tr := Transform{K: 1 + rng.Float64()*40, X: -rng.Float64() * 20000}
		width := 200 + rng.Float64()*2000
		s := New(start, end, width, tr)
		instant := start.Add(time.Duration(rng.Int63n(int64(end.Sub(start)))))
		back := s.InstantOf(s.PositionOf(instant))
		if diff := back.Sub(instant); diff > time.Microsecond || diff < -time.Microsecond {
			t.Fatalf("round trip drifted by %s (k=%f x=%f width=%f)", diff, tr.K, tr.X, width)
		}
	}
}

func TestDegenerateDomainFallsBackToPixelsPerMinute(t *testing.T) {
	s := New(clock("06:00"), clock("06:00"), 1200, Identity)
	if got := s.PositionOf(clock("06:30")); math.Abs(got-30) > 1e-9 {
		t.Fatalf("expected 30px for 30 minutes, got %f", got)
	}
	if got := s.InstantOf(45); !got.Equal(clock("06:45")) {
		t.Fatalf("expected 06:45, got %s", got)
	}
	if s.Hours() != 0 {
		t.Fatalf("expected zero hours for degenerate domain")
	}
}

func TestZeroWidthUsesDefault(t *testing.T) {
	s := New(clock("06:00"), clock("18:00"), 0, Identity)
	if s.Width() != DefaultWidth {
		t.Fatalf("expected default width, got %f", s.Width())
	}
	if got := s.PositionOf(clock("18:00")); math.Abs(got-DefaultWidth) > 1e-9 {
		t.Fatalf("expected day end at default width, got %f", got)
	}
}

func TestScaleAtKeepsAnchorFixed(t *testing.T) {
	tr := Transform{K: 1.5, X: -120}
	next := tr.ScaleAt(4, 333)
	if math.Abs(next.Invert(333)-tr.Invert(333)) > 1e-9 {
		t.Fatalf("anchor moved: before %f after %f", tr.Invert(333), next.Invert(333))
	}
}

func TestHourMarks(t *testing.T) {
	marks := HourMarks(clock("06:20"), clock("09:00"))
	want := []string{"07:00", "08:00", "09:00"}
	if len(marks) != len(want) {
		t.Fatalf("expected %d marks, got %v", len(want), marks)
	}
	for i, w := range want {
		if !marks[i].Equal(clock(w)) {
			t.Fatalf("mark %d = %s, want %s", i, marks[i], w)
		}
	}

	aligned := HourMarks(clock("06:00"), clock("08:30"))
	if len(aligned) != 3 || !aligned[0].Equal(clock("06:00")) {
		t.Fatalf("expected aligned start to be included, got %v", aligned)
	}

	if got := HourMarks(clock("09:00"), clock("08:00")); got != nil {
		t.Fatalf("expected no marks for reversed range, got %v", got)
	}
}

func TestHourMarksRespectLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2025, 3, 14, 6, 10, 0, 0, loc)
	marks := HourMarks(start, start.Add(2*time.Hour))
	if len(marks) != 2 || marks[0].Hour() != 7 || marks[0].Minute() != 0 {
		t.Fatalf("expected local whole hours, got %v", marks)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatHHMMSS(clock("06:45")); got != "064500" {
		t.Fatalf("FormatHHMMSS = %q", got)
	}
	cases := []struct {
		start, end string
		want       string
	}{
		{"08:00", "10:05", "2h 5m"},
		{"08:00", "08:45", "45m"},
		{"08:00", "11:00", "3h"},
	}
	for _, c := range cases {
		if got := FormatDuration(clock(c.start), clock(c.end)); got != c.want {
			t.Fatalf("FormatDuration(%s, %s) = %q, want %q", c.start, c.end, got, c.want)
		}
	}
}
