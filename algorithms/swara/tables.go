package swara

import (
	"fmt"
	"strings"
)

// System selects the ratio table used to map frequencies onto swaras.
type System int

const (
	// JustIntonation is the common 12-tone just-intonation set used for
	// everyday practice feedback.
	JustIntonation System = iota
	// TwentyTwoShruti is the traditional 22-shruti set; finer komal/teevra
	// gradations of the same scale degrees.
	TwentyTwoShruti
)

func (s System) String() string {
	switch s {
	case JustIntonation:
		return "just_intonation"
	case TwentyTwoShruti:
		return "twenty_two_shruti"
	default:
		return "unknown"
	}
}

// ParseSystem maps a user-facing name onto a System. It accepts the String
// forms and the short names used on the command line.
func ParseSystem(name string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ji", "just", "just_intonation":
		return JustIntonation, nil
	case "22", "shruti", "22shruti", "twenty_two_shruti":
		return TwentyTwoShruti, nil
	default:
		return JustIntonation, fmt.Errorf("unknown tuning system %q", name)
	}
}

// Octave is the saptak register relative to the singer's tonic.
type Octave int

const (
	Mandra Octave = iota // below the tonic octave
	Madhya               // the tonic octave
	Taar                 // above the tonic octave
)

func (o Octave) String() string {
	switch o {
	case Mandra:
		return "mandra"
	case Madhya:
		return "madhya"
	case Taar:
		return "taar"
	default:
		return "unknown"
	}
}

// Entry pairs a swara label with its frequency ratio relative to Sa.
type Entry struct {
	Label string
	Ratio float64
}

// The 12-tone just-intonation scale. Lowercase labels are komal variants,
// uppercase shuddha; M is teevra Ma.
var justIntonationTable = []Entry{
	{"S", 1.0 / 1.0},
	{"r", 16.0 / 15.0},
	{"R", 9.0 / 8.0},
	{"g", 6.0 / 5.0},
	{"G", 5.0 / 4.0},
	{"m", 4.0 / 3.0},
	{"M", 45.0 / 32.0},
	{"P", 3.0 / 2.0},
	{"d", 8.0 / 5.0},
	{"D", 5.0 / 3.0},
	{"n", 16.0 / 9.0},
	{"N", 15.0 / 8.0},
}

// The traditional 22-shruti ratio set. g1 and R3 are the documented
// enharmonic pair: two names, one ratio, so the table carries 22 labels
// over 21 distinct pitches.
var twentyTwoShrutiTable = []Entry{
	{"S", 1.0 / 1.0},
	{"r1", 256.0 / 243.0},
	{"r2", 16.0 / 15.0},
	{"R1", 10.0 / 9.0},
	{"R2", 9.0 / 8.0},
	{"g1", 32.0 / 27.0},
	{"R3", 32.0 / 27.0}, // enharmonic with g1
	{"g2", 6.0 / 5.0},
	{"G1", 5.0 / 4.0},
	{"G2", 81.0 / 64.0},
	{"m1", 4.0 / 3.0},
	{"M1", 45.0 / 32.0},
	{"M2", 729.0 / 512.0},
	{"P", 3.0 / 2.0},
	{"d1", 128.0 / 81.0},
	{"d2", 8.0 / 5.0},
	{"D1", 5.0 / 3.0},
	{"D2", 27.0 / 16.0},
	{"n1", 16.0 / 9.0},
	{"n2", 9.0 / 5.0},
	{"N1", 15.0 / 8.0},
	{"N2", 243.0 / 128.0},
}

// TableFor returns a copy of the ratio table for the given tuning system.
// Unknown systems fall back to just intonation.
func TableFor(system System) []Entry {
	src := justIntonationTable
	if system == TwentyTwoShruti {
		src = twentyTwoShrutiTable
	}
	table := make([]Entry, len(src))
	copy(table, src)
	return table
}
