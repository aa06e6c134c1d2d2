package swara

import (
	"fmt"
	"math"
)

// Note is one tonic-relative pitch judgement: the nearest swara, its saptak,
// and the signed deviation from that swara in cents. Exactly one of
// IsPerfect, IsFlat and IsSharp is true; the tolerance boundary itself
// counts as perfect.
type Note struct {
	Swara          string  `json:"swara"`
	Octave         Octave  `json:"octave"`
	CentsDeviation float64 `json:"cents_deviation"`
	IsPerfect      bool    `json:"is_perfect"`
	IsFlat         bool    `json:"is_flat"`
	IsSharp        bool    `json:"is_sharp"`
}

// Multipliers aligned with the Octave constants: Mandra, Madhya, Taar.
var octaveMultipliers = [3]float64{0.5, 1.0, 2.0}

// Mapper converts frequencies into tonic-relative Notes using an exhaustive
// search over every (swara, octave) candidate in its ratio table. The search
// is O(table size x 3) per call and needs no boundary special-casing: a
// frequency halfway between two candidates simply loses the |cents|
// comparison to whichever candidate the iteration reaches first (lower table
// index, then lower octave).
type Mapper struct {
	tonicHz        float64
	toleranceCents float64
	system         System
	table          []Entry
}

// NewMapper creates a mapper for the given tonic ("Sa") frequency.
// toleranceCents is the half-width of the band around each swara that
// counts as singing it perfectly.
func NewMapper(tonicHz, toleranceCents float64, system System) (*Mapper, error) {
	if tonicHz <= 0 {
		return nil, fmt.Errorf("tonic frequency must be positive, got %v", tonicHz)
	}
	if toleranceCents <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %v cents", toleranceCents)
	}
	switch system {
	case JustIntonation, TwentyTwoShruti:
	default:
		return nil, fmt.Errorf("unknown tuning system: %d", system)
	}

	return &Mapper{
		tonicHz:        tonicHz,
		toleranceCents: toleranceCents,
		system:         system,
		table:          TableFor(system),
	}, nil
}

// TonicHz returns the Sa reference frequency.
func (m *Mapper) TonicHz() float64 {
	return m.tonicHz
}

// ToleranceCents returns the perfect-band half-width.
func (m *Mapper) ToleranceCents() float64 {
	return m.toleranceCents
}

// TuningSystem returns the active ratio-table selection.
func (m *Mapper) TuningSystem() System {
	return m.system
}

// Map finds the swara and octave nearest to frequencyHz.
func (m *Mapper) Map(frequencyHz float64) (Note, error) {
	if frequencyHz <= 0 {
		return Note{}, fmt.Errorf("frequency must be positive, got %v", frequencyHz)
	}

	bestAbs := math.Inf(1)
	var best Note
	for _, entry := range m.table {
		for oct, mult := range octaveMultipliers {
			cand := m.tonicHz * entry.Ratio * mult
			cents := 1200 * math.Log2(frequencyHz/cand)
			if abs := math.Abs(cents); abs < bestAbs {
				bestAbs = abs
				best = Note{
					Swara:          entry.Label,
					Octave:         Octave(oct),
					CentsDeviation: cents,
				}
			}
		}
	}

	best.IsPerfect = bestAbs <= m.toleranceCents
	best.IsFlat = best.CentsDeviation < -m.toleranceCents
	best.IsSharp = best.CentsDeviation > m.toleranceCents
	return best, nil
}

// FrequencyForSwara returns the middle-octave (Madhya) frequency of the
// labeled swara, or false when the label is not in the active table. Both
// names of an enharmonic pair resolve, to the same frequency.
func (m *Mapper) FrequencyForSwara(label string) (float64, bool) {
	for _, entry := range m.table {
		if entry.Label == label {
			return m.tonicHz * entry.Ratio, true
		}
	}
	return 0, false
}

// AvailableSwaras returns the distinct swara labels of the active table in
// table order. Enharmonic duplicates collapse onto their first label, so
// just intonation yields 12 names and the 22-shruti table yields 21.
func (m *Mapper) AvailableSwaras() []string {
	seen := make(map[float64]bool, len(m.table))
	labels := make([]string, 0, len(m.table))
	for _, entry := range m.table {
		if seen[entry.Ratio] {
			continue
		}
		seen[entry.Ratio] = true
		labels = append(labels, entry.Label)
	}
	return labels
}

// FormatWithOctave renders a note in the conventional saptak notation:
// a leading dot for Mandra (".P"), bare for Madhya ("P"), a trailing
// apostrophe for Taar ("P'").
func FormatWithOctave(n Note) string {
	switch n.Octave {
	case Mandra:
		return "." + n.Swara
	case Taar:
		return n.Swara + "'"
	default:
		return n.Swara
	}
}
