package pattern

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var noteExpr = regexp.MustCompile(`^([A-G])([#B]?)(-?\d{1,2})$`)

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ParseNote converts a note name such as "C4", "D#4" or "Eb4" to a pitch
// number, where A4 is 69. The boolean is false for malformed names.
func ParseNote(name string) (int, bool) {
	m := noteExpr.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(name)))
	if m == nil {
		return 0, false
	}
	semi := semitones[m[1][0]]
	switch m[2] {
	case "#":
		semi++
	case "B":
		semi--
	}
	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, false
	}
	return 12*(octave+1) + semi, true
}

// ParseNotes splits s on commas and whitespace and returns the pitches of the
// valid note names, in order. Malformed names are skipped.
func ParseNotes(s string) []int {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return parseNames(fields)
}

func parseNames(names []string) []int {
	var pitches []int
	for _, name := range names {
		if p, ok := ParseNote(name); ok {
			pitches = append(pitches, p)
		}
	}
	return pitches
}

// NoteName returns the sharp-spelled label of a pitch, e.g. 61 -> "C#4".
func NoteName(pitch int) string {
	octave := pitch/12 - 1
	if pitch < 0 && pitch%12 != 0 {
		octave--
	}
	return noteNames[((pitch%12)+12)%12] + strconv.Itoa(octave)
}

// Scales are the named note lists that can be applied to the grid rows.
var Scales = map[string][]string{
	"C_MAJOR":     {"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"},
	"A_NAT_MINOR": {"A3", "B3", "C4", "D4", "E4", "F4", "G4", "A4"},
	"C_MIN_PENT":  {"C4", "EB4", "F4", "G4", "BB4", "C5", "EB5", "F5"},
	"C_MAJ7_ARP":  {"C4", "E4", "G4", "B4", "C5", "E5", "G5", "B5"},
	"C_CHROMATIC": {"C4", "C#4", "D4", "D#4", "E4", "F4", "F#4", "G4"},
}
