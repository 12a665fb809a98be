package key

// Camelot wheel positions by tonic pitch class. Majors carry the B
// suffix, minors the A suffix; adjacent numbers are a fifth apart, which
// is what makes neighboring codes harmonically mixable.
var (
	camelotMajor = [12]string{"8B", "3B", "10B", "5B", "12B", "7B", "2B", "9B", "4B", "11B", "6B", "1B"}
	camelotMinor = [12]string{"5A", "12A", "7A", "2A", "9A", "4A", "11A", "6A", "1A", "8A", "3A", "10A"}
)

// CamelotCode returns the wheel position for a key, e.g. (0, ModeMajor)
// is C major = "8B". Out-of-range pitch classes return an empty string.
func CamelotCode(pitchClass int, mode Mode) string {
	if pitchClass < 0 || pitchClass > 11 {
		return ""
	}
	if mode == ModeMinor {
		return camelotMinor[pitchClass]
	}
	return camelotMajor[pitchClass]
}
