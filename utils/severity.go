package utils

// Severity is the 0–3 ordinal scale the protocol engine reasons on.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}
	return "unknown"
}

// ParseSeverity reads the ordinal name as sent by clients.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "none":
		return SeverityNone, true
	case "mild":
		return SeverityMild, true
	case "moderate":
		return SeverityModerate, true
	case "severe":
		return SeveritySevere, true
	}
	return 0, false
}

// SeverityFromScore buckets the persisted 1–10 symptom score onto the ordinal
// scale: ≤2 none, ≤4 mild, ≤7 moderate, above severe. The mapping is lossy:
// a stored 6 and a stored 7 are both "moderate" and cannot be told apart after
// a round trip through the engine.
func SeverityFromScore(score int) Severity {
	switch {
	case score <= 2:
		return SeverityNone
	case score <= 4:
		return SeverityMild
	case score <= 7:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// ScoreFromSeverity is the fixed inverse used on writes. Round-tripping a score
// through SeverityFromScore and back lands on these representatives, not the
// original value.
func ScoreFromSeverity(s Severity) int {
	switch s {
	case SeverityNone:
		return 1
	case SeverityMild:
		return 3
	case SeverityModerate:
		return 6
	default:
		return 9
	}
}
