package model

// DetectionStatus is the outcome of running the test suite against one mutant.
type DetectionStatus int

// Available DetectionStatus values. StatusUnknown means no evaluation data
// exists for the mutation yet.
const (
	StatusUnknown DetectionStatus = iota
	StatusDetected
	StatusUndetected
	StatusCrashed
	StatusTimeout
)

// String returns the status name used as a CSS class in rendered markup.
// StatusUnknown renders as the empty string, matching the absence of a marker.
func (s DetectionStatus) String() string {
	switch s {
	case StatusDetected:
		return "detected"
	case StatusUndetected:
		return "undetected"
	case StatusCrashed:
		return "crashed"
	case StatusTimeout:
		return "timeout"
	default:
		return ""
	}
}

// DetectionStatusFromRune decodes one character of the detection matrix.
func DetectionStatusFromRune(r rune) DetectionStatus {
	switch r {
	case 'D':
		return StatusDetected
	case '-':
		return StatusUndetected
	case 'C':
		return StatusCrashed
	case 'T':
		return StatusTimeout
	default:
		return StatusUnknown
	}
}

// DecodeDetectionMatrix expands the per-run detection matrix (one character
// per mutation, indexed by mutation id) into a dense status slice of length
// count. Mutations past the end of the matrix get StatusUnknown.
func DecodeDetectionMatrix(matrix string, count int) []DetectionStatus {
	statuses := make([]DetectionStatus, count)

	for i, r := range []rune(matrix) {
		if i >= count {
			break
		}

		statuses[i] = DetectionStatusFromRune(r)
	}

	return statuses
}

// Mutation is one candidate code change produced by the mutation engine,
// combined with its detection outcome. Produced once from the result set and
// immutable thereafter; owned by the Conflict it is grouped into.
type Mutation struct {
	ID          int
	Op          string
	DisplayName string
	Span        Span
	Replacement string
	Status      DetectionStatus
	TargetID    int
}

// StartLine returns the 0-based first line touched by the mutation.
func (mu Mutation) StartLine() int { return mu.Span.Begin.Line }

// EndLine returns the 0-based last line touched by the mutation.
func (mu Mutation) EndLine() int { return mu.Span.End.Line }
