package bloom

// Result is the outcome of a filter stage, ordered by increasing certainty.
type Result int

// Filter result values.
const (
	// Unknown means no test has been run yet.
	Unknown Result = iota
	// NotFound means membership was disproved.
	NotFound
	// MayExist means membership could not be disproved.
	MayExist
	// Found means an exact predicate confirmed the match.
	Found
)

// String returns the lowercase name of the result.
func (r Result) String() string {
	switch r {
	case Unknown:
		return "unknown"
	case NotFound:
		return "not_found"
	case MayExist:
		return "may_exist"
	case Found:
		return "found"
	default:
		return "invalid"
	}
}

// IsValid checks if the result is one of the four defined values.
func (r Result) IsValid() bool {
	return r >= Unknown && r <= Found
}
