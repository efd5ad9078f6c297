package runner

// Status represents the outcome of one unit in a batch run.
type Status int

const (
	// StatusSucceeded indicates the unit was normalized and its env file
	// written.
	StatusSucceeded Status = iota

	// StatusFailed indicates the unit was attempted and something went
	// wrong; the outcome message carries the failure.
	StatusFailed

	// StatusSkipped indicates the unit was never attempted: an
	// unrecognizable unit directory, or a configured package with no
	// directory on a scanned platform.
	StatusSkipped
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Symbol returns the visual symbol for a Status, padded to a uniform
// display width for aligned report columns.
func (s Status) Symbol() string {
	switch s {
	case StatusSucceeded:
		return "✔ "
	case StatusFailed:
		return "❌"
	case StatusSkipped:
		return "❓"
	default:
		return "❓"
	}
}
