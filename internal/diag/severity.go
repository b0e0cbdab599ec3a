package diag

// Severity orders diagnostics; a unit or class fails on SevError only.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// Fails reports whether the severity aborts the unit or class it belongs to.
func (s Severity) Fails() bool { return s >= SevError }
