package diag

// Severity ranks a diagnostic. Only SevError blocks code generation;
// warnings and notes ride along in the report.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// String returns the uppercase label the renderers print.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
