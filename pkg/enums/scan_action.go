package enums

import "fmt"

// ScanAction maps to the scan_action enum in Postgres.
type ScanAction string

const (
	ScanActionAdd    ScanAction = "add"
	ScanActionRemove ScanAction = "remove"
)

var validScanActions = []ScanAction{
	ScanActionAdd,
	ScanActionRemove,
}

// String implements fmt.Stringer.
func (s ScanAction) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScanAction.
func (s ScanAction) IsValid() bool {
	for _, candidate := range validScanActions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScanAction converts raw strings into ScanAction. Empty input
// defaults to add, matching what scanner firmware omits.
func ParseScanAction(value string) (ScanAction, error) {
	if value == "" {
		return ScanActionAdd, nil
	}
	for _, candidate := range validScanActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid scan action %q", value)
}
