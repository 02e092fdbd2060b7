package domain

import "fmt"

// MeasurementFamily selects which unit table a session compares in
type MeasurementFamily string

const (
	// FamilyUnset means no family has been chosen for the session yet
	FamilyUnset MeasurementFamily = ""

	// FamilyDry compares by weight, base unit gram
	FamilyDry MeasurementFamily = "Dry"

	// FamilyLiquid compares by volume, base unit milliliter
	FamilyLiquid MeasurementFamily = "Liquid"
)

// Families lists the selectable families in display order
var Families = []MeasurementFamily{FamilyDry, FamilyLiquid}

// ParseFamily converts a user or document value into a MeasurementFamily.
// Only the exact names "Dry" and "Liquid" are accepted.
func ParseFamily(s string) (MeasurementFamily, error) {
	switch MeasurementFamily(s) {
	case FamilyDry:
		return FamilyDry, nil
	case FamilyLiquid:
		return FamilyLiquid, nil
	default:
		return FamilyUnset, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
	}
}

// IsSet reports whether a family has been chosen
func (f MeasurementFamily) IsSet() bool {
	return f != FamilyUnset
}

func (f MeasurementFamily) String() string {
	if f == FamilyUnset {
		return "Unset"
	}
	return string(f)
}
