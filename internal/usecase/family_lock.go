package usecase

import (
	"fmt"

	"github.com/unitcost/backend/internal/domain"
	"github.com/unitcost/backend/internal/units"
)

// LockState is the measurement-family lock of a session: Unset or Locked(family).
// The only way back to Unset is discarding the session's entries.
type LockState struct {
	family domain.MeasurementFamily
}

// LockStateOf reads the lock state of a session
func LockStateOf(session *domain.Session) LockState {
	return LockState{family: session.Family}
}

// Locked reports whether a family has been committed
func (s LockState) Locked() bool {
	return s.family.IsSet()
}

// Family returns the locked family, or FamilyUnset
func (s LockState) Family() domain.MeasurementFamily {
	return s.family
}

func (s LockState) String() string {
	if !s.Locked() {
		return "Unset"
	}
	return fmt.Sprintf("Locked(%s)", s.family)
}

// Capabilities tells an interactive surface which actions are currently allowed
type Capabilities struct {
	CanSelectFamily bool `json:"canSelectFamily"`
	CanAddRow       bool `json:"canAddRow"`
	CanRemoveRow    bool `json:"canRemoveRow"`
	CanCalculate    bool `json:"canCalculate"`
}

// CapabilitiesOf derives the enabled actions from the lock state and row count
func CapabilitiesOf(session *domain.Session) Capabilities {
	locked := LockStateOf(session).Locked()
	return Capabilities{
		CanSelectFamily: !locked,
		CanAddRow:       locked,
		CanRemoveRow:    len(session.Products) > 1,
		CanCalculate:    locked,
	}
}

// SelectFamily applies a family selection made on one row.
//
// Unset -> Locked(f): every row takes f.
// Locked(f), f selected again: no change besides the row's unit check.
// Locked(f), g selected: the row reverts to f and ErrTypeMismatch is returned.
//
// The selected row's unit is cleared when it is not a symbol of the family.
// It reports whether the session changed.
func SelectFamily(session *domain.Session, row int, family domain.MeasurementFamily) (bool, error) {
	if row < 0 || row >= len(session.Products) {
		return false, fmt.Errorf("%w: %d", domain.ErrRowIndex, row)
	}
	if _, err := domain.ParseFamily(string(family)); err != nil {
		return false, err
	}

	state := LockStateOf(session)
	changed := false

	switch {
	case !state.Locked():
		session.Family = family
		for i := range session.Products {
			session.Products[i].UnitType = string(family)
		}
		changed = true
	case state.Family() != family:
		entry := &session.Products[row]
		reverted := entry.UnitType != string(state.Family())
		entry.UnitType = string(state.Family())
		return reverted, fmt.Errorf("%w: locked to %s, selected %s",
			domain.ErrTypeMismatch, state.Family(), family)
	}

	entry := &session.Products[row]
	if entry.UnitType != string(family) {
		entry.UnitType = string(family)
		changed = true
	}
	if entry.Unit != "" {
		if _, ok := units.Lookup(family, entry.Unit); !ok {
			entry.Unit = ""
			changed = true
		}
	}

	return changed, nil
}
