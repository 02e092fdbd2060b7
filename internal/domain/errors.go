package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingUnitType is returned when a calculation runs before a family is chosen
	ErrMissingUnitType = errors.New("no unit type selected for the session")

	// ErrUnknownFamily is returned for a family name other than Dry or Liquid
	ErrUnknownFamily = errors.New("unknown unit type")

	// ErrTypeMismatch is returned when a different family is selected after the session locked
	ErrTypeMismatch = errors.New("session is locked to another unit type")

	// ErrRowValidation is wrapped by every RowError
	ErrRowValidation = errors.New("invalid product row")

	// ErrInvalidFormat is returned when a session document has the wrong structure
	ErrInvalidFormat = errors.New("invalid session file format")

	// ErrParse is returned when a session document cannot be decoded at all
	ErrParse = errors.New("failed to parse session file")

	// ErrPersistence is returned when the filesystem fails during save or load
	ErrPersistence = errors.New("session persistence failed")

	// ErrNoSessionPath is returned when saving without a path and none was established
	ErrNoSessionPath = errors.New("no session file path established")

	// ErrRowIndex is returned when a row index is out of range
	ErrRowIndex = errors.New("row index out of range")

	// ErrLastRow is returned when removing the only remaining row
	ErrLastRow = errors.New("cannot remove the last row, reset the session instead")

	// ErrNoLastSession is returned when the last-session pointer is absent or empty
	ErrNoLastSession = errors.New("no last session recorded")
)

// RowError describes why a single product row was excluded from ranking
type RowError struct {
	Row    int    `json:"row"` // 0-based position in the session
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row+1, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrRowValidation
}
