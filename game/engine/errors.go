package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDimension    = errors.New("invalid grid dimension")
	ErrGridTooLarge        = errors.New("grid dimension exceeds the supported maximum")
	ErrOutOfBounds         = errors.New("position is out of grid")
	ErrPositionOccupied    = errors.New("position is occupied")
	ErrGridFull            = errors.New("grid is full")
	ErrUnsupportedCommand  = errors.New("unsupported command")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrRobotNotFound       = errors.New("robot not found")
	ErrNotMaterialized     = errors.New("board has not been materialized")
	ErrAlreadyMaterialized = errors.New("board has already been materialized")
	ErrInvalidCount        = errors.New("invalid entity count")
)

// Error carries the context of a failed engine operation. It unwraps to one of
// the sentinel errors above so callers can match with errors.Is.
type Error struct {
	Kind       error
	Op         string
	RobotID    string
	Coordinate *Coordinate
	Detail     string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Coordinate != nil {
		fmt.Fprintf(&b, " at %s", e.Coordinate)
	}
	if e.RobotID != "" {
		fmt.Fprintf(&b, " (robot %s)", e.RobotID)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// ErrorCode returns a short machine-friendly code for an engine error, or "" if
// err is not one of the engine's error kinds.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDimension):
		return "invalid_dimension"
	case errors.Is(err, ErrGridTooLarge):
		return "grid_too_large"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrPositionOccupied):
		return "position_occupied"
	case errors.Is(err, ErrGridFull):
		return "grid_full"
	case errors.Is(err, ErrUnsupportedCommand):
		return "unsupported_command"
	case errors.Is(err, ErrInvalidDirection):
		return "invalid_direction"
	case errors.Is(err, ErrRobotNotFound):
		return "robot_not_found"
	case errors.Is(err, ErrNotMaterialized):
		return "not_materialized"
	case errors.Is(err, ErrAlreadyMaterialized):
		return "already_materialized"
	case errors.Is(err, ErrInvalidCount):
		return "invalid_count"
	}
	return ""
}

func at(c Coordinate) *Coordinate {
	return &c
}
