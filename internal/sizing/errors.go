package sizing

import "errors"

var (
	// ErrNoUnit means a length had no unit and no default was in effect.
	ErrNoUnit = errors.New("no unit specified")
	// ErrUnrecognizedUnit means the unit token is not in the grammar.
	ErrUnrecognizedUnit = errors.New("unrecognized unit")
	// ErrNoValue means no numeric value could be read from the input.
	ErrNoValue = errors.New("no value specified")
	// ErrNotIsoPaper means the input does not look like an ISO designator at
	// all; callers fall through to the custom-size grammar.
	ErrNotIsoPaper = errors.New("not an ISO paper designator")
	// ErrInvalidIsoRank means the designator's rank is outside [0, 13].
	ErrInvalidIsoRank = errors.New("invalid ISO paper rank")
	// ErrInvalidIsoSeries means the series letter is not A, B or C.
	ErrInvalidIsoSeries = errors.New("invalid ISO paper series")
)
