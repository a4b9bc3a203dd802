package analysis

import "errors"

var (
	// ErrNoRecords is returned when the engine is given an empty record set.
	ErrNoRecords = errors.New("analysis: no records")
	// ErrInvalidConfig wraps the site configuration's validation errors.
	ErrInvalidConfig = errors.New("analysis: invalid configuration")
	// ErrNoSavings marks an ROI section that cannot be computed because the
	// annual savings are not positive.
	ErrNoSavings = errors.New("analysis: no savings to compute ROI")
)

// noSavingsMessage is the error text carried inside the ROI section.
const noSavingsMessage = "No savings to compute ROI"
