package periodicity

import "errors"

// Validation errors returned at construction. They are matched with
// errors.Is; call sites wrap them with additional context.
var (
	// ErrPeriodType reports an unrecognized periodicity kind.
	ErrPeriodType = errors.New("periodicity: invalid period type")

	// ErrAxis reports a zero axis vector, a wrong vector count, or parallel
	// axes for 2D periodicity.
	ErrAxis = errors.New("periodicity: invalid axis")

	// ErrAxisParse reports an axis configuration string that cannot be
	// converted to an integer vector.
	ErrAxisParse = errors.New("periodicity: axis not convertible to an integer vector")

	// ErrAxisMissing reports a periodicity kind that requires an axis when
	// none was supplied.
	ErrAxisMissing = errors.New("periodicity: axis required but not supplied")
)
