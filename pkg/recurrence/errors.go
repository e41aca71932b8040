package recurrence

import "errors"

var (
	// ErrMissingRepeatModifier is returned when a RuleSpec names no repetition keyword.
	ErrMissingRepeatModifier = errors.New("missing repeat modifier")
	// ErrInvalidRecurrenceType is returned when a unit, weekday or period is not legal for the keyword.
	ErrInvalidRecurrenceType = errors.New("invalid recurrence type")
	ErrMissingPeriod         = errors.New("missing period")
	ErrMissingInterval       = errors.New("missing interval")
	ErrInvalidInterval       = errors.New("interval must be a positive integer")
	// ErrConflictingRepeatModifiers is returned when a RuleSpec names more than one keyword.
	ErrConflictingRepeatModifiers = errors.New("conflicting repeat modifiers")

	// ErrUnsupportedIteration is yielded when iterating a rule that has no stepping algorithm.
	ErrUnsupportedIteration = errors.New("iteration is not supported for this rule")
	// ErrNonexistentDate is yielded when a yearly step lands on February 29 of a non-leap year.
	ErrNonexistentDate = errors.New("step lands on a nonexistent date")
	// ErrNonAdvancingStep signals a broken iterator invariant. It is only ever raised with panic.
	ErrNonAdvancingStep = errors.New("iteration step did not advance")
)
