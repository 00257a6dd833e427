package domain

// Outcome enumerates the documented results of a service operation.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeValidationFailed
	OutcomeNotFound
	OutcomeConflict
	OutcomeUnexpectedFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeConflict:
		return "conflict"
	case OutcomeUnexpectedFailure:
		return "unexpected_failure"
	}
	return "unknown"
}

// Result carries either a value (OutcomeSuccess) or one of the expected
// failure outcomes with a message. Business outcomes are never reported
// through error returns.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Message string
}

func Success[T any](value T) Result[T] {
	return Result[T]{Outcome: OutcomeSuccess, Value: value}
}

func ValidationFailed[T any](message string) Result[T] {
	return Result[T]{Outcome: OutcomeValidationFailed, Message: message}
}

func NotFound[T any]() Result[T] {
	return Result[T]{Outcome: OutcomeNotFound, Message: "not found"}
}

func Conflict[T any](message string) Result[T] {
	return Result[T]{Outcome: OutcomeConflict, Message: message}
}

func UnexpectedFailure[T any](message string) Result[T] {
	return Result[T]{Outcome: OutcomeUnexpectedFailure, Message: message}
}

func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeSuccess
}
