package question

import (
	"errors"
	"fmt"
)

// ErrQuestionNotFound is returned by a QuestionStore when no record matches.
var ErrQuestionNotFound = errors.New("question not found")

// Causes attached to InvalidArgument errors about a single request field.
var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidOption = errors.New("invalid option")
)

// Kind classifies failures so callers can handle each one explicitly.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidArgument
	NotFound
	UpstreamServiceError
	ResponseParseError
	StorageError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case UpstreamServiceError:
		return "upstream_service_error"
	case ResponseParseError:
		return "response_parse_error"
	case StorageError:
		return "storage_error"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the operation that failed. Field names the
// offending request field when one is to blame.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindUnknown
}

// FieldOf returns the request field err blames, if any.
func FieldOf(err error) string {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Field
	}
	return ""
}

// IsUpstream reports whether err came from the AI text generator.
// ResponseParseError propagates the same way as UpstreamServiceError.
func IsUpstream(err error) bool {
	switch KindOf(err) {
	case UpstreamServiceError, ResponseParseError:
		return true
	}
	return false
}

// Message returns the human readable part of err, without the operation prefix.
func Message(err error) string {
	var qe *Error
	if errors.As(err, &qe) && qe.Msg != "" {
		return qe.Msg
	}
	return err.Error()
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Kind: InvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalidField(op, field, format string, args ...any) error {
	return &Error{Kind: InvalidArgument, Op: op, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func missingField(op, field string) error {
	return &Error{Kind: InvalidArgument, Op: op, Field: field, Msg: field + " is required", Err: ErrMissingField}
}

func invalidOption(op, format string, args ...any) error {
	return &Error{Kind: InvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidOption}
}

func notFound(op, msg string, err error) error {
	return &Error{Kind: NotFound, Op: op, Msg: msg, Err: err}
}

func upstream(op, msg string, err error) error {
	return &Error{Kind: UpstreamServiceError, Op: op, Msg: msg, Err: err}
}

func parseFailure(op, msg string, err error) error {
	return &Error{Kind: ResponseParseError, Op: op, Msg: msg, Err: err}
}

func storage(op, msg string, err error) error {
	return &Error{Kind: StorageError, Op: op, Msg: msg, Err: err}
}
