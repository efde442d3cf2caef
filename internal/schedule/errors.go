package schedule

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMalformed       = errors.New("malformed value")
	ErrOutOfRange      = errors.New("value out of range")
	ErrNotInVocabulary = errors.New("value not in vocabulary")
)

// ValidationError reports a feed field that does not match its expected grammar
// or vocabulary. It is scoped to a single row: ingestion drops the row and moves on.
type ValidationError struct {
	Title string // course title of the offending row, when known
	Field string
	Value string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Title != "" {
		fmt.Fprintf(&b, "%s: ", e.Title)
	}
	fmt.Fprintf(&b, "%s %q", e.Field, e.Value)
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, value, msg string, cause error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Msg: msg, Err: cause}
}

// withTitle attaches the row title to a validation error that does not carry one yet.
func withTitle(err error, title string) error {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Title == "" {
		ve.Title = title
	}
	return err
}

// IsRecoverable reports whether err is row-scoped and the row can be skipped.
func IsRecoverable(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PayloadError means the feed as a whole could not be used: the fetch failed
// or the body is not the expected JSON document. It carries everything the
// fetcher handed over so the failure can be diagnosed.
type PayloadError struct {
	Body   []byte
	Header http.Header
	Status int
	Err    error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("feed payload rejected (status %d, %d bytes): %v", e.Status, len(e.Body), e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }
