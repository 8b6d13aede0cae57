package terminology

import (
	"errors"
	"sort"
	"strings"
)

// Error set keys that are not bound to a single field.
const (
	// NonFieldErrors carries the generic persist-clone marker.
	NonFieldErrors = "non_field_errors"
	// AllFields carries pre-check and integrity messages.
	AllFields = "__all__"
	// VersionCreatedBy carries the missing actor message.
	VersionCreatedBy = "version_created_by"
)

// Kinds of failure an ErrorSet can carry. Use errors.Is to test for them.
var (
	ErrMissingActor  = errors.New("terminology: missing acting user")
	ErrValidation    = errors.New("terminology: validation failed")
	ErrIntegrity     = errors.New("terminology: integrity violation")
	ErrPersistClone  = errors.New("terminology: nothing was committed")
	ErrAlreadyExists = errors.New("terminology: already exists")
	ErrNotFound      = errors.New("terminology: not found")
)

// ErrorSet maps field names to messages. A non-empty set returned from a
// mutation means nothing was committed.
type ErrorSet struct {
	Fields map[string][]string

	kinds []error
	cause error
}

// NewErrorSet creates an empty set tagged with the given kinds.
func NewErrorSet(kinds ...error) *ErrorSet {
	return &ErrorSet{Fields: map[string][]string{}, kinds: kinds}
}

// FieldError returns a set holding a single message for field.
func FieldError(kind error, field, msg string) *ErrorSet {
	return NewErrorSet(kind).Add(field, msg)
}

// Add appends msg under field and returns the set.
func (e *ErrorSet) Add(field, msg string) *ErrorSet {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// Mark tags the set with an additional kind.
func (e *ErrorSet) Mark(kind error) *ErrorSet {
	if !e.Is(kind) {
		e.kinds = append(e.kinds, kind)
	}
	return e
}

// WithCause records the underlying error, reachable through errors.Is/As.
func (e *ErrorSet) WithCause(err error) *ErrorSet {
	e.cause = err
	return e
}

// Merge folds other into e.
func (e *ErrorSet) Merge(other *ErrorSet) *ErrorSet {
	if other == nil {
		return e
	}
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
	for _, kind := range other.kinds {
		e.Mark(kind)
	}
	if e.cause == nil {
		e.cause = other.cause
	}
	return e
}

// Empty reports whether the set holds no messages.
func (e *ErrorSet) Empty() bool {
	if e == nil {
		return true
	}
	for _, msgs := range e.Fields {
		if len(msgs) > 0 {
			return false
		}
	}
	return true
}

// Messages returns the messages recorded for field.
func (e *ErrorSet) Messages(field string) []string {
	if e == nil {
		return nil
	}
	return e.Fields[field]
}

// Has reports whether field has at least one message equal to msg.
func (e *ErrorSet) Has(field, msg string) bool {
	for _, m := range e.Messages(field) {
		if m == msg {
			return true
		}
	}
	return false
}

// Err returns e as an error, or nil when the set is empty.
func (e *ErrorSet) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ErrorSet) Error() string {
	if e.Empty() {
		return "no errors"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
	}
	return strings.Join(parts, "; ")
}

// Is matches the kinds the set has been tagged with.
func (e *ErrorSet) Is(target error) bool {
	for _, kind := range e.kinds {
		if kind == target {
			return true
		}
	}
	return false
}

func (e *ErrorSet) Unwrap() error {
	return e.cause
}

// AsErrorSet extracts an ErrorSet from err.
func AsErrorSet(err error) (*ErrorSet, bool) {
	var set *ErrorSet
	if errors.As(err, &set) {
		return set, true
	}
	return nil, false
}
