package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLayout Phase = "layout" // layout oracle queries and WIT layout calculation
	PhaseLower  Phase = "lower"  // bindless store/load lowering
	PhaseEmit   Phase = "emit"   // instruction emission
	PhaseEncode Phase = "encode" // SPIR-V binary encoding
	PhaseDecode Phase = "decode" // SPIR-V binary decoding
	PhaseExec   Phase = "exec"   // sandbox translation and execution
	PhaseParse  Phase = "parse"  // field list / flag parsing
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedLeafShape     Kind = "unsupported_leaf_shape"
	KindUnsupportedTopLevelShape Kind = "unsupported_top_level_shape"
	KindNestedAggregate          Kind = "nested_aggregate"
	KindMisalignedOffset         Kind = "misaligned_offset"
	KindTypeMismatch             Kind = "type_mismatch"
	KindInvalidInput             Kind = "invalid_input"
	KindInvalidData              Kind = "invalid_data"
	KindNotFound                 Kind = "not_found"
	KindUnsupported              Kind = "unsupported"
	KindOutOfBounds              Kind = "out_of_bounds"
	KindInstantiation            Kind = "instantiation"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the offending type, usually the ir.Type String() form
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	e := b.err
	if len(b.err.Path) > 0 {
		e.Path = append([]string(nil), b.err.Path...)
	}
	return &e
}

// UnsupportedLeaf creates an unsupported leaf shape error
func UnsupportedLeaf(phase Phase, path []string, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedLeafShape,
		Path:   path,
		Type:   typ,
		Detail: "only 32-bit integer leaves are supported",
	}
}

// UnsupportedTopLevel creates an unsupported top-level shape error
func UnsupportedTopLevel(phase Phase, typ string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedTopLevelShape,
		Type:   typ,
		Detail: what,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   got,
		Detail: fmt.Sprintf("expected %s", want),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
