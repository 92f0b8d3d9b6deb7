package bindless

import (
	"strings"

	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
	"github.com/wippyai/spirv-bindless/spirv"
)

// MisalignedPolicy decides what happens to aggregate field offsets that are
// not a multiple of the word size.
type MisalignedPolicy uint8

const (
	// MisalignedReject fails the lowering with KindMisalignedOffset.
	MisalignedReject MisalignedPolicy = iota
	// MisalignedTruncate rounds the offset down to the containing word.
	MisalignedTruncate
)

func (p MisalignedPolicy) String() string {
	switch p {
	case MisalignedReject:
		return "reject"
	case MisalignedTruncate:
		return "truncate"
	default:
		return "unknown"
	}
}

// ParseMisalignedPolicy parses "reject" or "truncate".
func ParseMisalignedPolicy(s string) (MisalignedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reject", "":
		return MisalignedReject, nil
	case "truncate":
		return MisalignedTruncate, nil
	default:
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(s).
			Detail("misaligned policy must be reject or truncate, got %q", s).
			Build()
	}
}

// Options configures a Session. The zero value is DefaultOptions.
type Options struct {
	// Misaligned selects the handling of field offsets that are not word
	// aligned.
	Misaligned MisalignedPolicy

	// RecurseNestedAggregates lets loads reconstruct aggregate fields wider
	// than one word by recursing into them, the same way stores decompose
	// them. When false such fields fail with KindNestedAggregate.
	RecurseNestedAggregates bool
}

// DefaultOptions returns the strict configuration.
func DefaultOptions() Options {
	return Options{Misaligned: MisalignedReject}
}

// Session lowers the bindless intrinsics of one function. It holds the
// handles resolved once per module (the buffer array and the word type) and
// the word constants already emitted. A Session is not safe for concurrent
// use.
type Session struct {
	emit      Emitter
	oracle    ir.Oracle
	err       error
	consts    map[uint32]ir.Value
	resources ir.Value
	opts      Options
	word      ir.ID
}

// NewSession creates a session emitting through emit. oracle resolves the
// type IDs emit works with and resources is the buffer array variable.
func NewSession(emit Emitter, oracle ir.Oracle, resources ir.Value, opts Options) *Session {
	return &Session{
		emit:      emit,
		oracle:    oracle,
		resources: resources,
		opts:      opts,
		consts:    make(map[uint32]ir.Value),
	}
}

// NewFunctionSession creates a session for a SPIR-V function, using its
// module as the oracle and the module's buffer array as the resource handle.
func NewFunctionSession(fn *spirv.Function, opts Options) *Session {
	mod := fn.Module()
	return NewSession(fn, mod, mod.Buffers(), opts)
}

// Err returns the error that poisoned the session, if any.
func (s *Session) Err() error {
	return s.err
}

// Options returns the session configuration.
func (s *Session) Options() Options {
	return s.opts
}

func (s *Session) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return err
}

func (s *Session) wordType() ir.ID {
	if s.word == ir.NoID {
		s.word = s.emit.DefineType(ir.Word)
	}
	return s.word
}

func (s *Session) wordConst(v uint32) ir.Value {
	if c, ok := s.consts[v]; ok {
		return c
	}
	c := s.emit.ConstantInt(s.wordType(), uint64(v))
	s.consts[v] = c
	return c
}

func (s *Session) layout(id ir.ID, path []string) (ir.Type, error) {
	t, err := s.oracle.LayoutOf(id)
	if err != nil {
		return nil, errors.New(errors.PhaseLower, errors.KindNotFound).
			Path(path...).
			Value(id).
			Cause(err).
			Detail("no layout for type %%%d", id).
			Build()
	}
	return t, nil
}

// checkDepth rejects layouts nested deeper than ir.MaxNestingDepth, which
// also stops self-referential aggregates.
func (s *Session) checkDepth(id ir.ID, path []string) error {
	if len(path) <= ir.MaxNestingDepth {
		return nil
	}
	return errors.New(errors.PhaseLower, errors.KindInvalidInput).
		Path(path...).
		Value(id).
		Detail("type %%%d nests deeper than %d levels", id, ir.MaxNestingDepth).
		Build()
}

func (s *Session) describe(id ir.ID) string {
	return ir.Describe(s.oracle, id)
}

func child(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
