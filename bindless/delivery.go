package bindless

import (
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// delivery hands a reconstructed value back to the call site.
type delivery interface {
	expected() ir.ID
	deliver(s *Session, v ir.Value) ir.Value
	String() string
}

// returnValue makes the loaded value the call's result.
type returnValue struct {
	typ ir.ID
}

func (d returnValue) expected() ir.ID { return d.typ }

func (d returnValue) deliver(_ *Session, v ir.Value) ir.Value { return v }

func (returnValue) String() string { return "return" }

// writeThrough stores the loaded value through the caller's out pointer
// and yields the unit value.
type writeThrough struct {
	out     ir.Value
	pointee ir.ID
}

func (d writeThrough) expected() ir.ID { return d.pointee }

func (d writeThrough) deliver(s *Session, v ir.Value) ir.Value {
	s.emit.Store(d.out, v)
	return s.emit.Unit()
}

func (writeThrough) String() string { return "out-pointer" }

// delivery picks the strategy from the declared result: void means the
// value goes through the out pointer in extra[0].
func (s *Session) delivery(resultType ir.ID, extra []ir.Value) (delivery, error) {
	t, err := s.layout(resultType, []string{"result"})
	if err != nil {
		return nil, err
	}

	if _, isVoid := t.(ir.Void); !isVoid {
		if len(extra) != 0 {
			return nil, arity(IntrinsicLoad, "2 for a load returning a value", 2+len(extra))
		}
		return returnValue{typ: resultType}, nil
	}

	if len(extra) != 1 {
		return nil, arity(IntrinsicLoad, "3 for a load into an out pointer", 2+len(extra))
	}
	out := extra[0]
	pt, err := s.layout(out.Type, []string{"out"})
	if err != nil {
		return nil, err
	}
	ptr, ok := pt.(ir.Pointer)
	if !ok {
		return nil, errors.New(errors.PhaseLower, errors.KindInvalidInput).
			Path(IntrinsicLoad, "out").
			Type(s.describe(out.Type)).
			Detail("a void load needs a pointer as its third argument").
			Build()
	}
	return writeThrough{out: out, pointee: ptr.Pointee}, nil
}
