package bindless

import (
	"go.uber.org/zap"

	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// LowerStore lowers internal_buffer_store(index, byteOffset, value).
// resultType is the call's declared result and must be void.
func (s *Session) LowerStore(resultType ir.ID, args []ir.Value) (ir.Value, error) {
	if s.err != nil {
		return ir.Value{}, s.err
	}
	if len(args) != 3 {
		return ir.Value{}, s.fail(arity(IntrinsicStore, "3", len(args)))
	}
	if err := s.checkVoid(IntrinsicStore, resultType); err != nil {
		return ir.Value{}, s.fail(err)
	}
	index, byteOffset, value := args[0], args[1], args[2]
	if err := s.checkAddressing(index, byteOffset); err != nil {
		return ir.Value{}, s.fail(err)
	}

	sh, err := s.planStore(value.Type, 0, nil, true)
	if err != nil {
		return ir.Value{}, s.fail(err)
	}

	dyn := s.dynamicWordOffset(byteOffset)
	for _, slot := range s.flatten(sh, value, nil) {
		s.writeWord(index, dyn, slot.offset, slot.word)
	}

	Logger().Debug("lowered buffer store",
		zap.String("type", s.describe(value.Type)),
		zap.Int("words", sh.leaves()))
	return s.emit.Unit(), nil
}

// LowerLoad lowers internal_buffer_load(index, byteOffset[, out]).
// A void resultType selects delivery through the out pointer, which must
// then be the third argument; any other resultType is the loaded type.
func (s *Session) LowerLoad(resultType ir.ID, args []ir.Value) (ir.Value, error) {
	if s.err != nil {
		return ir.Value{}, s.err
	}
	if len(args) < 2 {
		return ir.Value{}, s.fail(arity(IntrinsicLoad, "2 or 3", len(args)))
	}
	index, byteOffset := args[0], args[1]
	if err := s.checkAddressing(index, byteOffset); err != nil {
		return ir.Value{}, s.fail(err)
	}

	d, err := s.delivery(resultType, args[2:])
	if err != nil {
		return ir.Value{}, s.fail(err)
	}

	sh, err := s.planLoad(d.expected(), 0, nil, true)
	if err != nil {
		return ir.Value{}, s.fail(err)
	}

	dyn := s.dynamicWordOffset(byteOffset)
	result := d.deliver(s, s.build(sh, index, dyn))

	Logger().Debug("lowered buffer load",
		zap.String("type", s.describe(d.expected())),
		zap.Int("words", sh.leaves()),
		zap.Stringer("delivery", d))
	return result, nil
}

// checkAddressing verifies that index and byte offset are 32-bit integers.
func (s *Session) checkAddressing(index, byteOffset ir.Value) error {
	for _, arg := range []struct {
		name string
		v    ir.Value
	}{{"index", index}, {"offset", byteOffset}} {
		t, err := s.layout(arg.v.Type, []string{arg.name})
		if err != nil {
			return err
		}
		if !ir.Is32(t) {
			return errors.TypeMismatch(errors.PhaseLower, []string{arg.name}, s.describe(arg.v.Type), "a 32-bit integer")
		}
	}
	return nil
}

func (s *Session) checkVoid(name string, resultType ir.ID) error {
	t, err := s.layout(resultType, []string{"result"})
	if err != nil {
		return err
	}
	if _, ok := t.(ir.Void); !ok {
		return errors.TypeMismatch(errors.PhaseLower, []string{name, "result"}, s.describe(resultType), "void")
	}
	return nil
}

func arity(name, want string, got int) *errors.Error {
	return errors.New(errors.PhaseLower, errors.KindInvalidInput).
		Path(name).
		Value(got).
		Detail("expected %s arguments, got %d", want, got).
		Build()
}
