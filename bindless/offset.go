package bindless

import (
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// dynamicWordOffset converts the call site's byte offset into a word
// offset with an arithmetic shift, so negative offsets round toward
// negative infinity.
func (s *Session) dynamicWordOffset(byteOffset ir.Value) ir.Value {
	return s.emit.ShiftRightArithmetic(s.wordType(), byteOffset, s.wordConst(2))
}

// address returns dyn + static, skipping the add for static == 0.
func (s *Session) address(dyn ir.Value, static uint32) ir.Value {
	if static == 0 {
		return dyn
	}
	return s.emit.IntegerAdd(s.wordType(), dyn, s.wordConst(static))
}

// fieldWords converts an aggregate field's byte offset to words.
func (s *Session) fieldWords(byteOffset uint32, path []string, adt ir.ID) (uint32, error) {
	if byteOffset%ir.WordBytes != 0 && s.opts.Misaligned == MisalignedReject {
		return 0, errors.New(errors.PhaseLower, errors.KindMisalignedOffset).
			Path(path...).
			Type(s.describe(adt)).
			Value(byteOffset).
			Detail("field offset %d is not a multiple of %d bytes", byteOffset, ir.WordBytes).
			Build()
	}
	return byteOffset / ir.WordBytes, nil
}
