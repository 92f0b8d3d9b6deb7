package bindless

import (
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
	"github.com/wippyai/spirv-bindless/spirv"
)

// Reserved intrinsic names.
const (
	IntrinsicStore = "internal_buffer_store"
	IntrinsicLoad  = "internal_buffer_load"
)

// IsIntrinsic reports whether name is lowered by this package.
func IsIntrinsic(name string) bool {
	return name == IntrinsicStore || name == IntrinsicLoad
}

// LowerCall lowers a call if name is a bindless intrinsic. handled is false
// for any other callee, leaving the call to the caller's general lowering.
func (s *Session) LowerCall(name string, resultType ir.ID, args []ir.Value) (result ir.Value, handled bool, err error) {
	switch name {
	case IntrinsicStore:
		result, err = s.LowerStore(resultType, args)
	case IntrinsicLoad:
		result, err = s.LowerLoad(resultType, args)
	default:
		return ir.Value{}, false, nil
	}
	return result, true, err
}

// DefineStore adds an exported function
//
//	name(index: u32, offset: u32, value: T)
//
// whose body is one lowered internal_buffer_store of value.
func DefineStore(mod *spirv.Module, name string, valueType ir.ID, opts Options) (*spirv.Function, error) {
	u32 := mod.DefineType(ir.Word)
	void := mod.Void()
	fn := mod.NewFunction(name, void, u32, u32, valueType)

	s := NewFunctionSession(fn, opts)
	if _, _, err := s.LowerCall(IntrinsicStore, void, fn.Params); err != nil {
		mod.RemoveFunction(fn)
		return nil, err
	}
	fn.Return()
	return fn, moduleErr(mod)
}

// DefineLoad adds an exported function reading a T with one lowered
// internal_buffer_load. With outPointer false it is
//
//	name(index: u32, offset: u32) -> T
//
// and with outPointer true
//
//	name(index: u32, offset: u32, out: *T)
func DefineLoad(mod *spirv.Module, name string, resultType ir.ID, outPointer bool, opts Options) (*spirv.Function, error) {
	u32 := mod.DefineType(ir.Word)

	if !outPointer {
		fn := mod.NewFunction(name, resultType, u32, u32)
		s := NewFunctionSession(fn, opts)
		v, _, err := s.LowerCall(IntrinsicLoad, resultType, fn.Params)
		if err != nil {
			mod.RemoveFunction(fn)
			return nil, err
		}
		fn.ReturnValue(v)
		return fn, moduleErr(mod)
	}

	void := mod.Void()
	ptr := mod.DefineType(ir.Pointer{Pointee: resultType})
	fn := mod.NewFunction(name, void, u32, u32, ptr)
	s := NewFunctionSession(fn, opts)
	if _, _, err := s.LowerCall(IntrinsicLoad, void, fn.Params); err != nil {
		mod.RemoveFunction(fn)
		return nil, err
	}
	fn.Return()
	return fn, moduleErr(mod)
}

func moduleErr(mod *spirv.Module) error {
	if err := mod.Err(); err != nil {
		return errors.Wrap(errors.PhaseLower, errors.KindInvalidInput, err, "emission failed")
	}
	return nil
}
