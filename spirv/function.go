package spirv

import (
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// Function is a straight-line function under construction: one entry
// block, Function-storage variables first, then the body and a terminator.
// It implements the emitter surface used by the bindless lowering.
type Function struct {
	m          *Module
	Name       string
	Params     []ir.Value
	vars       []Instruction
	body       []Instruction
	ID         ir.ID
	Result     ir.ID
	typeID     ir.ID
	label      ir.ID
	terminated bool
}

// Module returns the module the function belongs to.
func (f *Function) Module() *Module {
	return f.m
}

// Terminated reports whether Return or ReturnValue has been emitted.
func (f *Function) Terminated() bool {
	return f.terminated
}

func (f *Function) emit(op Op, operands ...uint32) {
	if f.terminated {
		f.m.fail(errors.New(errors.PhaseEmit, errors.KindInvalidInput).
			Path(f.Name).
			Detail("%s emitted after the function was terminated", op).
			Build())
		return
	}
	f.body = append(f.body, inst(op, operands...))
}

func (f *Function) value(op Op, t ir.ID, operands ...uint32) ir.Value {
	id := f.m.AllocID()
	f.emit(op, append([]uint32{uint32(t), uint32(id)}, operands...)...)
	return ir.Value{ID: id, Type: t}
}

// DefineType interns a type in the owning module.
func (f *Function) DefineType(t ir.Type) ir.ID {
	return f.m.DefineType(t)
}

// LayoutOf resolves a type through the owning module.
func (f *Function) LayoutOf(id ir.ID) (ir.Type, error) {
	return f.m.LayoutOf(id)
}

// ConstantInt returns a module-level integer constant.
func (f *Function) ConstantInt(t ir.ID, v uint64) ir.Value {
	return f.m.ConstantInt(t, v)
}

// BitCast reinterprets v as type t.
func (f *Function) BitCast(t ir.ID, v ir.Value) ir.Value {
	return f.value(OpBitcast, t, uint32(v.ID))
}

// ShiftRightArithmetic shifts v right by amount, replicating the sign bit.
func (f *Function) ShiftRightArithmetic(t ir.ID, v, amount ir.Value) ir.Value {
	return f.value(OpShiftRightArithmetic, t, uint32(v.ID), uint32(amount.ID))
}

// IntegerAdd adds a and b with wrap-around.
func (f *Function) IntegerAdd(t ir.ID, a, b ir.Value) ir.Value {
	return f.value(OpIAdd, t, uint32(a.ID), uint32(b.ID))
}

// IndexedAccess forms a pointer to a pointee-typed element of base. The
// result pointer lives in the same storage class as base.
func (f *Function) IndexedAccess(pointee ir.ID, base ir.Value, indices ...ir.Value) ir.Value {
	class, ok := f.m.StorageClassOf(base.Type)
	if !ok {
		f.m.fail(errors.New(errors.PhaseEmit, errors.KindTypeMismatch).
			Path(f.Name).
			Type(ir.Describe(f.m, base.Type)).
			Detail("access chain base %%%d is not a pointer", base.ID).
			Build())
		class = StorageClassFunction
	}
	ptr := f.m.pointerType(class, pointee)
	return f.value(OpAccessChain, ptr, append([]uint32{uint32(base.ID)}, ids(indices)...)...)
}

// Load reads a t-typed value through ptr.
func (f *Function) Load(t ir.ID, ptr ir.Value) ir.Value {
	return f.value(OpLoad, t, uint32(ptr.ID))
}

// Store writes v through ptr.
func (f *Function) Store(ptr, v ir.Value) {
	f.emit(OpStore, uint32(ptr.ID), uint32(v.ID))
}

// CompositeConstruct assembles a vector or aggregate from its components.
func (f *Function) CompositeConstruct(t ir.ID, parts []ir.Value) ir.Value {
	return f.value(OpCompositeConstruct, t, ids(parts)...)
}

// CompositeExtract reads component index of a vector or aggregate.
func (f *Function) CompositeExtract(t ir.ID, v ir.Value, index uint32) ir.Value {
	return f.value(OpCompositeExtract, t, uint32(v.ID), index)
}

// Unit returns the "no value" result of a void operation.
func (f *Function) Unit() ir.Value {
	return ir.Value{Type: f.m.Void()}
}

// Variable declares a Function-storage local holding a pointee value.
func (f *Function) Variable(pointee ir.ID) ir.Value {
	ptr := f.m.pointerType(StorageClassFunction, pointee)
	id := f.m.AllocID()
	f.vars = append(f.vars, inst(OpVariable, uint32(ptr), uint32(id), uint32(StorageClassFunction)))
	return ir.Value{ID: id, Type: ptr}
}

// Return terminates a void function.
func (f *Function) Return() {
	f.emit(OpReturn)
	f.terminated = true
}

// ReturnValue terminates the function returning v.
func (f *Function) ReturnValue(v ir.Value) {
	f.emit(OpReturnValue, uint32(v.ID))
	f.terminated = true
}

// Body returns the instructions emitted after the entry label, variables
// excluded.
func (f *Function) Body() []Instruction {
	out := make([]Instruction, len(f.body))
	copy(out, f.body)
	return out
}

// Variables returns the Function-storage variable declarations.
func (f *Function) Variables() []Instruction {
	out := make([]Instruction, len(f.vars))
	copy(out, f.vars)
	return out
}

// Instructions returns the complete function from OpFunction to OpFunctionEnd.
func (f *Function) Instructions() []Instruction {
	out := make([]Instruction, 0, len(f.Params)+len(f.vars)+len(f.body)+3)
	out = append(out, inst(OpFunction, uint32(f.Result), uint32(f.ID), functionControlNone, uint32(f.typeID)))
	for _, p := range f.Params {
		out = append(out, inst(OpFunctionParameter, uint32(p.Type), uint32(p.ID)))
	}
	out = append(out, inst(OpLabel, uint32(f.label)))
	out = append(out, f.vars...)
	out = append(out, f.body...)
	out = append(out, inst(OpFunctionEnd))
	return out
}
