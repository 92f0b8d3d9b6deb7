package bindless

import "github.com/wippyai/spirv-bindless/ir"

// Emitter appends instructions to the function being compiled.
// Type IDs passed to and returned from an Emitter must be the IDs the
// session's oracle resolves.
type Emitter interface {
	DefineType(t ir.Type) ir.ID
	ConstantInt(t ir.ID, v uint64) ir.Value
	BitCast(t ir.ID, v ir.Value) ir.Value
	ShiftRightArithmetic(t ir.ID, v, amount ir.Value) ir.Value
	IntegerAdd(t ir.ID, a, b ir.Value) ir.Value
	// IndexedAccess returns a pointer to the pointee-typed element of base
	// selected by indices.
	IndexedAccess(pointee ir.ID, base ir.Value, indices ...ir.Value) ir.Value
	Load(t ir.ID, ptr ir.Value) ir.Value
	Store(ptr, v ir.Value)
	CompositeConstruct(t ir.ID, parts []ir.Value) ir.Value
	CompositeExtract(t ir.ID, v ir.Value, index uint32) ir.Value
	// Unit is the result of a call that produces no value.
	Unit() ir.Value
}
