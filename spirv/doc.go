// Package spirv builds, encodes and decodes the SPIR-V modules produced by
// the bindless lowering.
//
// The package covers the subset of SPIR-V the lowering needs: integer,
// vector, struct, pointer and runtime-array types, 32-bit constants, one
// storage-buffer descriptor array, and straight-line functions made of
// OpBitcast, OpShiftRightArithmetic, OpIAdd, OpAccessChain, OpLoad, OpStore,
// OpCompositeConstruct and OpCompositeExtract.
//
// # Building
//
//	mod := spirv.NewModule(spirv.Options{Debug: true})
//	u32 := mod.DefineType(ir.Word)
//	fn := mod.NewFunction("store_pair", mod.DefineType(ir.Void{}), u32, u32, pairType)
//	// ... emit through fn (it implements bindless.Emitter) ...
//	fn.Return()
//	words := mod.Encode()
//
// Module doubles as the layout oracle for the types it defines: LayoutOf
// returns the ir layout behind a SPIR-V type ID.
//
// # Binary Format
//
// Encode emits sections in SPIR-V logical layout order: capabilities,
// extensions, memory model, debug names, annotations, types/constants/globals,
// then function bodies. Decode parses any module in that format back into
// instructions and Disassemble renders them as text.
package spirv
