// Package spirvbindless lowers bindless buffer intrinsics to SPIR-V.
//
// Kernels address storage through two intrinsic calls:
//
//	internal_buffer_store(index u32, byteOffset u32, value T)
//	internal_buffer_load(index u32, byteOffset u32) T
//
// The lowering replaces each call with explicit word accesses into a single
// runtime array of word buffers: the value is decomposed into its 32-bit
// leaves, and every leaf is read or written through an access chain of the
// form (index, 0, byteOffset>>2 + fieldWord).
//
// # Architecture Overview
//
//	spirvbindless/
//	├── ir/         Type layouts, value handles and the layout oracle interface
//	├── layout/     WIT field lists to aggregate layouts
//	├── spirv/      Module builder, binary encoder/decoder, validator, disassembler
//	├── bindless/   The store/load lowering itself
//	├── exec/       Executes lowered functions as wasm on wazero for testing
//	├── errors/     Structured error types
//	└── cmd/        The bindless command-line tool
//
// # Quick Start
//
// Define a type and generate both accessors:
//
//	mod := spirv.NewModule(spirv.Options{Debug: true})
//	td, _ := layout.ParseFields("a:u32, b:s32")
//	rec, _ := layout.NewCalculator(mod).Define("rec", td)
//
//	bindless.DefineStore(mod, "store", rec, bindless.DefaultOptions())
//	bindless.DefineLoad(mod, "load", rec, false, bindless.DefaultOptions())
//
//	fmt.Print(mod.Disassemble())
//	os.WriteFile("rec.spv", mod.Bytes(), 0o644)
//
// A compiler front end that already has a function under construction
// uses a Session directly:
//
//	s := bindless.NewFunctionSession(fn, bindless.DefaultOptions())
//	v, handled, err := s.LowerCall(callee, resultType, args)
//
// # Supported Shapes
//
// Stored values may be 32-bit integers or aggregates whose fields are
// 32-bit integers at word-aligned offsets. Loaded values may additionally
// be vectors of 32-bit integers. Anything else is reported as a structured
// error from the errors package and no instructions are emitted for it.
package spirvbindless
