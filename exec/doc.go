// Package exec runs lowered SPIR-V functions on the CPU so their memory
// behavior can be observed.
//
// A function is translated into a single-function WebAssembly module and
// executed with wazero. The bindless buffer array becomes one exported
// linear memory in which buffer i starts at word i*WordsPerBuffer, so an
// access chain buffers[index][0][word] turns into a bounds-checked byte
// address. SSA values become i32 locals with vectors and structs flattened
// to their words. A Function-storage pointer parameter is an out parameter:
// its final value is returned after the function's own result.
//
// Only the instructions the bindless lowering emits are supported, on
// 32-bit integer data.
//
//	prog, err := exec.Compile(ctx, mod, "load_pair", exec.Config{})
//	if err != nil {
//		return err
//	}
//	defer prog.Close(ctx)
//	words, err := prog.Run(ctx, buffers, index, byteOffset)
package exec
