// Package bindless lowers the internal_buffer_store and internal_buffer_load
// intrinsics into unrolled word-granular accesses against a bindless array
// of storage buffers.
//
// Every access goes through one addressing scheme:
//
//	buffers[index].words[(byteOffset >> 2) + staticWord]
//
// where index and byteOffset are the dynamic call arguments and staticWord
// is the compile-time word offset of a leaf inside the accessed value. The
// shift is emitted once per call site; the add is skipped for leaves at
// word zero.
//
// # Stores
//
// The stored value is decomposed into 32-bit words. Aggregates are split
// with CompositeExtract field by field, in declaration order; each 32-bit
// integer leaf is bit-cast to u32. Leaves of any other width are rejected
// rather than converted.
//
// # Loads
//
// The expected type is reconstructed from single-word reads:
//
//   - a u32 is one direct load
//   - a vector is Count reads at consecutive words and one CompositeConstruct
//   - an aggregate reads each 32-bit field at its offset, recurses into
//     vector fields and single-word aggregate fields, then constructs the
//     aggregate
//
// Multi-word aggregate fields fail with KindNestedAggregate unless
// Options.RecurseNestedAggregates is set.
//
// A load whose declared result is void writes the value through the out
// pointer passed as the third argument; otherwise the value is returned.
//
// # Sessions
//
// A Session binds the lowering to one function under construction: the
// emitter, the layout oracle and the resolved buffer array handle. All
// shapes are checked before any instruction is emitted, so a failed call
// leaves the function untouched. Failures are sticky; every later call on
// the session returns the first error.
package bindless
