// Package ir defines the layout model consumed by the bindless lowering.
//
// A layout is one of a closed set of shapes:
//
//	Void                         zero-sized "no value"
//	Integer{Bits, Signed}        scalar integer leaf
//	Pointer{Pointee}             pointer to another layout
//	Vector{Count, Element}       tightly packed fixed-size vector
//	Adt{FieldTypes, FieldOffsets} aggregate with per-field byte offsets
//
// Layouts refer to each other through opaque IDs. An Oracle resolves an ID to
// its layout; a Definer interns a layout and hands back its ID. Table is the
// in-memory implementation of both; the spirv package provides another one
// whose IDs are SPIR-V result IDs.
//
// Layouts are immutable once defined.
package ir
