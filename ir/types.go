package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is an opaque handle naming a type or a value.
type ID uint32

// NoID is never assigned to a type or value.
const NoID ID = 0

// WordBytes is the width of the storage access unit.
const WordBytes = 4

// Type is a layout shape. The set of implementations is closed:
// Void, Integer, Pointer, Vector and Adt.
type Type interface {
	String() string
	isType()
}

// Void is the zero-sized "no value" shape.
type Void struct{}

// Integer is a scalar integer of the given bit width.
type Integer struct {
	Bits   uint32
	Signed bool
}

// Pointer points at a value of layout Pointee.
type Pointer struct {
	Pointee ID
}

// Vector is Count tightly packed elements of layout Element.
type Vector struct {
	Count   uint32
	Element ID
}

// Adt is an aggregate. FieldTypes and FieldOffsets are index aligned;
// FieldOffsets are byte offsets from the start of the aggregate.
// FieldNames is optional and only used for diagnostics and debug names.
type Adt struct {
	Name         string
	FieldTypes   []ID
	FieldOffsets []uint32
	FieldNames   []string
}

func (Void) isType()    {}
func (Integer) isType() {}
func (Pointer) isType() {}
func (Vector) isType()  {}
func (Adt) isType()     {}

// Word is the canonical 32-bit unsigned word every access is made of.
var Word = Integer{Bits: 32}

// IsWord reports whether t is exactly the unsigned 32-bit word.
func IsWord(t Type) bool {
	i, ok := t.(Integer)
	return ok && i == Word
}

// Is32 reports whether t is a 32-bit integer of either signedness.
func Is32(t Type) bool {
	i, ok := t.(Integer)
	return ok && i.Bits == 32
}

func (Void) String() string { return "void" }

func (i Integer) String() string {
	if i.Signed {
		return "s" + strconv.FormatUint(uint64(i.Bits), 10)
	}
	return "u" + strconv.FormatUint(uint64(i.Bits), 10)
}

func (p Pointer) String() string { return fmt.Sprintf("ptr(%%%d)", p.Pointee) }

func (v Vector) String() string { return fmt.Sprintf("vec%d(%%%d)", v.Count, v.Element) }

func (a Adt) String() string {
	var b strings.Builder
	b.WriteString("struct")
	if a.Name != "" {
		b.WriteByte(' ')
		b.WriteString(a.Name)
	}
	b.WriteString(" {")
	for i := range a.FieldTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, " %s: %%%d", a.FieldName(i), a.FieldTypes[i])
		if i < len(a.FieldOffsets) {
			fmt.Fprintf(&b, " @%d", a.FieldOffsets[i])
		}
	}
	b.WriteString(" }")
	return b.String()
}

// FieldName returns the declared name of field i, or "field<i>".
func (a Adt) FieldName(i int) string {
	if i < len(a.FieldNames) && a.FieldNames[i] != "" {
		return a.FieldNames[i]
	}
	return "field" + strconv.Itoa(i)
}

// Validate checks that field types and offsets are index aligned.
func (a Adt) Validate() error {
	if len(a.FieldTypes) != len(a.FieldOffsets) {
		return fmt.Errorf("adt %q: %d field types but %d offsets", a.Name, len(a.FieldTypes), len(a.FieldOffsets))
	}
	if len(a.FieldNames) != 0 && len(a.FieldNames) != len(a.FieldTypes) {
		return fmt.Errorf("adt %q: %d field names for %d fields", a.Name, len(a.FieldNames), len(a.FieldTypes))
	}
	return nil
}
