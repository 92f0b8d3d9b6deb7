package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/spirv-bindless/errors"
)

// Oracle resolves a type ID to its layout.
type Oracle interface {
	LayoutOf(id ID) (Type, error)
}

// Definer interns a layout and returns its ID. Structurally equal layouts
// map to the same ID.
type Definer interface {
	DefineType(t Type) ID
}

// Table is an in-memory Oracle and Definer. IDs start at 1.
// Table is not safe for concurrent use.
type Table struct {
	index map[string]ID
	types []Type
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]ID)}
}

// DefineType interns t.
func (t *Table) DefineType(typ Type) ID {
	key := Key(typ)
	if id, ok := t.index[key]; ok {
		return id
	}
	t.types = append(t.types, typ)
	id := ID(len(t.types))
	t.index[key] = id
	return id
}

// LayoutOf implements Oracle.
func (t *Table) LayoutOf(id ID) (Type, error) {
	if id == NoID || int(id) > len(t.types) {
		return nil, errors.New(errors.PhaseLayout, errors.KindNotFound).
			Value(id).
			Detail("no layout for type %%%d", id).
			Build()
	}
	return t.types[id-1], nil
}

// Len returns the number of interned layouts.
func (t *Table) Len() int {
	return len(t.types)
}

// Key returns the structural identity of a layout. Aggregates with the same
// fields but different names or offsets have different keys.
func Key(t Type) string {
	switch t := t.(type) {
	case Void:
		return "void"
	case Integer:
		return t.String()
	case Pointer:
		return "ptr:" + strconv.FormatUint(uint64(t.Pointee), 10)
	case Vector:
		return "vec:" + strconv.FormatUint(uint64(t.Count), 10) + ":" + strconv.FormatUint(uint64(t.Element), 10)
	case Adt:
		var b strings.Builder
		b.WriteString("adt:")
		b.WriteString(t.Name)
		for i, f := range t.FieldTypes {
			b.WriteByte('|')
			b.WriteString(t.FieldName(i))
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(f), 10))
			if i < len(t.FieldOffsets) {
				b.WriteByte('@')
				b.WriteString(strconv.FormatUint(uint64(t.FieldOffsets[i]), 10))
			}
		}
		return b.String()
	default:
		return fmt.Sprintf("unknown:%T", t)
	}
}

// Describe renders the layout of id with nested types expanded, for
// diagnostics. Unresolvable IDs render as %<id>.
func Describe(o Oracle, id ID) string {
	var b strings.Builder
	describe(&b, o, id, 0)
	return b.String()
}

const maxDescribeDepth = 8

func describe(b *strings.Builder, o Oracle, id ID, depth int) {
	t, err := o.LayoutOf(id)
	if err != nil || depth > maxDescribeDepth {
		fmt.Fprintf(b, "%%%d", id)
		return
	}
	switch t := t.(type) {
	case Pointer:
		b.WriteString("*")
		describe(b, o, t.Pointee, depth+1)
	case Vector:
		fmt.Fprintf(b, "vec%d<", t.Count)
		describe(b, o, t.Element, depth+1)
		b.WriteByte('>')
	case Adt:
		b.WriteString("struct")
		if t.Name != "" {
			b.WriteByte(' ')
			b.WriteString(t.Name)
		}
		b.WriteString(" {")
		for i, f := range t.FieldTypes {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte(' ')
			b.WriteString(t.FieldName(i))
			b.WriteString(": ")
			describe(b, o, f, depth+1)
			if i < len(t.FieldOffsets) {
				fmt.Fprintf(b, " @%d", t.FieldOffsets[i])
			}
		}
		b.WriteString(" }")
	default:
		b.WriteString(t.String())
	}
}

// LeafCount returns the number of scalar leaves in the layout of id: one per
// integer or pointer, Count per vector, the sum over fields for aggregates.
func LeafCount(o Oracle, id ID) (int, error) {
	return leafCount(o, id, 0)
}

// MaxNestingDepth bounds how deep aggregates and vectors may nest. Deeper
// layouts, including self-referential ones, are rejected.
const MaxNestingDepth = 32

func leafCount(o Oracle, id ID, depth int) (int, error) {
	if depth > MaxNestingDepth {
		return 0, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
			Value(id).
			Detail("type %%%d nests deeper than %d levels", id, MaxNestingDepth).
			Build()
	}
	t, err := o.LayoutOf(id)
	if err != nil {
		return 0, err
	}
	switch t := t.(type) {
	case Void:
		return 0, nil
	case Integer, Pointer:
		return 1, nil
	case Vector:
		return int(t.Count), nil
	case Adt:
		n := 0
		for _, f := range t.FieldTypes {
			c, err := leafCount(o, f, depth+1)
			if err != nil {
				return 0, err
			}
			n += c
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unknown layout %T", t)
	}
}
