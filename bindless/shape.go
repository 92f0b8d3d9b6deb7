package bindless

import "github.com/wippyai/spirv-bindless/ir"

type shapeKind uint8

const (
	shapeWord      shapeKind = iota // u32 leaf
	shapeCast                       // other 32-bit leaf, bit-cast to or from u32
	shapeVector                     // load only
	shapeAggregate
)

// shape is a checked access plan for one value. Offsets are absolute word
// offsets from the call site's dynamic base, so emission needs no further
// arithmetic or validation.
type shape struct {
	fields []shape
	typ    ir.ID
	offset uint32
	kind   shapeKind
}

func (sh shape) leaves() int {
	if sh.kind == shapeWord || sh.kind == shapeCast {
		return 1
	}
	n := 0
	for _, f := range sh.fields {
		n += f.leaves()
	}
	return n
}

// leaf plans a single 32-bit integer word at offset.
func leaf(typ ir.ID, t ir.Integer, offset uint32) shape {
	kind := shapeCast
	if t == ir.Word {
		kind = shapeWord
	}
	return shape{typ: typ, offset: offset, kind: kind}
}
