package bindless

import (
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// wordSlot is one decomposed leaf: a u32 value and its word offset.
type wordSlot struct {
	word   ir.Value
	offset uint32
}

// planStore checks that the value of type id decomposes into 32-bit words
// and records where each word goes.
func (s *Session) planStore(id ir.ID, base uint32, path []string, top bool) (shape, error) {
	if err := s.checkDepth(id, path); err != nil {
		return shape{}, err
	}
	t, err := s.layout(id, path)
	if err != nil {
		return shape{}, err
	}

	switch t := t.(type) {
	case ir.Adt:
		if err := t.Validate(); err != nil {
			return shape{}, errors.New(errors.PhaseLower, errors.KindInvalidInput).
				Path(path...).Type(t.String()).Cause(err).Build()
		}
		sh := shape{typ: id, offset: base, kind: shapeAggregate, fields: make([]shape, len(t.FieldTypes))}
		for i, ft := range t.FieldTypes {
			fp := child(path, t.FieldName(i))
			off, err := s.fieldWords(t.FieldOffsets[i], fp, id)
			if err != nil {
				return shape{}, err
			}
			if sh.fields[i], err = s.planStore(ft, base+off, fp, false); err != nil {
				return shape{}, err
			}
		}
		return sh, nil

	case ir.Integer:
		if t.Bits != 32 {
			return shape{}, errors.UnsupportedLeaf(errors.PhaseLower, path, s.describe(id))
		}
		return leaf(id, t, base), nil

	default:
		if top {
			return shape{}, errors.UnsupportedTopLevel(errors.PhaseLower, s.describe(id),
				"internal_buffer_store supports 32-bit integers and aggregates of them")
		}
		return shape{}, errors.UnsupportedLeaf(errors.PhaseLower, path, s.describe(id))
	}
}

// flatten emits the field extractions and casts of a planned store and
// returns the words in declaration order.
func (s *Session) flatten(sh shape, v ir.Value, out []wordSlot) []wordSlot {
	switch sh.kind {
	case shapeAggregate:
		for i, f := range sh.fields {
			out = s.flatten(f, s.emit.CompositeExtract(f.typ, v, uint32(i)), out)
		}
		return out
	case shapeCast:
		return append(out, wordSlot{word: s.emit.BitCast(s.wordType(), v), offset: sh.offset})
	default:
		return append(out, wordSlot{word: v, offset: sh.offset})
	}
}
