package bindless

import (
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// planLoad checks that a value of type id can be rebuilt from single-word
// reads starting at word base.
func (s *Session) planLoad(id ir.ID, base uint32, path []string, top bool) (shape, error) {
	t, err := s.layout(id, path)
	if err != nil {
		return shape{}, err
	}

	switch t := t.(type) {
	case ir.Vector:
		return s.planVector(id, t, base, path)

	case ir.Adt:
		return s.planAggregate(id, t, base, path)

	case ir.Integer:
		if t != ir.Word {
			return shape{}, errors.UnsupportedLeaf(errors.PhaseLower, path, s.describe(id))
		}
		return leaf(id, t, base), nil

	default:
		if top {
			return shape{}, errors.UnsupportedTopLevel(errors.PhaseLower, s.describe(id),
				"internal_buffer_load supports u32, vectors and aggregates")
		}
		return shape{}, errors.UnsupportedLeaf(errors.PhaseLower, path, s.describe(id))
	}
}

func (s *Session) planVector(id ir.ID, t ir.Vector, base uint32, path []string) (shape, error) {
	elem, err := s.layout(t.Element, path)
	if err != nil {
		return shape{}, err
	}
	integer, ok := elem.(ir.Integer)
	if !ok || integer.Bits != 32 {
		return shape{}, errors.UnsupportedLeaf(errors.PhaseLower, child(path, "element"), s.describe(t.Element))
	}
	if t.Count == 0 {
		return shape{}, errors.New(errors.PhaseLower, errors.KindInvalidInput).
			Path(path...).Type(s.describe(id)).Detail("zero-length vector").Build()
	}

	sh := shape{typ: id, offset: base, kind: shapeVector, fields: make([]shape, t.Count)}
	for i := range sh.fields {
		sh.fields[i] = leaf(t.Element, integer, base+uint32(i))
	}
	return sh, nil
}

func (s *Session) planAggregate(id ir.ID, t ir.Adt, base uint32, path []string) (shape, error) {
	if err := s.checkDepth(id, path); err != nil {
		return shape{}, err
	}
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
		at := base + off

		field, err := s.layout(ft, fp)
		if err != nil {
			return shape{}, err
		}

		switch f := field.(type) {
		case ir.Integer:
			if f.Bits != 32 {
				return shape{}, errors.UnsupportedLeaf(errors.PhaseLower, fp, s.describe(ft))
			}
			sh.fields[i] = leaf(ft, f, at)

		case ir.Vector:
			if sh.fields[i], err = s.planVector(ft, f, at, fp); err != nil {
				return shape{}, err
			}

		case ir.Adt:
			words, err := ir.LeafCount(s.oracle, ft)
			if err != nil {
				kind := errors.KindNotFound
				if errors.IsKind(err, errors.KindInvalidInput) {
					kind = errors.KindInvalidInput
				}
				e := errors.Wrap(errors.PhaseLower, kind, err, "nested aggregate layout")
				e.Path = fp
				return shape{}, e
			}
			if words > 1 && !s.opts.RecurseNestedAggregates {
				return shape{}, errors.New(errors.PhaseLower, errors.KindNestedAggregate).
					Path(fp...).
					Type(s.describe(ft)).
					Value(words).
					Detail("field spans %d words; nested aggregates wider than one word are not reconstructed", words).
					Build()
			}
			if sh.fields[i], err = s.planAggregate(ft, f, at, fp); err != nil {
				return shape{}, err
			}

		default:
			return shape{}, errors.UnsupportedLeaf(errors.PhaseLower, fp, s.describe(ft))
		}
	}
	return sh, nil
}

// build emits the reads of a planned load and assembles the result.
func (s *Session) build(sh shape, index, dyn ir.Value) ir.Value {
	switch sh.kind {
	case shapeVector, shapeAggregate:
		parts := make([]ir.Value, len(sh.fields))
		for i, f := range sh.fields {
			parts[i] = s.build(f, index, dyn)
		}
		return s.emit.CompositeConstruct(sh.typ, parts)
	default:
		return s.readWord(index, dyn, sh.offset, sh.typ)
	}
}
