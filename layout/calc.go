package layout

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// Info is the canonical ABI layout of a WIT type.
type Info struct {
	FieldOffs []uint32
	Size      uint32
	Align     uint32
}

// Calculator computes layouts and defines them as ir types.
// Results are cached per type definition.
type Calculator struct {
	def   ir.Definer
	cache map[*wit.TypeDef]Info
	ids   map[*wit.TypeDef]ir.ID
}

// NewCalculator creates a calculator that defines types into def.
func NewCalculator(def ir.Definer) *Calculator {
	return &Calculator{
		def:   def,
		cache: make(map[*wit.TypeDef]Info),
		ids:   make(map[*wit.TypeDef]ir.ID),
	}
}

// Calculate returns the size, alignment and field offsets of t.
func (c *Calculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info

	switch kind := t.Kind.(type) {
	case *wit.Record:
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			types[i] = f.Type
		}
		info = c.calculateSequence(types)
	case *wit.Tuple:
		info = c.calculateSequence(kind.Types)
	case *wit.Enum:
		size := discriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Flags:
		info = calculateFlags(len(kind.Flags))
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

func (c *Calculator) calculateSequence(types []wit.Type) Info {
	if len(types) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offs := make([]uint32, len(types))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, typ := range types {
		fieldLayout := c.Calculate(typ)

		offset = alignTo(offset, fieldLayout.Align)
		offs[i] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	return Info{
		Size:      alignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: offs,
	}
}

func calculateFlags(numFlags int) Info {
	switch {
	case numFlags == 0:
		return Info{Size: 0, Align: 1}
	case numFlags <= 8:
		return Info{Size: 1, Align: 1}
	case numFlags <= 16:
		return Info{Size: 2, Align: 2}
	case numFlags <= 32:
		return Info{Size: 4, Align: 4}
	}
	// >32 flags: multiple u32s per canonical ABI
	return Info{Size: uint32((numFlags+31)/32) * 4, Align: 4}
}

// Define interns the ir layout of t and returns its ID. name labels the
// outermost aggregate; nested records are named after their field.
func (c *Calculator) Define(name string, t wit.Type) (ir.ID, error) {
	return c.define(name, t, []string{nameOr(name, "value")})
}

func (c *Calculator) define(name string, t wit.Type, path []string) (ir.ID, error) {
	switch typ := t.(type) {
	case wit.Bool, wit.U8:
		return c.def.DefineType(ir.Integer{Bits: 8}), nil
	case wit.S8:
		return c.def.DefineType(ir.Integer{Bits: 8, Signed: true}), nil
	case wit.U16:
		return c.def.DefineType(ir.Integer{Bits: 16}), nil
	case wit.S16:
		return c.def.DefineType(ir.Integer{Bits: 16, Signed: true}), nil
	case wit.U32, wit.Char:
		return c.def.DefineType(ir.Word), nil
	case wit.S32:
		return c.def.DefineType(ir.Integer{Bits: 32, Signed: true}), nil
	case wit.U64:
		return c.def.DefineType(ir.Integer{Bits: 64}), nil
	case wit.S64:
		return c.def.DefineType(ir.Integer{Bits: 64, Signed: true}), nil
	case *wit.TypeDef:
		return c.defineTypeDef(name, typ, path)
	default:
		return ir.NoID, unsupported(path, t)
	}
}

func (c *Calculator) defineTypeDef(name string, t *wit.TypeDef, path []string) (ir.ID, error) {
	if id, ok := c.ids[t]; ok {
		return id, nil
	}

	var (
		id  ir.ID
		err error
	)

	switch kind := t.Kind.(type) {
	case *wit.Record:
		names := make([]string, len(kind.Fields))
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			names[i] = f.Name
			types[i] = f.Type
		}
		id, err = c.defineAggregate(name, t, names, types, path)
	case *wit.Tuple:
		names := make([]string, len(kind.Types))
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		id, err = c.defineAggregate(name, t, names, kind.Types, path)
	case *wit.Enum:
		id = c.def.DefineType(ir.Integer{Bits: discriminantSize(len(kind.Cases)) * 8})
	case *wit.Flags:
		info := calculateFlags(len(kind.Flags))
		if info.Size == 0 || info.Size > 4 {
			return ir.NoID, unsupported(path, t)
		}
		id = c.def.DefineType(ir.Integer{Bits: info.Size * 8})
	case wit.Type:
		id, err = c.define(name, kind, path)
	default:
		return ir.NoID, unsupported(path, t)
	}
	if err != nil {
		return ir.NoID, err
	}

	c.ids[t] = id
	return id, nil
}

func (c *Calculator) defineAggregate(name string, t *wit.TypeDef, names []string, types []wit.Type, path []string) (ir.ID, error) {
	info := c.Calculate(t)
	fieldTypes := make([]ir.ID, len(types))
	for i, ft := range types {
		fid, err := c.define(names[i], ft, child(path, names[i]))
		if err != nil {
			return ir.NoID, err
		}
		fieldTypes[i] = fid
	}
	return c.def.DefineType(ir.Adt{
		Name:         name,
		FieldTypes:   fieldTypes,
		FieldOffsets: info.FieldOffs,
		FieldNames:   names,
	}), nil
}

func unsupported(path []string, t wit.Type) error {
	return errors.New(errors.PhaseLayout, errors.KindUnsupported).
		Path(path...).
		Type(typeName(t)).
		Detail("type has no fixed word layout").
		Build()
}

func typeName(t wit.Type) string {
	switch typ := t.(type) {
	case *wit.TypeDef:
		switch typ.Kind.(type) {
		case *wit.List:
			return "list"
		case *wit.Variant:
			return "variant"
		case *wit.Option:
			return "option"
		case *wit.Result:
			return "result"
		case *wit.Flags:
			return "flags"
		default:
			return "typedef"
		}
	case wit.String:
		return "string"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	default:
		return "unknown"
	}
}

func discriminantSize(numCases int) uint32 {
	if numCases <= 256 {
		return 1
	} else if numCases <= 65536 {
		return 2
	}
	return 4
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func child(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
