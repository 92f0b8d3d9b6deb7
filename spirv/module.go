package spirv

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// Options configures module construction.
type Options struct {
	// Version is the SPIR-V version word. Zero selects Version1_3.
	Version uint32
	// Generator is written into the header generator word.
	Generator uint32
	// Debug emits OpName/OpMemberName for named types and functions.
	Debug bool
	// DescriptorSet and Binding locate the bindless buffer array.
	DescriptorSet uint32
	Binding       uint32
}

type typeEntry struct {
	layout ir.Type // nil for types with no ir shape (runtime arrays, functions)
	name   string
	class  StorageClass
}

type constKey struct {
	typ   ir.ID
	value uint64
}

// Module accumulates the sections of a SPIR-V module. Types and constants
// are deduplicated. Module is not safe for concurrent use.
type Module struct {
	err          error
	types        map[ir.ID]typeEntry
	typeKeys     map[string]ir.ID
	constants    map[constKey]ir.ID
	constValues  map[ir.ID]uint64
	capSet       map[Capability]bool
	capabilities []Capability
	extensions   []string
	debug        []Instruction
	annotations  []Instruction
	globals      []Instruction
	functions    []*Function
	opts         Options
	buffers      ir.Value
	bound        uint32
}

// NewModule creates an empty module.
func NewModule(opts Options) *Module {
	if opts.Version == 0 {
		opts.Version = Version1_3
	}
	m := &Module{
		opts:        opts,
		bound:       1,
		types:       make(map[ir.ID]typeEntry),
		typeKeys:    make(map[string]ir.ID),
		constants:   make(map[constKey]ir.ID),
		constValues: make(map[ir.ID]uint64),
		capSet:      make(map[Capability]bool),
	}
	m.addCapability(CapabilityShader)
	m.addCapability(CapabilityLinkage)
	return m
}

// AllocID reserves a fresh result id.
func (m *Module) AllocID() ir.ID {
	id := ir.ID(m.bound)
	m.bound++
	return id
}

// Bound returns one more than the largest id allocated so far.
func (m *Module) Bound() uint32 {
	return m.bound
}

// Err returns the first emission error recorded on the module.
func (m *Module) Err() error {
	return m.err
}

func (m *Module) fail(err error) {
	if m.err == nil {
		m.err = err
	}
	Logger().Debug("spirv emission error", zap.Error(err))
}

func (m *Module) addCapability(c Capability) {
	if !m.capSet[c] {
		m.capSet[c] = true
		m.capabilities = append(m.capabilities, c)
	}
}

func (m *Module) addExtension(name string) {
	for _, e := range m.extensions {
		if e == name {
			return
		}
	}
	m.extensions = append(m.extensions, name)
}

// DefineType interns t and returns its SPIR-V type id. Pointers defined
// through this method live in the Function storage class.
func (m *Module) DefineType(t ir.Type) ir.ID {
	if p, ok := t.(ir.Pointer); ok {
		return m.pointerType(StorageClassFunction, p.Pointee)
	}

	key := ir.Key(t)
	if id, ok := m.typeKeys[key]; ok {
		return id
	}

	id := m.AllocID()
	switch t := t.(type) {
	case ir.Void:
		m.globals = append(m.globals, inst(OpTypeVoid, uint32(id)))
	case ir.Integer:
		switch t.Bits {
		case 8:
			m.addCapability(CapabilityInt8)
		case 16:
			m.addCapability(CapabilityInt16)
		case 64:
			m.addCapability(CapabilityInt64)
		}
		signed := uint32(0)
		if t.Signed {
			signed = 1
		}
		m.globals = append(m.globals, inst(OpTypeInt, uint32(id), t.Bits, signed))
	case ir.Vector:
		m.globals = append(m.globals, inst(OpTypeVector, uint32(id), uint32(t.Element), t.Count))
	case ir.Adt:
		if err := t.Validate(); err != nil {
			m.fail(errors.New(errors.PhaseEmit, errors.KindInvalidInput).Type(t.String()).Cause(err).Build())
		}
		operands := make([]uint32, 0, len(t.FieldTypes)+1)
		operands = append(operands, uint32(id))
		for _, f := range t.FieldTypes {
			operands = append(operands, uint32(f))
		}
		m.globals = append(m.globals, inst(OpTypeStruct, operands...))
		for i, off := range t.FieldOffsets {
			m.annotations = append(m.annotations, inst(OpMemberDecorate, uint32(id), uint32(i), uint32(DecorationOffset), off))
		}
		if m.opts.Debug {
			if t.Name != "" {
				m.debugName(id, t.Name)
			}
			for i := range t.FieldTypes {
				m.debug = append(m.debug, inst(OpMemberName, append([]uint32{uint32(id), uint32(i)}, stringWords(t.FieldName(i))...)...))
			}
		}
	default:
		m.fail(errors.New(errors.PhaseEmit, errors.KindUnsupported).Detail("unknown layout %T", t).Build())
	}

	m.types[id] = typeEntry{layout: t}
	m.typeKeys[key] = id
	return id
}

func (m *Module) pointerType(class StorageClass, pointee ir.ID) ir.ID {
	key := "ptr:" + strconv.FormatUint(uint64(class), 10) + ":" + strconv.FormatUint(uint64(pointee), 10)
	if id, ok := m.typeKeys[key]; ok {
		return id
	}
	id := m.AllocID()
	m.globals = append(m.globals, inst(OpTypePointer, uint32(id), uint32(class), uint32(pointee)))
	m.types[id] = typeEntry{layout: ir.Pointer{Pointee: pointee}, class: class}
	m.typeKeys[key] = id
	return id
}

func (m *Module) functionType(result ir.ID, params []ir.ID) ir.ID {
	key := "fn:" + strconv.FormatUint(uint64(result), 10)
	operands := []uint32{0, uint32(result)}
	for _, p := range params {
		key += ":" + strconv.FormatUint(uint64(p), 10)
		operands = append(operands, uint32(p))
	}
	if id, ok := m.typeKeys[key]; ok {
		return id
	}
	id := m.AllocID()
	operands[0] = uint32(id)
	m.globals = append(m.globals, inst(OpTypeFunction, operands...))
	m.types[id] = typeEntry{name: "function"}
	m.typeKeys[key] = id
	return id
}

// LayoutOf implements ir.Oracle for the types defined in this module.
func (m *Module) LayoutOf(id ir.ID) (ir.Type, error) {
	entry, ok := m.types[id]
	if !ok || entry.layout == nil {
		return nil, errors.New(errors.PhaseLayout, errors.KindNotFound).
			Value(id).
			Detail("%%%d has no layout in this module", id).
			Build()
	}
	return entry.layout, nil
}

// StorageClassOf returns the storage class of a pointer type.
func (m *Module) StorageClassOf(ptrType ir.ID) (StorageClass, bool) {
	entry, ok := m.types[ptrType]
	if !ok {
		return 0, false
	}
	if _, isPtr := entry.layout.(ir.Pointer); !isPtr {
		return 0, false
	}
	return entry.class, true
}

// Void returns the void type id.
func (m *Module) Void() ir.ID {
	return m.DefineType(ir.Void{})
}

// ConstantInt returns a deduplicated integer constant of type t.
func (m *Module) ConstantInt(t ir.ID, v uint64) ir.Value {
	layout, err := m.LayoutOf(t)
	integer, ok := layout.(ir.Integer)
	if err != nil || !ok {
		m.fail(errors.New(errors.PhaseEmit, errors.KindTypeMismatch).
			Type(ir.Describe(m, t)).
			Detail("constant %d needs an integer type", v).
			Build())
		integer = ir.Word
	}
	if integer.Bits < 64 {
		v &= 1<<integer.Bits - 1
	}

	key := constKey{typ: t, value: v}
	if id, ok := m.constants[key]; ok {
		return ir.Value{ID: id, Type: t}
	}
	id := m.AllocID()
	operands := []uint32{uint32(t), uint32(id), uint32(v)}
	if integer.Bits > 32 {
		operands = append(operands, uint32(v>>32))
	}
	m.globals = append(m.globals, inst(OpConstant, operands...))
	m.constants[key] = id
	m.constValues[id] = v
	return ir.Value{ID: id, Type: t}
}

// ConstantValue returns the literal behind a constant id.
func (m *Module) ConstantValue(id ir.ID) (uint64, bool) {
	v, ok := m.constValues[id]
	return v, ok
}

// Buffers returns the bindless buffer array variable, creating it on first
// use. Its layout is a runtime array of blocks, each holding a single
// runtime array of words:
//
//	buffers[index].words[wordOffset]
//
// so an access chain into it takes (index, 0, wordOffset).
func (m *Module) Buffers() ir.Value {
	if m.buffers.IsValid() {
		return m.buffers
	}

	word := m.DefineType(ir.Word)

	words := m.AllocID()
	m.globals = append(m.globals, inst(OpTypeRuntimeArray, uint32(words), uint32(word)))
	m.annotations = append(m.annotations, inst(OpDecorate, uint32(words), uint32(DecorationArrayStride), ir.WordBytes))
	m.types[words] = typeEntry{name: "uint[]"}

	block := m.AllocID()
	m.globals = append(m.globals, inst(OpTypeStruct, uint32(block), uint32(words)))
	m.annotations = append(m.annotations,
		inst(OpDecorate, uint32(block), uint32(DecorationBlock)),
		inst(OpMemberDecorate, uint32(block), 0, uint32(DecorationOffset), 0),
	)
	m.types[block] = typeEntry{name: "buffer"}

	array := m.AllocID()
	m.globals = append(m.globals, inst(OpTypeRuntimeArray, uint32(array), uint32(block)))
	m.types[array] = typeEntry{name: "buffer[]"}

	ptr := m.pointerType(StorageClassStorageBuffer, array)
	v := m.AllocID()
	m.globals = append(m.globals, inst(OpVariable, uint32(ptr), uint32(v), uint32(StorageClassStorageBuffer)))
	m.annotations = append(m.annotations,
		inst(OpDecorate, uint32(v), uint32(DecorationDescriptorSet), m.opts.DescriptorSet),
		inst(OpDecorate, uint32(v), uint32(DecorationBinding), m.opts.Binding),
	)

	m.addCapability(CapabilityRuntimeDescriptorArray)
	m.addExtension(extDescriptorIndexing)

	if m.opts.Debug {
		m.debugName(block, "buffer")
		m.debugName(v, "bindless_buffers")
	}

	m.buffers = ir.Value{ID: v, Type: ptr}
	Logger().Debug("bindless buffer array defined",
		zap.Uint32("id", uint32(v)),
		zap.Uint32("set", m.opts.DescriptorSet),
		zap.Uint32("binding", m.opts.Binding))
	return m.buffers
}

// IsBuffers reports whether id is the bindless buffer array variable.
func (m *Module) IsBuffers(id ir.ID) bool {
	return m.buffers.IsValid() && m.buffers.ID == id
}

// NewFunction starts a function returning result and taking params.
// The function is exported through linkage attributes under name.
func (m *Module) NewFunction(name string, result ir.ID, params ...ir.ID) *Function {
	f := &Function{
		m:      m,
		Name:   name,
		Result: result,
		typeID: m.functionType(result, params),
	}
	f.ID = m.AllocID()
	for _, p := range params {
		f.Params = append(f.Params, ir.Value{ID: m.AllocID(), Type: p})
	}
	f.label = m.AllocID()

	decoration := append([]uint32{uint32(f.ID), uint32(DecorationLinkageAttributes)}, stringWords(name)...)
	m.annotations = append(m.annotations, inst(OpDecorate, append(decoration, linkageTypeExport)...))
	if m.opts.Debug {
		m.debugName(f.ID, name)
	}

	m.functions = append(m.functions, f)
	return f
}

// Function returns the function exported under name.
func (m *Module) Function(name string) (*Function, bool) {
	for _, f := range m.functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// RemoveFunction drops f together with its linkage decoration and debug
// name. Types and constants it introduced stay defined. It reports whether
// f belonged to the module.
func (m *Module) RemoveFunction(f *Function) bool {
	idx := -1
	for i, g := range m.functions {
		if g == f {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	m.functions = append(m.functions[:idx], m.functions[idx+1:]...)
	m.annotations = dropTargeting(m.annotations, f.ID)
	m.debug = dropTargeting(m.debug, f.ID)

	Logger().Debug("function removed", zap.String("name", f.Name), zap.Uint32("id", uint32(f.ID)))
	return true
}

// dropTargeting removes the instructions whose first operand is id.
func dropTargeting(insts []Instruction, id ir.ID) []Instruction {
	out := insts[:0]
	for _, in := range insts {
		if len(in.Operands) > 0 && in.Operands[0] == uint32(id) {
			continue
		}
		out = append(out, in)
	}
	return out
}

// Functions returns the functions in definition order.
func (m *Module) Functions() []*Function {
	return m.functions
}

func (m *Module) debugName(id ir.ID, name string) {
	m.debug = append(m.debug, inst(OpName, append([]uint32{uint32(id)}, stringWords(name)...)...))
}

// Instructions returns the module body in logical layout order.
func (m *Module) Instructions() []Instruction {
	var out []Instruction
	for _, c := range m.capabilities {
		out = append(out, inst(OpCapability, uint32(c)))
	}
	for _, e := range m.extensions {
		out = append(out, inst(OpExtension, stringWords(e)...))
	}
	out = append(out, inst(OpMemoryModel, addressingModelLogical, memoryModelGLSL450))
	out = append(out, m.debug...)
	out = append(out, m.annotations...)
	out = append(out, m.globals...)
	for _, f := range m.functions {
		out = append(out, f.Instructions()...)
	}
	return out
}

func (m *Module) String() string {
	return fmt.Sprintf("spirv module (bound %d, %d functions)", m.bound, len(m.functions))
}
