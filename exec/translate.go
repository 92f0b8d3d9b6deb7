package exec

import (
	"strconv"

	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/exec/internal/wasmenc"
	"github.com/wippyai/spirv-bindless/ir"
	"github.com/wippyai/spirv-bindless/spirv"
)

// scalar is one i32 component of a value: a local or an inline constant.
type scalar struct {
	local   uint32
	konst   uint32
	isConst bool
}

type operand struct {
	parts []scalar
	typ   ir.ID
}

// pointer is either a byte address into buffer memory or a group of locals
// holding a Function-storage value.
type pointer struct {
	locals  []uint32
	addr    scalar
	pointee ir.ID
	memory  bool
}

// Param describes one SPIR-V parameter of a compiled function.
type Param struct {
	// Words is the number of i32 arguments (or, for Out, results) it maps to.
	Words int
	// Out marks a Function-storage pointer parameter. Its final pointee
	// value is appended to the results instead of being passed in.
	Out bool
}

type translator struct {
	mod     *spirv.Module
	fn      *spirv.Function
	code    *wasmenc.Writer
	values  map[ir.ID]operand
	ptrs    map[ir.ID]pointer
	outs    []pointer
	params  []Param
	cfg     Config
	next    uint32
	nparams uint32
	nresult int
}

func newTranslator(mod *spirv.Module, fn *spirv.Function, cfg Config) *translator {
	return &translator{
		mod:    mod,
		fn:     fn,
		cfg:    cfg,
		code:   wasmenc.NewWriter(),
		values: make(map[ir.ID]operand),
		ptrs:   make(map[ir.ID]pointer),
	}
}

func (t *translator) translate() (wasmFunc, error) {
	if err := t.bindParams(); err != nil {
		return wasmFunc{}, err
	}
	for _, in := range t.fn.Variables() {
		if err := t.variable(in); err != nil {
			return wasmFunc{}, err
		}
	}
	for _, in := range t.fn.Body() {
		if err := t.instruction(in); err != nil {
			return wasmFunc{}, err
		}
	}
	if !t.fn.Terminated() {
		return wasmFunc{}, t.fail("OpFunctionEnd", "function is not terminated")
	}

	results := t.nresult
	for _, o := range t.outs {
		results += len(o.locals)
	}
	return wasmFunc{
		name:    t.fn.Name,
		code:    t.code.Bytes(),
		params:  int(t.nparams),
		results: results,
		locals:  int(t.next - t.nparams),
	}, nil
}

// bindParams assigns wasm parameters to value parameters first, then
// locals to out-pointer groups, since wasm parameters occupy the lowest
// local indices.
func (t *translator) bindParams() error {
	var outs []int
	for i, p := range t.fn.Params {
		if _, ok := t.functionPointee(p.Type); ok {
			outs = append(outs, i)
			t.params = append(t.params, Param{Out: true})
			continue
		}
		w, err := t.width(p.Type)
		if err != nil {
			return err
		}
		t.values[p.ID] = operand{parts: t.alloc(w), typ: p.Type}
		t.params = append(t.params, Param{Words: w})
	}
	t.nparams = t.next

	for _, i := range outs {
		p := t.fn.Params[i]
		pointee, _ := t.functionPointee(p.Type)
		w, err := t.width(pointee)
		if err != nil {
			return err
		}
		ptr := pointer{locals: locals(t.alloc(w)), pointee: pointee}
		t.ptrs[p.ID] = ptr
		t.outs = append(t.outs, ptr)
		t.params[i].Words = w
	}

	if _, isVoid := t.layout(t.fn.Result).(ir.Void); !isVoid {
		w, err := t.width(t.fn.Result)
		if err != nil {
			return err
		}
		t.nresult = w
	}
	return nil
}

func (t *translator) functionPointee(typ ir.ID) (ir.ID, bool) {
	p, ok := t.layout(typ).(ir.Pointer)
	if !ok {
		return ir.NoID, false
	}
	class, _ := t.mod.StorageClassOf(typ)
	return p.Pointee, class == spirv.StorageClassFunction
}

func (t *translator) variable(in spirv.Instruction) error {
	typ, id := ir.ID(in.Operands[0]), ir.ID(in.Operands[1])
	pointee, ok := t.functionPointee(typ)
	if !ok {
		return t.fail(in.Op.String(), "only Function-storage variables are supported")
	}
	w, err := t.width(pointee)
	if err != nil {
		return err
	}
	t.ptrs[id] = pointer{locals: locals(t.alloc(w)), pointee: pointee}
	return nil
}

func (t *translator) instruction(in spirv.Instruction) error {
	ops := in.Operands
	switch in.Op {
	case spirv.OpBitcast:
		v, err := t.operand(ops[2])
		if err != nil {
			return err
		}
		t.values[ir.ID(ops[1])] = operand{parts: v.parts, typ: ir.ID(ops[0])}

	case spirv.OpShiftRightArithmetic, spirv.OpIAdd:
		a, err := t.single(ops[2])
		if err != nil {
			return err
		}
		b, err := t.single(ops[3])
		if err != nil {
			return err
		}
		t.get(a)
		t.get(b)
		if in.Op == spirv.OpIAdd {
			t.code.Byte(opI32Add)
		} else {
			t.code.Byte(opI32ShrS)
		}
		t.values[ir.ID(ops[1])] = operand{parts: []scalar{t.set()}, typ: ir.ID(ops[0])}

	case spirv.OpAccessChain:
		return t.accessChain(ops)

	case spirv.OpLoad:
		ptr, err := t.pointer(ops[2])
		if err != nil {
			return err
		}
		if ptr.memory {
			t.get(ptr.addr)
			t.code.Byte(opI32Load, wordAlign, 0)
			t.values[ir.ID(ops[1])] = operand{parts: []scalar{t.set()}, typ: ir.ID(ops[0])}
			return nil
		}
		parts := make([]scalar, len(ptr.locals))
		for i, l := range ptr.locals {
			t.get(scalar{local: l})
			parts[i] = t.set()
		}
		t.values[ir.ID(ops[1])] = operand{parts: parts, typ: ir.ID(ops[0])}

	case spirv.OpStore:
		ptr, err := t.pointer(ops[0])
		if err != nil {
			return err
		}
		v, err := t.operand(ops[1])
		if err != nil {
			return err
		}
		if ptr.memory {
			if len(v.parts) != 1 {
				return t.fail(in.Op.String(), "buffer stores must be one word")
			}
			t.get(ptr.addr)
			t.get(v.parts[0])
			t.code.Byte(opI32Store, wordAlign, 0)
			return nil
		}
		if len(v.parts) != len(ptr.locals) {
			return t.fail(in.Op.String(), "stored value does not match the pointee width")
		}
		for i, l := range ptr.locals {
			t.get(v.parts[i])
			t.code.Byte(opLocalSet)
			t.code.WriteU32(l)
		}

	case spirv.OpCompositeConstruct:
		var parts []scalar
		for _, id := range ops[2:] {
			v, err := t.operand(id)
			if err != nil {
				return err
			}
			parts = append(parts, v.parts...)
		}
		t.values[ir.ID(ops[1])] = operand{parts: parts, typ: ir.ID(ops[0])}

	case spirv.OpCompositeExtract:
		v, err := t.operand(ops[2])
		if err != nil {
			return err
		}
		start, w, err := t.subRange(v.typ, ops[3:])
		if err != nil {
			return err
		}
		t.values[ir.ID(ops[1])] = operand{parts: v.parts[start : start+w], typ: ir.ID(ops[0])}

	case spirv.OpReturnValue:
		v, err := t.operand(ops[0])
		if err != nil {
			return err
		}
		for _, s := range v.parts {
			t.get(s)
		}
		t.pushOuts()

	case spirv.OpReturn:
		t.pushOuts()

	default:
		return errors.Unsupported(errors.PhaseExec, in.Op.String()+" in a sandboxed function")
	}
	return nil
}

// accessChain handles buffers[index][0][word] and constant-index chains
// into Function-storage values.
func (t *translator) accessChain(ops []uint32) error {
	id, base := ir.ID(ops[1]), ir.ID(ops[2])
	indices := ops[3:]
	resultPointee := ir.NoID
	if p, ok := t.layout(ir.ID(ops[0])).(ir.Pointer); ok {
		resultPointee = p.Pointee
	}

	if t.mod.IsBuffers(base) {
		if len(indices) != 3 {
			return t.fail("OpAccessChain", "buffer access needs (index, 0, word)")
		}
		idx, err := t.single(indices[0])
		if err != nil {
			return err
		}
		member, err := t.single(indices[1])
		if err != nil {
			return err
		}
		if !member.isConst || member.konst != 0 {
			return t.fail("OpAccessChain", "buffer member selector must be the constant 0")
		}
		word, err := t.single(indices[2])
		if err != nil {
			return err
		}

		t.trapUnless(idx, t.cfg.Buffers)
		t.trapUnless(word, t.cfg.WordsPerBuffer)

		t.get(idx)
		t.constant(t.cfg.WordsPerBuffer)
		t.code.Byte(opI32Mul)
		t.get(word)
		t.code.Byte(opI32Add)
		t.constant(4)
		t.code.Byte(opI32Mul)
		t.ptrs[id] = pointer{memory: true, addr: t.set(), pointee: resultPointee}
		return nil
	}

	ptr, err := t.pointer(uint32(base))
	if err != nil {
		return err
	}
	if ptr.memory {
		return t.fail("OpAccessChain", "chains through buffer pointers are not supported")
	}
	consts := make([]uint32, len(indices))
	for i, idx := range indices {
		s, err := t.single(idx)
		if err != nil {
			return err
		}
		if !s.isConst {
			return t.fail("OpAccessChain", "dynamic indices into local values are not supported")
		}
		consts[i] = s.konst
	}
	start, w, err := t.subRange(ptr.pointee, consts)
	if err != nil {
		return err
	}
	t.ptrs[id] = pointer{locals: ptr.locals[start : start+w], pointee: resultPointee}
	return nil
}

// trapUnless emits: if s >= limit (unsigned) then unreachable.
func (t *translator) trapUnless(s scalar, limit uint32) {
	t.get(s)
	t.constant(limit)
	t.code.Byte(opI32GeU, opIf, blockEmpty, opUnreachable, opEnd)
}

func (t *translator) pushOuts() {
	for _, o := range t.outs {
		for _, l := range o.locals {
			t.get(scalar{local: l})
		}
	}
}

func (t *translator) get(s scalar) {
	if s.isConst {
		t.constant(s.konst)
		return
	}
	t.code.Byte(opLocalGet)
	t.code.WriteU32(s.local)
}

func (t *translator) constant(v uint32) {
	t.code.Byte(opI32Const)
	t.code.WriteS32(int32(v))
}

// set pops the stack top into a fresh local.
func (t *translator) set() scalar {
	s := t.alloc(1)[0]
	t.code.Byte(opLocalSet)
	t.code.WriteU32(s.local)
	return s
}

func (t *translator) alloc(n int) []scalar {
	out := make([]scalar, n)
	for i := range out {
		out[i] = scalar{local: t.next}
		t.next++
	}
	return out
}

func locals(ss []scalar) []uint32 {
	out := make([]uint32, len(ss))
	for i, s := range ss {
		out[i] = s.local
	}
	return out
}

func (t *translator) operand(id uint32) (operand, error) {
	if v, ok := t.values[ir.ID(id)]; ok {
		return v, nil
	}
	if c, ok := t.mod.ConstantValue(ir.ID(id)); ok {
		return operand{parts: []scalar{{konst: uint32(c), isConst: true}}}, nil
	}
	return operand{}, t.fail("%"+itoa(id), "value is not defined in the function or as a constant")
}

func (t *translator) single(id uint32) (scalar, error) {
	v, err := t.operand(id)
	if err != nil {
		return scalar{}, err
	}
	if len(v.parts) != 1 {
		return scalar{}, t.fail("%"+itoa(id), "expected a single word")
	}
	return v.parts[0], nil
}

func (t *translator) pointer(id uint32) (pointer, error) {
	if p, ok := t.ptrs[ir.ID(id)]; ok {
		return p, nil
	}
	return pointer{}, t.fail("%"+itoa(id), "not a pointer known to the sandbox")
}

func (t *translator) layout(id ir.ID) ir.Type {
	l, err := t.mod.LayoutOf(id)
	if err != nil {
		return nil
	}
	return l
}

// width is the number of i32 words a value of type id flattens to.
func (t *translator) width(id ir.ID) (int, error) {
	switch l := t.layout(id).(type) {
	case ir.Integer:
		if l.Bits != 32 {
			return 0, errors.Unsupported(errors.PhaseExec, l.String()+" values")
		}
		return 1, nil
	case ir.Vector:
		w, err := t.width(l.Element)
		return int(l.Count) * w, err
	case ir.Adt:
		total := 0
		for _, f := range l.FieldTypes {
			w, err := t.width(f)
			if err != nil {
				return 0, err
			}
			total += w
		}
		return total, nil
	default:
		return 0, errors.Unsupported(errors.PhaseExec, "values of type "+ir.Describe(t.mod, id))
	}
}

// subRange locates the component selected by indices within the flattened
// words of a typ value.
func (t *translator) subRange(typ ir.ID, indices []uint32) (start, width int, err error) {
	for _, idx := range indices {
		switch l := t.layout(typ).(type) {
		case ir.Vector:
			if idx >= l.Count {
				return 0, 0, errors.OutOfBounds(errors.PhaseExec, []string{ir.Describe(t.mod, typ)}, int(idx), int(l.Count))
			}
			w, err := t.width(l.Element)
			if err != nil {
				return 0, 0, err
			}
			start += int(idx) * w
			typ = l.Element
		case ir.Adt:
			if int(idx) >= len(l.FieldTypes) {
				return 0, 0, errors.OutOfBounds(errors.PhaseExec, []string{ir.Describe(t.mod, typ)}, int(idx), len(l.FieldTypes))
			}
			for _, f := range l.FieldTypes[:idx] {
				w, err := t.width(f)
				if err != nil {
					return 0, 0, err
				}
				start += w
			}
			typ = l.FieldTypes[idx]
		default:
			return 0, 0, errors.Unsupported(errors.PhaseExec, "indexing into "+ir.Describe(t.mod, typ))
		}
	}
	width, err = t.width(typ)
	return start, width, err
}

func (t *translator) fail(where, detail string) *errors.Error {
	return errors.New(errors.PhaseExec, errors.KindInvalidInput).
		Path(t.fn.Name, where).
		Detail("%s", detail).
		Build()
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
