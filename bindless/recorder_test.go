package bindless_test

import (
	"strconv"

	"github.com/wippyai/spirv-bindless/bindless"
	"github.com/wippyai/spirv-bindless/ir"
	"github.com/wippyai/spirv-bindless/spirv"
)

var _ bindless.Emitter = (*spirv.Function)(nil)

// wordAccess is a buffer access with its index and word address folded to
// constants where possible (-1 when dynamic).
type wordAccess struct {
	Value ir.ID
	Index int64
	Word  int64
}

// recorder is an Emitter over an ir.Table that records the operations it
// is asked for and folds constant address arithmetic.
type recorder struct {
	*ir.Table
	known     map[ir.ID]int64
	ptrs      map[ir.ID]wordAccess
	ops       []string
	stores    []wordAccess
	loads     []wordAccess
	resources ir.Value
	next      ir.ID
}

func newRecorder() *recorder {
	r := &recorder{
		Table: ir.NewTable(),
		known: make(map[ir.ID]int64),
		ptrs:  make(map[ir.ID]wordAccess),
		next:  1000,
	}
	r.resources = r.value(r.DefineType(ir.Pointer{Pointee: r.DefineType(ir.Void{})}))
	return r
}

func (r *recorder) session(opts bindless.Options) *bindless.Session {
	return bindless.NewSession(r, r, r.resources, opts)
}

func (r *recorder) value(t ir.ID) ir.Value {
	r.next++
	return ir.Value{ID: r.next, Type: t}
}

// param returns a dynamic value of type t.
func (r *recorder) param(t ir.Type) ir.Value {
	return r.value(r.DefineType(t))
}

func (r *recorder) fold(id ir.ID) int64 {
	if v, ok := r.known[id]; ok {
		return v
	}
	return -1
}

func (r *recorder) ConstantInt(t ir.ID, v uint64) ir.Value {
	c := r.value(t)
	r.known[c.ID] = int64(v)
	return c
}

func (r *recorder) BitCast(t ir.ID, v ir.Value) ir.Value {
	r.ops = append(r.ops, "bitcast")
	return r.value(t)
}

func (r *recorder) ShiftRightArithmetic(t ir.ID, v, amount ir.Value) ir.Value {
	r.ops = append(r.ops, "shift")
	out := r.value(t)
	if a, ok := r.known[v.ID]; ok {
		r.known[out.ID] = int64(int32(uint32(a))) >> r.known[amount.ID]
	}
	return out
}

func (r *recorder) IntegerAdd(t ir.ID, a, b ir.Value) ir.Value {
	r.ops = append(r.ops, "add")
	out := r.value(t)
	x, okA := r.known[a.ID]
	y, okB := r.known[b.ID]
	if okA && okB {
		r.known[out.ID] = x + y
	}
	return out
}

func (r *recorder) IndexedAccess(pointee ir.ID, base ir.Value, indices ...ir.Value) ir.Value {
	r.ops = append(r.ops, "access")
	ptr := r.value(r.DefineType(ir.Pointer{Pointee: pointee}))
	if base == r.resources && len(indices) == 3 && r.fold(indices[1].ID) == 0 {
		r.ptrs[ptr.ID] = wordAccess{Index: r.fold(indices[0].ID), Word: r.fold(indices[2].ID)}
	}
	return ptr
}

func (r *recorder) Load(t ir.ID, ptr ir.Value) ir.Value {
	r.ops = append(r.ops, "load")
	out := r.value(t)
	if a, ok := r.ptrs[ptr.ID]; ok {
		a.Value = out.ID
		r.loads = append(r.loads, a)
	}
	return out
}

func (r *recorder) Store(ptr, v ir.Value) {
	r.ops = append(r.ops, "store")
	if a, ok := r.ptrs[ptr.ID]; ok {
		a.Value = v.ID
		r.stores = append(r.stores, a)
	}
}

func (r *recorder) CompositeConstruct(t ir.ID, parts []ir.Value) ir.Value {
	r.ops = append(r.ops, "construct/"+strconv.Itoa(len(parts)))
	return r.value(t)
}

func (r *recorder) CompositeExtract(t ir.ID, v ir.Value, index uint32) ir.Value {
	r.ops = append(r.ops, "extract")
	return r.value(t)
}

func (r *recorder) Unit() ir.Value {
	return ir.Value{Type: r.DefineType(ir.Void{})}
}

// words returns the word addresses of accesses, in order.
func words(as []wordAccess) []int64 {
	out := make([]int64, len(as))
	for i, a := range as {
		out[i] = a.Word
	}
	return out
}
