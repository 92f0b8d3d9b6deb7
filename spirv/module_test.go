package spirv_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
	"github.com/wippyai/spirv-bindless/spirv"
)

func TestModule_DefineTypeDedup(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})

	u32 := m.DefineType(ir.Word)
	if again := m.DefineType(ir.Integer{Bits: 32}); again != u32 {
		t.Errorf("u32 defined twice: %d and %d", u32, again)
	}
	s32 := m.DefineType(ir.Integer{Bits: 32, Signed: true})
	if s32 == u32 {
		t.Error("signed and unsigned words share an id")
	}

	vec := m.DefineType(ir.Vector{Count: 2, Element: u32})
	if again := m.DefineType(ir.Vector{Count: 2, Element: u32}); again != vec {
		t.Errorf("vector defined twice: %d and %d", vec, again)
	}

	layout, err := m.LayoutOf(vec)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	if diff := cmp.Diff(ir.Type(ir.Vector{Count: 2, Element: u32}), layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestModule_LayoutOfUnknown(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})
	_, err := m.LayoutOf(42)
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestModule_IntegerCapabilities(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})
	m.DefineType(ir.Integer{Bits: 16})
	m.DefineType(ir.Integer{Bits: 16, Signed: true})

	count := strings.Count(m.Disassemble(), "OpCapability Int16")
	if count != 1 {
		t.Errorf("expected one Int16 capability, got %d", count)
	}
}

func TestModule_ConstantInt(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})
	u32 := m.DefineType(ir.Word)
	u8 := m.DefineType(ir.Integer{Bits: 8})

	a := m.ConstantInt(u32, 2)
	b := m.ConstantInt(u32, 2)
	if a != b {
		t.Errorf("constant not deduplicated: %v vs %v", a, b)
	}

	c := m.ConstantInt(u8, 0x1ff)
	v, ok := m.ConstantValue(c.ID)
	if !ok || v != 0xff {
		t.Errorf("u8 constant = %d, %v; want 255", v, ok)
	}

	if err := m.Err(); err != nil {
		t.Errorf("unexpected module error: %v", err)
	}
}

func TestModule_ConstantNonInteger(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})
	vec := m.DefineType(ir.Vector{Count: 2, Element: m.DefineType(ir.Word)})
	m.ConstantInt(vec, 1)
	if !errors.IsKind(m.Err(), errors.KindTypeMismatch) {
		t.Errorf("expected type mismatch, got %v", m.Err())
	}
}

func TestModule_Buffers(t *testing.T) {
	m := spirv.NewModule(spirv.Options{DescriptorSet: 1, Binding: 3})
	first := m.Buffers()
	second := m.Buffers()
	if first != second {
		t.Fatalf("Buffers not memoized: %v vs %v", first, second)
	}
	if !m.IsBuffers(first.ID) {
		t.Error("IsBuffers rejects the buffer variable")
	}
	class, ok := m.StorageClassOf(first.Type)
	if !ok || class != spirv.StorageClassStorageBuffer {
		t.Errorf("buffer storage class = %v, %v", class, ok)
	}

	text := m.Disassemble()
	for _, want := range []string{
		"OpCapability RuntimeDescriptorArray",
		`OpExtension "SPV_EXT_descriptor_indexing"`,
		"DescriptorSet 1",
		"Binding 3",
		"ArrayStride 4",
		"Block",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}
	if n := strings.Count(text, "OpExtension"); n != 1 {
		t.Errorf("expected one extension, got %d", n)
	}
}

func TestFunction_IndexedAccessStorageClass(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})
	u32 := m.DefineType(ir.Word)
	fn := m.NewFunction("f", m.Void(), u32)

	ptr := fn.IndexedAccess(u32, m.Buffers(), fn.Params[0], fn.ConstantInt(u32, 0), fn.ConstantInt(u32, 1))
	class, ok := m.StorageClassOf(ptr.Type)
	if !ok || class != spirv.StorageClassStorageBuffer {
		t.Errorf("access chain class = %v, %v", class, ok)
	}

	local := fn.Variable(u32)
	class, ok = m.StorageClassOf(local.Type)
	if !ok || class != spirv.StorageClassFunction {
		t.Errorf("variable class = %v, %v", class, ok)
	}
}

func TestFunction_EmitAfterReturn(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})
	u32 := m.DefineType(ir.Word)
	fn := m.NewFunction("f", m.Void(), u32)
	fn.Return()
	fn.BitCast(u32, fn.Params[0])

	if !errors.IsKind(m.Err(), errors.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", m.Err())
	}
	if err := m.Validate(); err == nil {
		t.Error("Validate accepted a module with emission errors")
	}
}

func TestFunction_Instructions(t *testing.T) {
	m := spirv.NewModule(spirv.Options{})
	u32 := m.DefineType(ir.Word)
	s32 := m.DefineType(ir.Integer{Bits: 32, Signed: true})
	fn := m.NewFunction("cast", s32, u32)
	v := fn.BitCast(s32, fn.Params[0])
	fn.ReturnValue(v)

	var ops []spirv.Op
	for _, in := range fn.Instructions() {
		ops = append(ops, in.Op)
	}
	want := []spirv.Op{
		spirv.OpFunction,
		spirv.OpFunctionParameter,
		spirv.OpLabel,
		spirv.OpBitcast,
		spirv.OpReturnValue,
		spirv.OpFunctionEnd,
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("function layout mismatch (-want +got):\n%s", diff)
	}
	if !fn.Terminated() {
		t.Error("function not terminated")
	}
	if got, ok := m.Function("cast"); !ok || got != fn {
		t.Error("Function lookup failed")
	}
}

func TestModule_RemoveFunction(t *testing.T) {
	m := spirv.NewModule(spirv.Options{Debug: true})
	u32 := m.DefineType(ir.Word)
	keep := m.NewFunction("keep", u32, u32)
	keep.ReturnValue(keep.Params[0])
	drop := m.NewFunction("drop", u32, u32)

	if !m.RemoveFunction(drop) {
		t.Fatal("RemoveFunction(drop) = false")
	}
	if m.RemoveFunction(drop) {
		t.Error("second RemoveFunction(drop) = true")
	}
	if _, ok := m.Function("drop"); ok {
		t.Error("removed function still found")
	}
	if fns := m.Functions(); len(fns) != 1 || fns[0] != keep {
		t.Errorf("functions = %v, want only keep", fns)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if text := m.Disassemble(); strings.Contains(text, `"drop"`) {
		t.Errorf("disassembly still names the removed function:\n%s", text)
	}
}

func TestModule_EncodeHeader(t *testing.T) {
	m := spirv.NewModule(spirv.Options{Generator: 7})
	m.DefineType(ir.Word)
	words := m.Encode()

	if len(words) < 5 {
		t.Fatalf("encoded module too short: %d words", len(words))
	}
	want := []uint32{spirv.Magic, spirv.Version1_3, 7, m.Bound(), 0}
	if diff := cmp.Diff(want, words[:5]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestModule_Validate(t *testing.T) {
	m := spirv.NewModule(spirv.Options{Debug: true})
	u32 := m.DefineType(ir.Word)
	pair := m.DefineType(ir.Adt{
		Name:         "pair",
		FieldTypes:   []ir.ID{u32, u32},
		FieldOffsets: []uint32{0, 4},
		FieldNames:   []string{"a", "b"},
	})
	fn := m.NewFunction("first", u32, pair)
	fn.ReturnValue(fn.CompositeExtract(u32, fn.Params[0], 0))

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	text := m.Disassemble()
	for _, want := range []string{
		`OpName %` + itoa(uint32(pair)) + ` "pair"`,
		`OpMemberName %` + itoa(uint32(pair)) + ` 1 "b"`,
		`LinkageAttributes "first" Export`,
		"OpMemberDecorate %" + itoa(uint32(pair)) + " 1 Offset 4",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
