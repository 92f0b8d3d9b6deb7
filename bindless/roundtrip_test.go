package bindless_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/spirv-bindless/bindless"
	"github.com/wippyai/spirv-bindless/exec"
	"github.com/wippyai/spirv-bindless/ir"
	"github.com/wippyai/spirv-bindless/spirv"
)

var sandbox = exec.Config{Buffers: 8, WordsPerBuffer: 32}

func program(t *testing.T, mod *spirv.Module, name string) *exec.Program {
	t.Helper()
	ctx := context.Background()
	prog, err := exec.Compile(ctx, mod, name, sandbox)
	if err != nil {
		t.Fatalf("Compile(%s): %v\n%s", name, err, mod.Disassemble())
	}
	t.Cleanup(func() { prog.Close(ctx) })
	return prog
}

func emptyBuffers() [][]uint32 {
	out := make([][]uint32, sandbox.Buffers)
	for i := range out {
		out[i] = make([]uint32, sandbox.WordsPerBuffer)
	}
	return out
}

func TestRoundTrip_Aggregate(t *testing.T) {
	mod := spirv.NewModule(spirv.Options{Debug: true})
	u32 := mod.DefineType(ir.Word)
	s32 := mod.DefineType(ir.Integer{Bits: 32, Signed: true})
	rec := mod.DefineType(ir.Adt{
		Name:         "rec",
		FieldTypes:   []ir.ID{u32, s32, u32},
		FieldOffsets: []uint32{0, 4, 12},
		FieldNames:   []string{"a", "b", "c"},
	})

	if _, err := bindless.DefineStore(mod, "store", rec, bindless.DefaultOptions()); err != nil {
		t.Fatalf("DefineStore: %v", err)
	}
	if _, err := bindless.DefineLoad(mod, "load", rec, false, bindless.DefaultOptions()); err != nil {
		t.Fatalf("DefineLoad: %v", err)
	}
	store := program(t, mod, "store")
	load := program(t, mod, "load")
	ctx := context.Background()

	values := []uint32{10, 0xffffffff, 30}
	buffers := emptyBuffers()
	if _, err := store.Run(ctx, buffers, append([]uint32{3, 8}, values...)...); err != nil {
		t.Fatalf("store: %v", err)
	}

	// a at word 2, b at word 3, c at word 5; word 4 is padding
	if diff := cmp.Diff([]uint32{0, 0, 10, 0xffffffff, 0, 30, 0}, buffers[3][:7]); diff != "" {
		t.Errorf("buffer 3 mismatch (-want +got):\n%s", diff)
	}
	for i, b := range buffers {
		if i == 3 {
			continue
		}
		for _, w := range b {
			if w != 0 {
				t.Fatalf("store touched buffer %d", i)
			}
		}
	}

	got, err := load.Run(ctx, buffers, 3, 8)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_ScenarioA(t *testing.T) {
	mod := spirv.NewModule(spirv.Options{})
	u32 := mod.DefineType(ir.Word)
	pair := mod.DefineType(ir.Adt{FieldTypes: []ir.ID{u32, u32}, FieldOffsets: []uint32{0, 4}})
	if _, err := bindless.DefineStore(mod, "store", pair, bindless.DefaultOptions()); err != nil {
		t.Fatalf("DefineStore: %v", err)
	}

	buffers := emptyBuffers()
	if _, err := program(t, mod, "store").Run(context.Background(), buffers, 3, 8, 10, 20); err != nil {
		t.Fatalf("store: %v", err)
	}
	if diff := cmp.Diff([]uint32{0, 0, 10, 20, 0}, buffers[3][:5]); diff != "" {
		t.Errorf("buffer 3 mismatch (-want +got):\n%s", diff)
	}

	text := mod.Disassemble()
	if n := strings.Count(text, "OpStore"); n != 2 {
		t.Errorf("expected 2 OpStore, got %d:\n%s", n, text)
	}
}

func TestRoundTrip_Vector(t *testing.T) {
	mod := spirv.NewModule(spirv.Options{})
	u32 := mod.DefineType(ir.Word)
	vec4 := mod.DefineType(ir.Vector{Count: 4, Element: u32})
	if _, err := bindless.DefineLoad(mod, "load", vec4, false, bindless.DefaultOptions()); err != nil {
		t.Fatalf("DefineLoad: %v", err)
	}

	buffers := emptyBuffers()
	copy(buffers[5][1:], []uint32{7, 8, 9, 10})

	got, err := program(t, mod, "load").Run(context.Background(), buffers, 5, 4)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]uint32{7, 8, 9, 10}, got); diff != "" {
		t.Errorf("vector mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_ScenarioB(t *testing.T) {
	mod := spirv.NewModule(spirv.Options{})
	u32 := mod.DefineType(ir.Word)
	vec2 := mod.DefineType(ir.Vector{Count: 2, Element: u32})
	fn, err := bindless.DefineLoad(mod, "load", vec2, false, bindless.DefaultOptions())
	if err != nil {
		t.Fatalf("DefineLoad: %v", err)
	}

	var ops []spirv.Op
	for _, in := range fn.Body() {
		switch in.Op {
		case spirv.OpLoad, spirv.OpCompositeConstruct:
			ops = append(ops, in.Op)
		}
	}
	want := []spirv.Op{spirv.OpLoad, spirv.OpLoad, spirv.OpCompositeConstruct}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("load shape mismatch (-want +got):\n%s", diff)
	}

	buffers := emptyBuffers()
	buffers[5][0], buffers[5][1] = 11, 12
	got, err := program(t, mod, "load").Run(context.Background(), buffers, 5, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]uint32{11, 12}, got); diff != "" {
		t.Errorf("vector mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_OutPointer(t *testing.T) {
	mod := spirv.NewModule(spirv.Options{})
	u32 := mod.DefineType(ir.Word)
	vec2 := mod.DefineType(ir.Vector{Count: 2, Element: u32})
	rec := mod.DefineType(ir.Adt{
		FieldTypes:   []ir.ID{vec2, u32},
		FieldOffsets: []uint32{0, 8},
	})
	if _, err := bindless.DefineLoad(mod, "load_into", rec, true, bindless.DefaultOptions()); err != nil {
		t.Fatalf("DefineLoad: %v", err)
	}

	prog := program(t, mod, "load_into")
	if got := prog.ArgWords(); got != 2 {
		t.Errorf("ArgWords = %d, want 2", got)
	}

	buffers := emptyBuffers()
	copy(buffers[1][4:], []uint32{1, 2, 3})
	got, err := prog.Run(context.Background(), buffers, 1, 16)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]uint32{1, 2, 3}, got); diff != "" {
		t.Errorf("out value mismatch (-want +got):\n%s", diff)
	}
}

func TestDefineStore_FailureLeavesModuleUsable(t *testing.T) {
	mod := spirv.NewModule(spirv.Options{Debug: true})
	u32 := mod.DefineType(ir.Word)
	u16 := mod.DefineType(ir.Integer{Bits: 16})
	narrow := mod.DefineType(ir.Adt{FieldTypes: []ir.ID{u16}, FieldOffsets: []uint32{0}})

	if _, err := bindless.DefineStore(mod, "bad", narrow, bindless.DefaultOptions()); err == nil {
		t.Fatal("expected DefineStore to fail on a 16-bit field")
	}
	if _, err := bindless.DefineLoad(mod, "good", u32, false, bindless.DefaultOptions()); err != nil {
		t.Fatalf("DefineLoad: %v", err)
	}

	if _, ok := mod.Function("bad"); ok {
		t.Error("failed function is still registered")
	}
	if got := len(mod.Functions()); got != 1 {
		t.Errorf("module has %d functions, want 1", got)
	}
	if err := mod.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	buffers := emptyBuffers()
	buffers[2][1] = 42
	got, err := program(t, mod, "good").Run(context.Background(), buffers, 2, 4)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]uint32{42}, got); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_NestedRecursion(t *testing.T) {
	mod := spirv.NewModule(spirv.Options{})
	u32 := mod.DefineType(ir.Word)
	inner := mod.DefineType(ir.Adt{Name: "inner", FieldTypes: []ir.ID{u32, u32}, FieldOffsets: []uint32{0, 4}})
	outer := mod.DefineType(ir.Adt{
		Name:         "outer",
		FieldTypes:   []ir.ID{u32, inner},
		FieldOffsets: []uint32{0, 8},
		FieldNames:   []string{"head", "tail"},
	})

	if _, err := bindless.DefineLoad(mod, "strict", outer, false, bindless.DefaultOptions()); err == nil {
		t.Fatal("strict load of a nested aggregate succeeded")
	}

	mod = spirv.NewModule(spirv.Options{})
	u32 = mod.DefineType(ir.Word)
	inner = mod.DefineType(ir.Adt{Name: "inner", FieldTypes: []ir.ID{u32, u32}, FieldOffsets: []uint32{0, 4}})
	outer = mod.DefineType(ir.Adt{
		Name:         "outer",
		FieldTypes:   []ir.ID{u32, inner},
		FieldOffsets: []uint32{0, 8},
		FieldNames:   []string{"head", "tail"},
	})
	opts := bindless.Options{RecurseNestedAggregates: true}
	if _, err := bindless.DefineStore(mod, "store", outer, opts); err != nil {
		t.Fatalf("DefineStore: %v", err)
	}
	if _, err := bindless.DefineLoad(mod, "load", outer, false, opts); err != nil {
		t.Fatalf("DefineLoad: %v", err)
	}

	ctx := context.Background()
	buffers := emptyBuffers()
	if _, err := program(t, mod, "store").Run(ctx, buffers, 0, 0, 1, 2, 3); err != nil {
		t.Fatalf("store: %v", err)
	}
	if diff := cmp.Diff([]uint32{1, 0, 2, 3}, buffers[0][:4]); diff != "" {
		t.Errorf("buffer 0 mismatch (-want +got):\n%s", diff)
	}
	got, err := program(t, mod, "load").Run(ctx, buffers, 0, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]uint32{1, 2, 3}, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
