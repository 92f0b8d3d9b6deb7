package exec

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/spirv"
)

// Program is a SPIR-V function compiled to WebAssembly and loaded into a
// wazero runtime. Each Run gets a fresh instance and zeroed buffers.
type Program struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	name     string
	wasm     []byte
	params   []Param
	results  int
	cfg      Config
}

// Compile translates the function exported as name and compiles it.
// The module must validate.
func Compile(ctx context.Context, mod *spirv.Module, name string, cfg Config) (*Program, error) {
	cfg = cfg.withDefaults()
	if uint64(cfg.Buffers)*uint64(cfg.WordsPerBuffer)*4 > 1<<32 {
		return nil, errors.New(errors.PhaseExec, errors.KindInvalidInput).
			Detail("%d buffers of %d words exceed the 4GiB memory limit", cfg.Buffers, cfg.WordsPerBuffer).
			Build()
	}
	if name == MemoryExport {
		return nil, errors.New(errors.PhaseExec, errors.KindInvalidInput).
			Path(name).
			Detail("function name collides with the memory export").
			Build()
	}

	if err := mod.Validate(); err != nil {
		return nil, errors.Wrap(errors.PhaseExec, errors.KindInvalidData, err, "module does not validate")
	}
	fn, ok := mod.Function(name)
	if !ok {
		return nil, errors.New(errors.PhaseExec, errors.KindNotFound).
			Path(name).
			Detail("no exported function %q", name).
			Build()
	}

	t := newTranslator(mod, fn, cfg)
	wf, err := t.translate()
	if err != nil {
		return nil, err
	}
	bin := encodeModule(wf, cfg.pages())

	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.pages()))
	compiled, err := runtime.CompileModule(ctx, bin)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Wrap(errors.PhaseExec, errors.KindInstantiation, err, "compile sandbox module")
	}

	Logger().Debug("compiled sandbox program",
		zap.String("function", name),
		zap.Int("wasm_bytes", len(bin)),
		zap.Int("locals", wf.locals),
		zap.Int("results", wf.results))

	return &Program{
		runtime:  runtime,
		compiled: compiled,
		name:     name,
		wasm:     bin,
		params:   t.params,
		results:  wf.results,
		cfg:      cfg,
	}, nil
}

// Wasm returns the generated WebAssembly binary.
func (p *Program) Wasm() []byte {
	return p.wasm
}

// Params describes the SPIR-V parameters in order.
func (p *Program) Params() []Param {
	return p.params
}

// ArgWords returns the number of words Run expects in args.
func (p *Program) ArgWords() int {
	n := 0
	for _, param := range p.params {
		if !param.Out {
			n += param.Words
		}
	}
	return n
}

// ResultWords returns the number of words Run returns: the flattened
// return value followed by each out parameter's final value.
func (p *Program) ResultWords() int {
	return p.results
}

// Run copies buffers into sandbox memory, calls the function with the
// flattened args and copies the buffers back in place. Buffers may be
// shorter than Config.WordsPerBuffer; missing buffers and words read as 0.
func (p *Program) Run(ctx context.Context, buffers [][]uint32, args ...uint32) ([]uint32, error) {
	if len(buffers) > int(p.cfg.Buffers) {
		return nil, errors.OutOfBounds(errors.PhaseExec, []string{"buffers"}, len(buffers), int(p.cfg.Buffers))
	}
	for i, b := range buffers {
		if len(b) > int(p.cfg.WordsPerBuffer) {
			return nil, errors.OutOfBounds(errors.PhaseExec, []string{"buffers", itoa(uint32(i))}, len(b), int(p.cfg.WordsPerBuffer))
		}
	}
	if len(args) != p.ArgWords() {
		return nil, errors.New(errors.PhaseExec, errors.KindInvalidInput).
			Path(p.name).
			Detail("expected %d argument words, got %d", p.ArgWords(), len(args)).
			Build()
	}

	inst, err := p.runtime.InstantiateModule(ctx, p.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExec, errors.KindInstantiation, err, "instantiate sandbox module")
	}
	defer inst.Close(ctx)

	mem := inst.ExportedMemory(MemoryExport)
	for i, b := range buffers {
		base := uint32(i) * p.cfg.WordsPerBuffer * 4
		for j, w := range b {
			mem.WriteUint32Le(base+uint32(j)*4, w)
		}
	}

	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = uint64(a)
	}
	raw, err := inst.ExportedFunction(p.name).Call(ctx, params...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExec, errors.KindOutOfBounds, err, "sandbox trapped")
	}

	for i, b := range buffers {
		base := uint32(i) * p.cfg.WordsPerBuffer * 4
		for j := range b {
			b[j], _ = mem.ReadUint32Le(base + uint32(j)*4)
		}
	}

	out := make([]uint32, len(raw))
	for i, r := range raw {
		out[i] = uint32(r)
	}
	return out, nil
}

// Close releases the runtime.
func (p *Program) Close(ctx context.Context) error {
	return p.runtime.Close(ctx)
}
