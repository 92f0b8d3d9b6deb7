package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/spirv-bindless/bindless"
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/exec"
	"github.com/wippyai/spirv-bindless/ir"
	"github.com/wippyai/spirv-bindless/layout"
	"github.com/wippyai/spirv-bindless/spirv"
)

const (
	storeFunc = "store"
	loadFunc  = "load"
)

type buildOptions struct {
	fields     string
	op         string
	vector     uint
	misaligned bindless.MisalignedPolicy
	nested     bool
	outPointer bool
}

type artifact struct {
	mod       *spirv.Module
	functions []string
	valueType ir.ID
}

// buildModule defines the value type and lowers a store and/or load of it.
func buildModule(o buildOptions) (*artifact, error) {
	mod := spirv.NewModule(spirv.Options{Debug: true})

	var valueType ir.ID
	if o.vector > 0 {
		valueType = mod.DefineType(ir.Vector{Count: uint32(o.vector), Element: mod.DefineType(ir.Word)})
	} else {
		td, err := layout.ParseFields(o.fields)
		if err != nil {
			return nil, err
		}
		if valueType, err = layout.NewCalculator(mod).Define("value", td); err != nil {
			return nil, err
		}
	}

	opts := bindless.Options{Misaligned: o.misaligned, RecurseNestedAggregates: o.nested}
	a := &artifact{mod: mod, valueType: valueType}

	op := o.op
	if op == "both" && o.vector > 0 {
		// vectors are load-only
		op = loadFunc
	}
	switch op {
	case storeFunc, "both":
		if _, err := bindless.DefineStore(mod, storeFunc, valueType, opts); err != nil {
			return nil, err
		}
		a.functions = append(a.functions, storeFunc)
	case loadFunc:
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(o.op).
			Detail("op must be store, load or both, got %q", o.op).
			Build()
	}
	if op == loadFunc || op == "both" {
		if _, err := bindless.DefineLoad(mod, loadFunc, valueType, o.outPointer, opts); err != nil {
			return nil, err
		}
		a.functions = append(a.functions, loadFunc)
	}

	if err := mod.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

type execution struct {
	buffer []uint32
	loaded []uint32
	index  uint32
	stored bool
}

// execute runs the artifact's functions in the sandbox: the store first,
// then the load against the buffers the store left behind.
func execute(ctx context.Context, a *artifact, index, offset uint32, values []uint32) (*execution, error) {
	cfg := exec.Config{}
	buffers := make([][]uint32, 8)
	for i := range buffers {
		buffers[i] = make([]uint32, 256)
	}
	if index >= uint32(len(buffers)) {
		return nil, errors.OutOfBounds(errors.PhaseExec, []string{"index"}, int(index), len(buffers))
	}

	res := &execution{index: index}
	for _, name := range a.functions {
		prog, err := exec.Compile(ctx, a.mod, name, cfg)
		if err != nil {
			return nil, err
		}

		switch name {
		case storeFunc:
			want := prog.ArgWords() - 2
			if len(values) != want {
				_ = prog.Close(ctx)
				return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
					Path("values").
					Detail("the stored value has %d words, got %d", want, len(values)).
					Build()
			}
			_, err = prog.Run(ctx, buffers, append([]uint32{index, offset}, values...)...)
			res.stored = true
		case loadFunc:
			res.loaded, err = prog.Run(ctx, buffers, index, offset)
		}
		_ = prog.Close(ctx)
		if err != nil {
			return nil, err
		}
	}

	res.buffer = trimZeros(buffers[index])
	return res, nil
}

func (e *execution) String() string {
	var b strings.Builder
	if e.stored {
		fmt.Fprintf(&b, "buffer %d: %s\n", e.index, formatWords(e.buffer))
	}
	if e.loaded != nil {
		fmt.Fprintf(&b, "loaded:   %s\n", formatWords(e.loaded))
	}
	return b.String()
}

// parseWords parses a comma-separated list of integers. Negative values
// are stored as their two's complement bit pattern.
func parseWords(s string) ([]uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		v, err := strconv.ParseInt(part, 0, 64)
		if err != nil || v < -1<<31 || v > 1<<32-1 {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path("values").
				Value(part).
				Detail("%q is not a 32-bit integer", part).
				Build()
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

func formatWords(ws []uint32) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = "0x" + strconv.FormatUint(uint64(w), 16)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func trimZeros(ws []uint32) []uint32 {
	n := len(ws)
	for n > 0 && ws[n-1] == 0 {
		n--
	}
	return ws[:n]
}
