package spirv

import (
	"github.com/wippyai/spirv-bindless/errors"
	"github.com/wippyai/spirv-bindless/ir"
)

// Validate checks the structural rules the rest of this module relies on:
// every opcode is known, result ids are unique and below the bound, ids are
// defined before use (debug names and decorations may refer forward), and
// every function has one entry block ending in a return.
func (b *Binary) Validate() error {
	defined := make(map[uint32]bool)
	var forward []forwardRef
	inFunction := false
	labelled := false
	terminated := false

	for idx, in := range b.Instructions {
		info, ok := opInfos[in.Op]
		if !ok {
			return errors.New(errors.PhaseDecode, errors.KindUnsupported).
				Path("instruction " + itoa(uint32(idx))).
				Value(uint32(in.Op)).
				Detail("unknown opcode %d", uint32(in.Op)).
				Build()
		}

		if inFunction && terminated && in.Op != OpFunctionEnd {
			return invalid(idx, in, "instruction after block terminator")
		}

		if id, ok := in.ResultID(); ok {
			switch {
			case id == ir.NoID:
				return invalid(idx, in, "result id 0")
			case uint32(id) >= b.Bound:
				return errors.OutOfBounds(errors.PhaseDecode, []string{in.Op.String()}, int(id), int(b.Bound))
			case defined[uint32(id)]:
				return invalid(idx, in, "duplicate result id %"+itoa(uint32(id)))
			}
		}

		lateBinding := in.Op == OpName || in.Op == OpMemberName || in.Op == OpDecorate || in.Op == OpMemberDecorate
		for _, ref := range operandIDs(info, in) {
			if lateBinding {
				forward = append(forward, forwardRef{idx: idx, in: in, id: ref})
				continue
			}
			if !defined[ref] {
				return invalid(idx, in, "use of undefined id %"+itoa(ref))
			}
		}

		if id, ok := in.ResultID(); ok {
			defined[uint32(id)] = true
		}

		switch in.Op {
		case OpFunction:
			if inFunction {
				return invalid(idx, in, "nested function")
			}
			inFunction, labelled, terminated = true, false, false
		case OpLabel:
			if !inFunction {
				return invalid(idx, in, "label outside a function")
			}
			if labelled {
				return invalid(idx, in, "more than one block")
			}
			labelled = true
		case OpReturn, OpReturnValue:
			if !labelled {
				return invalid(idx, in, "return outside a block")
			}
			terminated = true
		case OpFunctionEnd:
			if !inFunction || !terminated {
				return invalid(idx, in, "function is not terminated")
			}
			inFunction = false
		default:
			if inFunction && in.Op != OpFunctionParameter && !labelled {
				return invalid(idx, in, "instruction before the entry label")
			}
		}
	}

	if inFunction {
		return errors.InvalidData(errors.PhaseDecode, nil, "missing OpFunctionEnd")
	}
	for _, f := range forward {
		if !defined[f.id] {
			return invalid(f.idx, f.in, "reference to undefined id %"+itoa(f.id))
		}
	}
	return nil
}

// Validate checks the module for recorded emission errors, then validates
// its encoded form.
func (m *Module) Validate() error {
	if m.err != nil {
		return m.err
	}
	b, err := Decode(m.Encode())
	if err != nil {
		return err
	}
	return b.Validate()
}

type forwardRef struct {
	in  Instruction
	idx int
	id  uint32
}

// operandIDs returns the id operands of in, result type included and
// result id excluded.
func operandIDs(info opInfo, in Instruction) []uint32 {
	ops := in.Operands
	var out []uint32
	if info.typed && len(ops) > 0 {
		out = append(out, ops[0])
		ops = ops[1:]
	}
	if info.result && len(ops) > 0 {
		ops = ops[1:]
	}

	k := 0
	var prev byte = 'l'
	for len(ops) > 0 {
		kind := prev
		if k < len(info.operands) {
			kind = info.operands[k]
			if kind == '+' {
				kind = prev
			} else {
				k++
			}
		}
		prev = kind

		switch kind {
		case 'i':
			out = append(out, ops[0])
			ops = ops[1:]
		case 's':
			_, n, ok := decodeString(ops)
			if !ok {
				return out
			}
			ops = ops[n:]
		case 'c':
			ops = ops[1:]
			prev = 'i'
		case 'd':
			// decoration literals, including linkage names, carry no ids
			return out
		default:
			ops = ops[1:]
		}
	}
	return out
}

func invalid(idx int, in Instruction, detail string) *errors.Error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path("instruction "+itoa(uint32(idx)), in.Op.String()).
		Detail("%s", detail).
		Build()
}
