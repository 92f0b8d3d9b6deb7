package spirv

import (
	"fmt"
	"strings"
)

// Disassemble renders a decoded module as text, one instruction per line,
// in the familiar "%id = OpName %type operands" form.
func (b *Binary) Disassemble() string {
	var sb strings.Builder
	sb.WriteString("; SPIR-V\n")
	fmt.Fprintf(&sb, "; Version: %d.%d\n", b.Version>>16&0xff, b.Version>>8&0xff)
	fmt.Fprintf(&sb, "; Generator: 0x%08x\n", b.Generator)
	fmt.Fprintf(&sb, "; Bound: %d\n", b.Bound)
	fmt.Fprintf(&sb, "; Schema: %d\n", b.Schema)
	writeInstructions(&sb, b.Instructions)
	return sb.String()
}

// Disassemble renders the module as text.
func (m *Module) Disassemble() string {
	b := &Binary{
		Version:      m.opts.Version,
		Generator:    m.opts.Generator,
		Bound:        m.bound,
		Instructions: m.Instructions(),
	}
	return b.Disassemble()
}

// Disassemble renders instructions without a header.
func Disassemble(insts []Instruction) string {
	var sb strings.Builder
	writeInstructions(&sb, insts)
	return sb.String()
}

func writeInstructions(sb *strings.Builder, insts []Instruction) {
	for _, in := range insts {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
}

// String renders a single instruction.
func (i Instruction) String() string {
	info, known := opInfos[i.Op]
	ops := i.Operands

	var sb strings.Builder
	var typ string
	if known && info.typed && len(ops) > 0 {
		typ = " %" + itoa(ops[0])
		ops = ops[1:]
	}
	if known && info.result && len(ops) > 0 {
		sb.WriteString("%" + itoa(ops[0]) + " = ")
		ops = ops[1:]
	}
	sb.WriteString(i.Op.String())
	sb.WriteString(typ)

	if !known {
		for _, w := range ops {
			sb.WriteString(" " + itoa(w))
		}
		return sb.String()
	}

	kinds := info.operands
	k := 0
	var prev byte = 'l'
	for len(ops) > 0 {
		kind := prev
		if k < len(kinds) {
			kind = kinds[k]
			if kind == '+' {
				kind = prev
			} else {
				k++
			}
		}
		prev = kind

		switch kind {
		case 'i':
			sb.WriteString(" %" + itoa(ops[0]))
			ops = ops[1:]
		case 's':
			s, n, ok := decodeString(ops)
			if !ok {
				sb.WriteString(" <bad string>")
				return sb.String()
			}
			fmt.Fprintf(&sb, " %q", s)
			ops = ops[n:]
		case 'c':
			sb.WriteString(" " + StorageClass(ops[0]).String())
			ops = ops[1:]
			// an optional initializer follows a storage class
			prev = 'i'
		case 'd':
			d := Decoration(ops[0])
			sb.WriteString(" " + d.String())
			ops = ops[1:]
			if d == DecorationLinkageAttributes {
				s, n, ok := decodeString(ops)
				if ok {
					fmt.Fprintf(&sb, " %q", s)
					ops = ops[n:]
				}
				if len(ops) > 0 && ops[0] == linkageTypeExport {
					sb.WriteString(" Export")
					ops = ops[1:]
				}
			}
			prev = 'l'
		case 'k':
			sb.WriteString(" " + Capability(ops[0]).String())
			ops = ops[1:]
		default:
			sb.WriteString(" " + itoa(ops[0]))
			ops = ops[1:]
		}
	}
	return sb.String()
}
