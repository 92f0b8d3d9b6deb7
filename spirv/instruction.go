package spirv

import (
	"strconv"

	"github.com/wippyai/spirv-bindless/ir"
)

// Instruction is one SPIR-V instruction. Operands holds every word after
// the opcode word, result type and result id included.
type Instruction struct {
	Operands []uint32
	Op       Op
}

// WordCount returns the encoded size in words.
func (i Instruction) WordCount() int {
	return 1 + len(i.Operands)
}

// ResultID returns the id the instruction defines, if any.
func (i Instruction) ResultID() (ir.ID, bool) {
	info, ok := opInfos[i.Op]
	if !ok || !info.result {
		return ir.NoID, false
	}
	idx := 0
	if info.typed {
		idx = 1
	}
	if idx >= len(i.Operands) {
		return ir.NoID, false
	}
	return ir.ID(i.Operands[idx]), true
}

// ResultType returns the result type id, if the instruction has one.
func (i Instruction) ResultType() (ir.ID, bool) {
	info, ok := opInfos[i.Op]
	if !ok || !info.typed || len(i.Operands) == 0 {
		return ir.NoID, false
	}
	return ir.ID(i.Operands[0]), true
}

// appendWords appends the encoded instruction to dst.
func (i Instruction) appendWords(dst []uint32) []uint32 {
	dst = append(dst, uint32(i.WordCount())<<16|uint32(i.Op))
	return append(dst, i.Operands...)
}

func inst(op Op, operands ...uint32) Instruction {
	return Instruction{Op: op, Operands: operands}
}

// stringWords encodes a literal string: UTF-8, nul terminated, zero padded
// to a word boundary, little-endian within each word.
func stringWords(s string) []uint32 {
	n := len(s)/4 + 1
	words := make([]uint32, n)
	for i := 0; i < len(s); i++ {
		words[i/4] |= uint32(s[i]) << (8 * (i % 4))
	}
	return words
}

// decodeString reads a literal string from words and returns it with the
// number of words consumed. ok is false when no terminator is found.
func decodeString(words []uint32) (s string, n int, ok bool) {
	var buf []byte
	for wi, w := range words {
		for b := 0; b < 4; b++ {
			c := byte(w >> (8 * b))
			if c == 0 {
				return string(buf), wi + 1, true
			}
			buf = append(buf, c)
		}
	}
	return "", 0, false
}

func ids(vs []ir.Value) []uint32 {
	out := make([]uint32, len(vs))
	for i, v := range vs {
		out[i] = uint32(v.ID)
	}
	return out
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
