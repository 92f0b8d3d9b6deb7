package spirv

import (
	"strconv"

	"github.com/wippyai/spirv-bindless/errors"
)

// Binary is a decoded SPIR-V module.
type Binary struct {
	Instructions []Instruction
	Version      uint32
	Generator    uint32
	Bound        uint32
	Schema       uint32
}

// Decode parses a SPIR-V word stream.
func Decode(words []uint32) (*Binary, error) {
	if len(words) < headerWords {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "module shorter than the header")
	}
	if words[0] != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Value(words[0]).
			Detail("bad magic number 0x%08x", words[0]).
			Build()
	}

	b := &Binary{
		Version:   words[1],
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}

	for pos := headerWords; pos < len(words); {
		count := int(words[pos] >> 16)
		op := Op(words[pos] & 0xffff)
		if count == 0 {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{"word " + strconv.Itoa(pos)}, "instruction with zero word count")
		}
		if pos+count > len(words) {
			return nil, errors.OutOfBounds(errors.PhaseDecode, []string{op.String()}, pos+count, len(words))
		}
		var operands []uint32
		if count > 1 {
			operands = make([]uint32, count-1)
			copy(operands, words[pos+1:pos+count])
		}
		b.Instructions = append(b.Instructions, Instruction{Op: op, Operands: operands})
		pos += count
	}

	return b, nil
}

// DecodeBytes parses a SPIR-V binary.
func DecodeBytes(data []byte) (*Binary, error) {
	words, err := BytesToWords(data)
	if err != nil {
		return nil, err
	}
	return Decode(words)
}
