package spirv

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/wippyai/spirv-bindless/errors"
)

const headerWords = 5

// Encode returns the module as a SPIR-V word stream.
func (m *Module) Encode() []uint32 {
	body := m.Instructions()
	words := make([]uint32, 0, headerWords+len(body)*4)
	words = append(words, Magic, m.opts.Version, m.opts.Generator, m.bound, 0)
	for _, in := range body {
		words = in.appendWords(words)
	}
	Logger().Debug("encoded spirv module",
		zap.Int("words", len(words)),
		zap.Uint32("bound", m.bound))
	return words
}

// Bytes returns the module as a little-endian SPIR-V binary.
func (m *Module) Bytes() []byte {
	return WordsToBytes(m.Encode())
}

// WordsToBytes serializes words in little-endian order.
func WordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// BytesToWords parses a SPIR-V binary in either byte order, using the magic
// number to detect it.
func BytesToWords(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "binary length is not a multiple of 4")
	}
	if len(data) < headerWords*4 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "binary shorter than the header")
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(data) == Magic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(data) == Magic:
		order = binary.BigEndian
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Value(binary.LittleEndian.Uint32(data)).
			Detail("bad magic number 0x%08x", binary.LittleEndian.Uint32(data)).
			Build()
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}
