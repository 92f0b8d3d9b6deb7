package bindless

import "github.com/wippyai/spirv-bindless/ir"

// wordPointer forms buffers[index].words[dyn + static].
func (s *Session) wordPointer(index, dyn ir.Value, static uint32) ir.Value {
	addr := s.address(dyn, static)
	return s.emit.IndexedAccess(s.wordType(), s.resources, index, s.wordConst(0), addr)
}

// readWord loads one word and reinterprets it as leaf. The cast is skipped
// when leaf is the word type itself.
func (s *Session) readWord(index, dyn ir.Value, static uint32, leaf ir.ID) ir.Value {
	w := s.emit.Load(s.wordType(), s.wordPointer(index, dyn, static))
	if leaf == s.wordType() {
		return w
	}
	return s.emit.BitCast(leaf, w)
}

// writeWord stores a u32 word.
func (s *Session) writeWord(index, dyn ir.Value, static uint32, w ir.Value) {
	s.emit.Store(s.wordPointer(index, dyn, static), w)
}
