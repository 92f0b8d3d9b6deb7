package exec

import "github.com/wippyai/spirv-bindless/exec/internal/wasmenc"

const (
	wasmMagic   uint32 = 0x6d736100
	wasmVersion uint32 = 1

	sectionType     byte = 1
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionExport   byte = 7
	sectionCode     byte = 10

	funcTypeByte byte = 0x60
	valI32       byte = 0x7f
	blockEmpty   byte = 0x40
	exportFunc   byte = 0x00
	exportMemory byte = 0x02

	opUnreachable byte = 0x00
	opIf          byte = 0x04
	opEnd         byte = 0x0b
	opLocalGet    byte = 0x20
	opLocalSet    byte = 0x21
	opI32Load     byte = 0x28
	opI32Store    byte = 0x36
	opI32Const    byte = 0x41
	opI32GeU      byte = 0x4f
	opI32Add      byte = 0x6a
	opI32Mul      byte = 0x6c
	opI32ShrS     byte = 0x75

	wordAlign byte = 2 // log2 of the access alignment
	pageSize       = 65536
)

// MemoryExport is the export name of the buffer memory.
const MemoryExport = "buffers"

// wasmFunc is the single function of a sandbox module. All values are i32.
type wasmFunc struct {
	name    string
	code    []byte // body without the trailing end
	params  int
	results int
	locals  int // beyond params
}

// encodeModule assembles a module exporting fn and its memory.
func encodeModule(fn wasmFunc, pages uint32) []byte {
	w := wasmenc.NewWriter()
	w.WriteU32LE(wasmMagic)
	w.WriteU32LE(wasmVersion)

	sec := wasmenc.NewWriter()
	sec.WriteU32(1)
	sec.Byte(funcTypeByte)
	writeI32s(sec, fn.params)
	writeI32s(sec, fn.results)
	w.WriteSection(sectionType, sec)

	sec = wasmenc.NewWriter()
	sec.WriteU32(1)
	sec.WriteU32(0)
	w.WriteSection(sectionFunction, sec)

	sec = wasmenc.NewWriter()
	sec.WriteU32(1)
	sec.Byte(0x00) // min only
	sec.WriteU32(pages)
	w.WriteSection(sectionMemory, sec)

	sec = wasmenc.NewWriter()
	sec.WriteU32(2)
	sec.WriteName(fn.name)
	sec.Byte(exportFunc)
	sec.WriteU32(0)
	sec.WriteName(MemoryExport)
	sec.Byte(exportMemory)
	sec.WriteU32(0)
	w.WriteSection(sectionExport, sec)

	body := wasmenc.NewWriter()
	if fn.locals > 0 {
		body.WriteU32(1)
		body.WriteU32(uint32(fn.locals))
		body.Byte(valI32)
	} else {
		body.WriteU32(0)
	}
	body.Byte(fn.code...)
	body.Byte(opEnd)

	sec = wasmenc.NewWriter()
	sec.WriteU32(1)
	sec.WriteU32(uint32(body.Len()))
	sec.Byte(body.Bytes()...)
	w.WriteSection(sectionCode, sec)

	return w.Bytes()
}

func writeI32s(w *wasmenc.Writer, n int) {
	w.WriteU32(uint32(n))
	for i := 0; i < n; i++ {
		w.Byte(valI32)
	}
}
