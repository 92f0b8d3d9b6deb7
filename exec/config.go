package exec

// Config sizes the sandbox memory. Buffer i occupies words
// [i*WordsPerBuffer, (i+1)*WordsPerBuffer) of the exported memory.
type Config struct {
	// Buffers is the number of addressable buffers. 0 means 8.
	Buffers uint32

	// WordsPerBuffer is the capacity of each buffer in 32-bit words.
	// 0 means 256.
	WordsPerBuffer uint32
}

const (
	defaultBuffers        = 8
	defaultWordsPerBuffer = 256
)

func (c Config) withDefaults() Config {
	if c.Buffers == 0 {
		c.Buffers = defaultBuffers
	}
	if c.WordsPerBuffer == 0 {
		c.WordsPerBuffer = defaultWordsPerBuffer
	}
	return c
}

func (c Config) pages() uint32 {
	bytes := uint64(c.Buffers) * uint64(c.WordsPerBuffer) * 4
	pages := (bytes + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	return uint32(pages)
}
