package stream

import "time"

// Chunk is one fixed-size slice of stream output. Chunks are pooled and
// mutable; see the package documentation for ownership rules.
type Chunk struct {
	// Data is the chunk payload. The backing array is reused after recycling.
	Data []byte

	// Sequence increases monotonically across the processor's lifetime.
	Sequence uint64

	// Timestamp is when the chunk was emitted.
	Timestamp time.Time

	// Metadata carries optional per-chunk annotations.
	Metadata map[string]string
}

// chunkPool is a bounded free list of chunks. Pre-allocated to capacity so
// steady-state allocation is O(pool size) regardless of stream length;
// overflow on put is left for the garbage collector.
type chunkPool struct {
	free chan *Chunk
}

func newChunkPool(size, chunkSize int) *chunkPool {
	p := &chunkPool{free: make(chan *Chunk, size)}
	for i := 0; i < size; i++ {
		p.free <- &Chunk{Data: make([]byte, 0, chunkSize)}
	}
	return p
}

// get pops a pooled chunk or constructs a fresh one when the pool is empty.
func (p *chunkPool) get() *Chunk {
	select {
	case c := <-p.free:
		return c
	default:
		return &Chunk{}
	}
}

// put clears the chunk and returns it to the pool while capacity allows.
func (p *chunkPool) put(c *Chunk) {
	c.Data = c.Data[:0]
	c.Sequence = 0
	c.Timestamp = time.Time{}
	c.Metadata = nil
	select {
	case p.free <- c:
	default:
	}
}
