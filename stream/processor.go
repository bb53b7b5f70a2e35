package stream

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync/atomic"
	"time"
)

// BufferStrategy controls how chunks move from producer to consumer.
type BufferStrategy string

const (
	// BufferFixed emits every chunk immediately with no retention.
	BufferFixed BufferStrategy = "fixed"
	// BufferDynamic retains chunks and drains the whole buffer once the
	// watermark is reached, deferring source reads while draining.
	BufferDynamic BufferStrategy = "dynamic"
)

// ErrAlreadyStarted is returned when a Processor is run a second time.
var ErrAlreadyStarted = errors.New("stream: processor already started")

// Config configures a Processor.
type Config struct {
	// HighWaterMark is the buffered-byte threshold for backpressure,
	// expressed in bytes of payload. Default: 16384
	HighWaterMark int

	// ChunkSize is the payload size chunks are sliced to. Default: 1024
	ChunkSize int

	// EnableBackpressure turns on watermark-based buffering for the
	// dynamic strategy.
	EnableBackpressure bool

	// BufferStrategy selects fixed or dynamic buffering. Default: fixed
	BufferStrategy BufferStrategy

	// PoolSize is the number of pre-allocated chunks. Default: 64
	PoolSize int
}

// Transform rewrites one chunk payload. It is applied once per slice, not
// once per source fragment.
type Transform func(ctx context.Context, data string) (string, error)

// Processor slices a Source into pooled, fixed-size chunks.
//
// Contract:
// - Concurrency: a Processor drives a single run; the yielded sequence must
//   be consumed from one goroutine.
// - Ownership: yielded chunks are recycled when the sequence advances.
type Processor struct {
	config  Config
	pool    *chunkPool
	seq     atomic.Uint64
	started atomic.Bool
}

// NewProcessor creates a processor, applying defaults to the zero fields.
func NewProcessor(config Config) *Processor {
	if config.HighWaterMark <= 0 {
		config.HighWaterMark = 16384
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1024
	}
	if config.BufferStrategy == "" {
		config.BufferStrategy = BufferFixed
	}
	if config.PoolSize <= 0 {
		config.PoolSize = 64
	}
	return &Processor{
		config: config,
		pool:   newChunkPool(config.PoolSize, config.ChunkSize),
	}
}

// Config returns the processor configuration after defaults were applied.
func (p *Processor) Config() Config {
	return p.config
}

// Process consumes src and yields fixed-size chunks. Each fragment pulled
// from src is sliced to ChunkSize; transform, when non-nil, runs once per
// slice. The sequence terminates on EOF, on the first error, or when the
// consumer breaks; in the latter two cases the source's cancel hook is
// invoked. A Processor can run Process once.
func (p *Processor) Process(ctx context.Context, src Source, transform Transform) iter.Seq2[*Chunk, error] {
	return func(yield func(*Chunk, error) bool) {
		if !p.started.CompareAndSwap(false, true) {
			yield(nil, ErrAlreadyStarted)
			return
		}
		p.run(ctx, src, transform, yield)
	}
}

// watermarkChunks is the buffered-chunk count that triggers a drain.
func (p *Processor) watermarkChunks() int {
	n := p.config.HighWaterMark / p.config.ChunkSize
	if n < 1 {
		n = 1
	}
	return n
}

func (p *Processor) run(ctx context.Context, src Source, transform Transform, yield func(*Chunk, error) bool) {
	buffering := p.config.EnableBackpressure && p.config.BufferStrategy == BufferDynamic
	watermark := p.watermarkChunks()

	var buffer []*Chunk

	// emit hands one chunk to the consumer and recycles it afterwards.
	// Returns false when the consumer broke out of the loop.
	emit := func(c *Chunk) bool {
		ok := yield(c, nil)
		p.pool.put(c)
		return ok
	}

	// drain flushes every buffered chunk before the next source read.
	drain := func() bool {
		for i, c := range buffer {
			if !emit(c) {
				// Recycle what the consumer never saw.
				for _, rest := range buffer[i+1:] {
					p.pool.put(rest)
				}
				buffer = buffer[:0]
				return false
			}
		}
		buffer = buffer[:0]
		return true
	}

	fail := func(err error) {
		for _, c := range buffer {
			p.pool.put(c)
		}
		cancelSource(ctx, src)
		yield(nil, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		fragment, err := src.Next(ctx)
		if err == io.EOF {
			drain()
			return
		}
		if err != nil {
			fail(err)
			return
		}

		for start := 0; start < len(fragment); start += p.config.ChunkSize {
			end := min(start+p.config.ChunkSize, len(fragment))
			data := fragment[start:end]

			if transform != nil {
				data, err = transform(ctx, data)
				if err != nil {
					fail(err)
					return
				}
			}

			c := p.allocate(data)
			if buffering {
				buffer = append(buffer, c)
				if len(buffer) >= watermark {
					if !drain() {
						cancelSource(ctx, src)
						return
					}
				}
				continue
			}
			if !emit(c) {
				cancelSource(ctx, src)
				return
			}
		}
	}
}

// allocate takes a chunk from the pool and stamps it.
func (p *Processor) allocate(data string) *Chunk {
	c := p.pool.get()
	c.Data = append(c.Data[:0], data...)
	c.Sequence = p.seq.Add(1)
	c.Timestamp = time.Now()
	return c
}

// Pipeline composes transforms into a single function applied once per
// chunk, avoiding per-stage intermediate chunks.
func (p *Processor) Pipeline(ctx context.Context, src Source, transforms ...Transform) iter.Seq2[*Chunk, error] {
	var combined Transform
	if len(transforms) > 0 {
		combined = func(ctx context.Context, data string) (string, error) {
			var err error
			for _, t := range transforms {
				data, err = t(ctx, data)
				if err != nil {
					return "", err
				}
			}
			return data, nil
		}
	}
	return p.Process(ctx, src, combined)
}

// Collect materializes the stream into payload copies, stopping early once
// maxItems chunks or maxBytes payload bytes have been gathered (0 disables
// the corresponding bound). This is the one deliberately non-constant-memory
// operation; the caller's limits bound it.
func (p *Processor) Collect(ctx context.Context, src Source, maxItems, maxBytes int) ([]string, error) {
	var (
		out   []string
		bytes int
	)
	for chunk, err := range p.Process(ctx, src, nil) {
		if err != nil {
			return out, err
		}
		out = append(out, string(chunk.Data))
		bytes += len(chunk.Data)
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
		if maxBytes > 0 && bytes >= maxBytes {
			break
		}
	}
	return out, nil
}
