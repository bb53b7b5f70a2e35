package stream

import (
	"context"
	"io"
	"iter"

	"golang.org/x/sync/errgroup"
)

// BatchChunk pairs a chunk with the index of the source that produced it.
type BatchChunk struct {
	SourceIndex int
	Chunk       *Chunk
}

type batchItem struct {
	idx   int
	chunk *Chunk
	err   error
}

// ProcessBatch runs up to concurrency sources at once and yields chunks in
// completion order, tagged with their source index. When a source finishes,
// the next queued source starts, so the concurrency bound holds throughout.
// A source error is yielded with that source's index (after its cancel hook
// runs) and the remaining sources continue. Chunk ownership rules are the
// same as Process. A Processor can run ProcessBatch once.
func (p *Processor) ProcessBatch(ctx context.Context, sources []Source, concurrency int) iter.Seq2[BatchChunk, error] {
	return func(yield func(BatchChunk, error) bool) {
		if !p.started.CompareAndSwap(false, true) {
			yield(BatchChunk{SourceIndex: -1}, ErrAlreadyStarted)
			return
		}
		if concurrency <= 0 {
			concurrency = 1
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		ch := make(chan batchItem)
		var g errgroup.Group
		g.SetLimit(concurrency)

		go func() {
			for i, src := range sources {
				g.Go(func() error {
					p.runBatchSource(ctx, src, i, ch)
					return nil
				})
			}
			g.Wait()
			close(ch)
		}()

		for it := range ch {
			if it.err != nil {
				if !yield(BatchChunk{SourceIndex: it.idx}, it.err) {
					return
				}
				continue
			}
			ok := yield(BatchChunk{SourceIndex: it.idx, Chunk: it.chunk}, nil)
			p.pool.put(it.chunk)
			if !ok {
				return
			}
		}
	}
}

// runBatchSource drains one source, sending chunks until EOF, error, or
// cancellation. Slicing and pooling match the single-source path.
func (p *Processor) runBatchSource(ctx context.Context, src Source, idx int, ch chan<- batchItem) {
	send := func(it batchItem) bool {
		select {
		case ch <- it:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		fragment, err := src.Next(ctx)
		if err == io.EOF {
			return
		}
		if err != nil {
			cancelSource(ctx, src)
			send(batchItem{idx: idx, err: err})
			return
		}

		for start := 0; start < len(fragment); start += p.config.ChunkSize {
			end := min(start+p.config.ChunkSize, len(fragment))
			c := p.allocate(fragment[start:end])
			if !send(batchItem{idx: idx, chunk: c}) {
				p.pool.put(c)
				cancelSource(ctx, src)
				return
			}
		}
	}
}
