// Package stream provides a constant-memory chunking pipeline for
// incrementally delivered model output.
//
// A Processor pulls string fragments from a Source, slices them into
// fixed-size chunks, and yields the chunks as a lazy sequence. Memory use is
// bounded two ways: chunk objects are recycled through a fixed-size pool, and
// with backpressure enabled the processor stops reading from the source until
// buffered chunks have been drained.
//
// Chunks are owned by the processor. A yielded *Chunk is valid only for the
// duration of the consumer's loop body; once the sequence advances, the chunk
// is recycled and its payload overwritten. Callers that retain data must copy
// it (Collect does this).
//
// A Processor drives exactly one run. Re-running a stream requires a fresh
// Processor and a fresh Source.
//
//	p := stream.NewProcessor(stream.Config{ChunkSize: 512})
//	for chunk, err := range p.Process(ctx, src, nil) {
//	    if err != nil {
//	        return err
//	    }
//	    w.Write(chunk.Data)
//	}
package stream
