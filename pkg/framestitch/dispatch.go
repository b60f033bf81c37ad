package framestitch

import (
	"context"
	"fmt"

	"github.com/user/framestitch/pkg/ports"
)

// bounds is the position range [start, end) of one chunk in a flattened batch.
type bounds struct {
	start, end int
}

func (b bounds) empty() bool {
	return b.start == b.end
}

// partition splits total positions into exactly n contiguous chunks of
// ceil(total/n) positions. Trailing chunks may be short or empty.
func partition(total, n int) []bounds {
	chunks := make([]bounds, n)
	if n <= 0 {
		return chunks
	}
	size := (total + n - 1) / n
	for i := range chunks {
		start := min(i*size, total)
		chunks[i] = bounds{start: start, end: min(start+size, total)}
	}
	return chunks
}

// task is one chunk of work sent to a worker.
type task struct {
	ctx     context.Context
	chunk   int
	bounds  bounds
	indices []int
	reply   chan<- chunkResult
}

type chunkResult struct {
	chunk  int
	frames []ports.Frame
	err    error
}

// worker serves tasks on its own handle until tasks is closed.
func (s *Server) worker(handle ports.DecoderHandle, tasks <-chan task) {
	defer s.wg.Done()

	for t := range tasks {
		frames, err := handle.GetFrames(t.ctx, t.indices)
		if err == nil && len(frames) != len(t.indices) {
			err = fmt.Errorf("decoder returned %d frames for %d indices", len(frames), len(t.indices))
		}
		t.reply <- chunkResult{chunk: t.chunk, frames: frames, err: err}
	}
}

// dispatch sends every non-empty chunk to its worker and gathers the results
// in chunk order. It always waits for every dispatched chunk.
func (s *Server) dispatch(ctx context.Context, indices []int) ([]ports.Frame, error) {
	chunks := partition(len(indices), len(s.tasks))
	reply := make(chan chunkResult, len(chunks))

	dispatched := 0
	for i, b := range chunks {
		if b.empty() {
			continue
		}
		s.tasks[i] <- task{
			ctx:     ctx,
			chunk:   i,
			bounds:  b,
			indices: indices[b.start:b.end],
			reply:   reply,
		}
		dispatched++
	}
	s.logger.Debug("Dispatching %d frames in %d chunks", len(indices), dispatched)

	results := make([]chunkResult, len(chunks))
	for n := 0; n < dispatched; n++ {
		r := <-reply
		results[r.chunk] = r
	}

	frames := make([]ports.Frame, 0, len(indices))
	for i, b := range chunks {
		if b.empty() {
			continue
		}
		r := results[i]
		if r.err != nil {
			s.logger.Debug("Chunk %d failed [%d, %d): %s", i, b.start, b.end, r.err.Error())
			return nil, &DecodeError{
				Chunk:   i,
				Start:   b.start,
				End:     b.end,
				Indices: append([]int(nil), indices[b.start:b.end]...),
				Err:     r.err,
			}
		}
		s.logger.Debug("Chunk %d decoded [%d, %d)", i, b.start, b.end)
		frames = append(frames, r.frames...)
	}
	return frames, nil
}
