package subscription

import "context"

// BufferedSink decouples recompute from delivery with a bounded
// channel. When the buffer is full, the oldest pending result is
// dropped in favor of the newest: each push supersedes the previous
// one, so a slow consumer converges on the latest committed state
// instead of replaying stale results.
type BufferedSink struct {
	Results chan Result
}

func NewBufferedSink(bufferSize int) *BufferedSink {
	// An unbuffered channel would make Consume spin between the
	// full-send and evict branches; one slot is the floor.
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &BufferedSink{Results: make(chan Result, bufferSize)}
}

// Consume is called by the broker after a recompute.
func (s *BufferedSink) Consume(ctx context.Context, result Result) error {
	for {
		select {
		case s.Results <- result:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Buffer full: evict the stale pending result and retry.
			select {
			case <-s.Results:
			default:
			}
		}
	}
}
