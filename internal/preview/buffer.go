package preview

import (
	"context"
	"sync"
)

// Buffer holds the most recent encoded preview frame. Slow readers skip
// frames rather than queueing them.
type Buffer struct {
	mu      sync.Mutex
	frame   []byte
	seq     uint64
	changed chan struct{}
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{changed: make(chan struct{})}
}

// Publish replaces the current frame and wakes all waiters. The buffer
// keeps frame; callers must not modify it afterwards.
func (b *Buffer) Publish(frame []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frame = frame
	b.seq++
	close(b.changed)
	b.changed = make(chan struct{})
}

// Latest returns the current frame and its sequence number. The sequence
// is 0 until the first Publish.
func (b *Buffer) Latest() ([]byte, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame, b.seq
}

// Next blocks until a frame newer than after is available or ctx is done.
func (b *Buffer) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > after {
			frame, seq := b.frame, b.seq
			b.mu.Unlock()
			return frame, seq, nil
		}
		changed := b.changed
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-changed:
		}
	}
}
