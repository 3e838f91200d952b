package kfmt

import "io"

// ringBufferSize is large enough to hold a full 80x25 text screen. It must
// be a power of 2.
const ringBufferSize = 2048

// ringBuffer captures Printf output until a console sink is attached. Once
// full, each write discards the oldest byte.
type ringBuffer struct {
	buffer        [ringBufferSize]byte
	start, length int
}

// Write appends p to the buffer. It never fails.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[(rb.start+rb.length)&(ringBufferSize-1)] = b
		if rb.length == ringBufferSize {
			rb.start = (rb.start + 1) & (ringBufferSize - 1)
			continue
		}
		rb.length++
	}

	return len(p), nil
}

// Read drains up to len(p) buffered bytes into p. It returns io.EOF once the
// buffer is empty.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.length == 0 {
		return 0, io.EOF
	}

	// Copy the contiguous run starting at start; wrapped data is returned by
	// the next call.
	n := rb.length
	if tail := ringBufferSize - rb.start; tail < n {
		n = tail
	}
	if len(p) < n {
		n = len(p)
	}

	copy(p, rb.buffer[rb.start:rb.start+n])
	rb.start = (rb.start + n) & (ringBufferSize - 1)
	rb.length -= n

	return n, nil
}
