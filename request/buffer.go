package request

// Buffer holds an ordered sequence of in-flight requests with a capacity
// bound. Insertion order is preserved and is the FCFS tiebreak used by
// schedulers.
type Buffer struct {
	items   []*Request
	maxSize int
}

// NewBuffer creates an empty buffer with the given capacity bound.
func NewBuffer(maxSize int) *Buffer {
	return &Buffer{maxSize: maxSize}
}

// Len returns the number of requests currently held.
func (b *Buffer) Len() int {
	return len(b.items)
}

// MaxSize returns the buffer's configured capacity bound.
func (b *Buffer) MaxSize() int {
	return b.maxSize
}

// FillRatio returns the buffer's occupancy as a fraction of MaxSize, used by
// the controller's write-mode hysteresis.
func (b *Buffer) FillRatio() float64 {
	if b.maxSize == 0 {
		return 0
	}

	return float64(len(b.items)) / float64(b.maxSize)
}

// Enqueue appends a request to the back of the buffer, returning false if
// the buffer has no room.
//
// The capacity check is "Len() <= maxSize", not "<": a buffer may therefore
// briefly hold maxSize+1 requests. This reproduces the reference
// implementation's own admission check rather than silently tightening it,
// so statistics gathered against a fixed maxSize remain comparable.
func (b *Buffer) Enqueue(req *Request) bool {
	if len(b.items) <= b.maxSize {
		b.items = append(b.items, req)
		return true
	}

	return false
}

// Front returns the oldest request in the buffer, or nil if empty.
func (b *Buffer) Front() *Request {
	if len(b.items) == 0 {
		return nil
	}

	return b.items[0]
}

// PopFront removes and returns the oldest request, or nil if empty.
func (b *Buffer) PopFront() *Request {
	if len(b.items) == 0 {
		return nil
	}

	req := b.items[0]
	b.items = b.items[1:]

	return req
}

// All returns the requests currently held, in insertion order. The returned
// slice must not be mutated by the caller.
func (b *Buffer) All() []*Request {
	return b.items
}

// Remove erases the given request from the buffer by identity. It returns
// true if the request was found and removed.
func (b *Buffer) Remove(req *Request) bool {
	for i, item := range b.items {
		if item == req {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}

	return false
}

// Push moves req to the back of this buffer, as used when a request
// transitions between buffers (e.g. write/read -> active).
func (b *Buffer) Push(req *Request) {
	b.items = append(b.items, req)
}
