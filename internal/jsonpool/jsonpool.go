// Package jsonpool provides pooled JSON encoding to reduce allocations when
// a batch materializes many request bodies in a short span.
package jsonpool

import (
	"bytes"
	"encoding/json"
	"sync"
)

// Pool is a pool of buffers backing JSON encode operations. The standard
// library's json.Encoder has no Reset method, so only the buffer is
// actually reused across calls.
type Pool struct {
	bufferPool sync.Pool
}

// New creates a Pool with an initialized buffer pool.
func New() *Pool {
	return &Pool{
		bufferPool: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// Default is a shared Pool instance for package-level convenience functions.
var Default = New()

// Marshal encodes v to JSON using a pooled buffer.
func (p *Pool) Marshal(v any) ([]byte, error) {
	buf := p.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer p.bufferPool.Put(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// Copy out: the buffer is reused once returned to the pool.
	encoded := append([]byte(nil), buf.Bytes()...)
	// json.Encoder.Encode appends a trailing newline; trim it to match
	// json.Marshal's output exactly.
	return bytes.TrimRight(encoded, "\n"), nil
}

// Marshal encodes v to JSON using the Default pool.
func Marshal(v any) ([]byte, error) {
	return Default.Marshal(v)
}
