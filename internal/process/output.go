package process

import (
	"bytes"
	"sync"
)

// outputBuffer collects stdout and stderr of a process.
type outputBuffer struct {
	mtx sync.Mutex
	buf bytes.Buffer
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.Write(p)
}

// Bytes returns a copy of everything written so far.
func (b *outputBuffer) Bytes() []byte {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}
