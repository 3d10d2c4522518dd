package process

import (
	"sync/atomic"
)

// group counts the handles sharing one process. The release that drops the
// count to zero runs onZero, exactly once.
type group struct {
	refs   int64  // atomic
	closed uint32 // atomic
	onZero func()
}

func newGroup(onZero func()) *group {
	return &group{refs: 1, onZero: onZero}
}

func (g *group) acquire() {
	for {
		n := atomic.LoadInt64(&g.refs)
		if n <= 0 {
			panic("process: clone of a released process group")
		}
		if atomic.CompareAndSwapInt64(&g.refs, n, n+1) {
			return
		}
	}
}

func (g *group) release() {
	if atomic.AddInt64(&g.refs, -1) != 0 {
		return
	}
	if atomic.CompareAndSwapUint32(&g.closed, 0, 1) {
		g.onZero()
	}
}

func (g *group) isClosed() bool {
	return atomic.LoadUint32(&g.closed) == 1
}

// Handle is one reference to a launched process. Every clone of an explorer
// holds its own Handle; the process is torn down when the last one is
// released.
type Handle struct {
	proc     *Process
	released uint32 // atomic
}

// Process returns the process the handle refers to.
func (h *Handle) Process() *Process { return h.proc }

// Clone returns a new handle on the same process. It panics if h was already
// released.
func (h *Handle) Clone() *Handle {
	if atomic.LoadUint32(&h.released) == 1 {
		panic("process: clone of a released handle")
	}
	h.proc.group.acquire()
	return &Handle{proc: h.proc}
}

// Release drops this handle's reference. Releasing the last handle tears the
// process down before returning. Subsequent calls are no-ops.
func (h *Handle) Release() {
	if atomic.CompareAndSwapUint32(&h.released, 0, 1) {
		h.proc.group.release()
	}
}
