package extractor

import "sync"

// Listener receives byte progress for one download
type Listener interface {
	Start(total int64)
	Progress(done, total int64)
	Finish()
}

// NopListener discards progress
type NopListener struct{}

func (NopListener) Start(int64)           {}
func (NopListener) Progress(int64, int64) {}
func (NopListener) Finish()               {}

type monotonic struct {
	mu      sync.Mutex
	inner   Listener
	done    int64
	total   int64
	started bool
	closed  bool
}

// Monotonic wraps l so it never sees a decreasing byte count within a stream,
// receives Start at most once before any Progress, and Finish exactly once.
// A Progress call with a different known total begins a new stream (a merged
// download fetches video and audio separately) and restarts the count.
func Monotonic(l Listener) Listener {
	if l == nil {
		l = NopListener{}
	}
	if m, ok := l.(*monotonic); ok {
		return m
	}
	return &monotonic{inner: l}
}

func (m *monotonic) Start(total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.closed {
		return
	}
	m.started = true
	m.total = total
	m.inner.Start(total)
}

func (m *monotonic) Progress(done, total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if total > 0 && m.total > 0 && total != m.total {
		m.done = 0
	}
	if total > 0 {
		m.total = total
	}
	if done < m.done {
		return
	}
	if !m.started {
		m.started = true
		m.inner.Start(total)
	}
	if total > 0 && done > total {
		done = total
	}
	m.done = done
	m.inner.Progress(done, total)
}

func (m *monotonic) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.inner.Finish()
}
