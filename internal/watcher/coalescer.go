package watcher

import (
	"sync"
	"time"
)

// ChangeType classifies a coalesced filesystem change.
type ChangeType int

const (
	ChangeCreate ChangeType = iota
	ChangeModify
	ChangeDelete
)

func (t ChangeType) String() string {
	switch t {
	case ChangeCreate:
		return "create"
	case ChangeModify:
		return "modify"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is a debounced change to one file. Hash is the blake3 content
// hash and is empty for deletes.
type Change struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
	Hash      string
}

// Coalescer merges bursts of changes per path into a single change emitted
// after a quiet window. Deletes wait for a longer grace period so editors
// that save by delete and recreate produce one modify.
type Coalescer struct {
	debounce    time.Duration
	deleteGrace time.Duration

	mu      sync.Mutex
	pending map[string]*pendingChange
	stopped bool

	// sendMu orders sends on out against its close.
	sendMu sync.RWMutex
	closed bool
	out    chan Change
	stopCh chan struct{}
}

type pendingChange struct {
	change Change
	timer  *time.Timer
}

// NewCoalescer creates a Coalescer.
func NewCoalescer(debounce, deleteGrace time.Duration) *Coalescer {
	return &Coalescer{
		debounce:    debounce,
		deleteGrace: deleteGrace,
		pending:     make(map[string]*pendingChange),
		out:         make(chan Change, 256),
		stopCh:      make(chan struct{}),
	}
}

// Add records a raw change.
func (c *Coalescer) Add(change Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	path := change.Path
	if pc, ok := c.pending[path]; ok {
		pc.timer.Stop()

		// A file created and removed inside the window never existed.
		if pc.change.Type == ChangeCreate && change.Type == ChangeDelete {
			delete(c.pending, path)
			return
		}

		pc.change = merge(pc.change, change)
		pc.timer = time.AfterFunc(c.delay(pc.change.Type), func() { c.emit(path) })
		return
	}

	pc := &pendingChange{change: change}
	pc.timer = time.AfterFunc(c.delay(change.Type), func() { c.emit(path) })
	c.pending[path] = pc
}

// Changes returns the channel of coalesced changes. It is closed by Stop.
func (c *Coalescer) Changes() <-chan Change {
	return c.out
}

// Stop discards pending changes and closes the output channel.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	for path, pc := range c.pending {
		pc.timer.Stop()
		delete(c.pending, path)
	}
	c.mu.Unlock()

	close(c.stopCh)

	c.sendMu.Lock()
	c.closed = true
	close(c.out)
	c.sendMu.Unlock()
}

// Pending returns the number of changes waiting for their window.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coalescer) emit(path string) {
	c.mu.Lock()
	pc, ok := c.pending[path]
	if !ok || c.stopped {
		c.mu.Unlock()
		return
	}
	delete(c.pending, path)
	c.mu.Unlock()

	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.out <- pc.change:
	case <-c.stopCh:
	}
}

func (c *Coalescer) delay(t ChangeType) time.Duration {
	if t == ChangeDelete {
		return c.deleteGrace
	}
	return c.debounce
}

// merge combines an earlier pending change with a later one.
func merge(prev, next Change) Change {
	merged := next
	switch {
	case prev.Type == ChangeCreate && next.Type == ChangeModify:
		merged.Type = ChangeCreate
	case prev.Type == ChangeDelete && next.Type == ChangeCreate:
		merged.Type = ChangeModify
	}
	return merged
}
