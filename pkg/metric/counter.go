package metric

import "sync"

// Counter is a monotonically increasing tally.  Monitors use counters to track the
// number of accepted observations and emitted signals over their lifetime.
type Counter struct {
	value int
}

// NewCounter returns a new zero-valued counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Value returns the current value of the counter.
func (c *Counter) Value() int {
	return c.value
}

// Add increases the current count by i.
func (c *Counter) Add(i uint) {
	c.value += int(i)
}

// Reset sets the value of the counter to zero.
func (c *Counter) Reset() {
	c.value = 0
}

// ConcurrentCounter is a Counter safe for concurrent use.
type ConcurrentCounter struct {
	mu sync.RWMutex
	c  *Counter
}

// NewConcurrentCounter returns a counter safe for concurrent use.
func NewConcurrentCounter() *ConcurrentCounter {
	return &ConcurrentCounter{c: NewCounter()}
}

func (c *ConcurrentCounter) Value() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.c.Value()
}

func (c *ConcurrentCounter) Add(i uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Add(i)
}

func (c *ConcurrentCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Reset()
}
