package dispatch

import "sync"

// Counter is a process-wide completed-job count shared by all workers.
type Counter struct {
	mu    sync.Mutex
	value int
}

// Increment adds one and returns the new value.
func (c *Counter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value
}

// Get returns the current value.
func (c *Counter) Get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
