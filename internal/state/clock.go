package state

import (
	"sync"

	"github.com/google/uuid"
)

// Clock is a Lamport clock bound to one site. It stamps outbound messages
// so every peer can order the op log the same way.
type Clock struct {
	site    string
	counter uint64
	mu      sync.Mutex
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

// Tick increments the clock and returns the new value
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter
}

// Observe moves the clock past a received timestamp.
func (c *Clock) Observe(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > c.counter {
		c.counter = seq
	}
}

// Stamp fills in the ID, site and sequence number of a local message.
func (c *Clock) Stamp(m Message) Message {
	m.ID = uuid.NewString()
	m.Site = c.site
	m.Seq = c.Tick()
	return m
}
