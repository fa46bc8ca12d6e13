package core

import "sync/atomic"

// Client is the handle for one live connection as seen by the core layer.
// It is used as a map key in the session registry and never serialized.
type Client struct {
	ID     string
	Events chan *Event

	closed atomic.Bool
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan *Event, 16),
	}
}

// Deliver enqueues an event for the client's write loop. Delivery is
// best-effort: closed clients and slow consumers drop the event.
func (c *Client) Deliver(ev *Event) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}

// Close marks the client closed. The event channel is left open so
// in-flight Deliver calls cannot panic; pending events are discarded
// when the write loop exits.
func (c *Client) Close() {
	c.closed.Store(true)
}
