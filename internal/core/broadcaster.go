package core

// Broadcaster fans events out to sets of open connections computed from
// the registry. Delivery is best-effort and independent per recipient: a
// slow client drops the event instead of stalling the others.
type Broadcaster struct {
	registry *Registry
}

// NewBroadcaster constructs a broadcaster over the given registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// SendTo delivers an event to one connection if it is still open.
func (b *Broadcaster) SendTo(c *Client, ev *Event) {
	c.Deliver(ev)
}

// Room delivers an event to every open connection whose session is
// currently in roomID, skipping exclude if non-nil.
func (b *Broadcaster) Room(roomID int64, ev *Event, exclude *Client) {
	recipients := make([]*Client, 0, 8)
	b.registry.each(func(c *Client, sess *Session) {
		if c == exclude || sess == nil {
			return
		}
		if sess.State == StateInRoom && sess.RoomID == roomID {
			recipients = append(recipients, c)
		}
	})

	for _, c := range recipients {
		c.Deliver(ev)
	}
}

// All delivers an event to every open connection, authenticated or not.
func (b *Broadcaster) All(ev *Event) {
	recipients := make([]*Client, 0, 16)
	b.registry.each(func(c *Client, _ *Session) {
		recipients = append(recipients, c)
	})

	for _, c := range recipients {
		c.Deliver(ev)
	}
}
