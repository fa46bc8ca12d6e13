package core

import (
	"sort"
	"sync"
)

// Presence tracks which display names are currently in which room. It
// holds no durable state; callers persist the returned occupancy count
// after every mutation.
type Presence struct {
	mu    sync.Mutex
	rooms map[int64]map[string]struct{}
}

// NewPresence constructs an empty presence tracker.
func NewPresence() *Presence {
	return &Presence{rooms: make(map[int64]map[string]struct{})}
}

// Join adds the name to the room's membership set and returns the
// resulting member list. Re-adding is a no-op. The list is computed
// inside the critical section, so its length is the occupancy count to
// persist for this mutation.
func (p *Presence) Join(roomID int64, username string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	members, ok := p.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		p.rooms[roomID] = members
	}
	members[username] = struct{}{}
	return sortedNames(members)
}

// Leave removes the name from the room's membership set and returns the
// resulting member list. No-op if absent.
func (p *Presence) Leave(roomID int64, username string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	members, ok := p.rooms[roomID]
	if !ok {
		return nil
	}
	delete(members, username)
	if len(members) == 0 {
		delete(p.rooms, roomID)
		return nil
	}
	return sortedNames(members)
}

// Members returns the room's current member list.
func (p *Presence) Members(roomID int64) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return sortedNames(p.rooms[roomID])
}

// sortedNames renders a membership set as an ordered sequence. The order
// carries no meaning for callers; sorting keeps payloads deterministic.
func sortedNames(members map[string]struct{}) []string {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
