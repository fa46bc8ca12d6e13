package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/akarimov/chatbroker/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drainEvents empties the client's channel and returns what was pending.
func drainEvents(c *Client) []*Event {
	var events []*Event
	for {
		select {
		case ev := <-c.Events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func countKind(events []*Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func newTestRouter(st store.Store) *Router {
	logger := zerolog.Nop()
	return NewRouter(st, 0, &logger)
}

// memStore is an in-memory store.Store for router tests.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*store.User
	rooms    map[int64]*store.Room
	messages map[int64][]*store.Message
	nextUser int64
	nextRoom int64
	nextMsg  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*store.User),
		rooms:    make(map[int64]*store.Room),
		messages: make(map[int64][]*store.Message),
	}
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, store.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) UpsertUser(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		m.nextUser++
		user = &store.User{
			ID:        m.nextUser,
			Username:  username,
			CreatedAt: time.Now(),
		}
		m.users[username] = user
	}
	user.IsOnline = true
	user.LastSeen = time.Now()
	copied := *user
	return &copied, nil
}

func (m *memStore) SetUserOnline(_ context.Context, id int64, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			user.IsOnline = online
			user.LastSeen = time.Now()
			return nil
		}
	}
	return nil
}

func (m *memStore) CreateRoom(_ context.Context, name string, creatorID int64) (*store.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.Name == name {
			return nil, fmt.Errorf("room %q: %w", name, store.ErrDuplicate)
		}
	}
	m.nextRoom++
	room := &store.Room{
		ID:        m.nextRoom,
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
	m.rooms[room.ID] = room
	copied := *room
	return &copied, nil
}

func (m *memStore) GetRoomByID(_ context.Context, id int64) (*store.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, store.ErrNotFound)
	}
	copied := *room
	return &copied, nil
}

func (m *memStore) GetRoomByName(_ context.Context, name string) (*store.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.Name == name {
			copied := *room
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("room %q: %w", name, store.ErrNotFound)
}

func (m *memStore) SetRoomOccupancy(_ context.Context, id int64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok {
		room.UserCount = count
	}
	return nil
}

func (m *memStore) ListRooms(_ context.Context) ([]*store.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]*store.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		copied := *room
		rooms = append(rooms, &copied)
	}
	return rooms, nil
}

func (m *memStore) AppendMessage(_ context.Context, roomID, userID int64, username, text string) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsg++
	msg := &store.Message{
		ID:        m.nextMsg,
		RoomID:    roomID,
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: time.Now(),
	}
	m.messages[roomID] = append(m.messages[roomID], msg)
	copied := *msg
	return &copied, nil
}

func (m *memStore) ListMessages(_ context.Context, roomID int64, limit int) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.messages[roomID]
	if limit > len(all) {
		limit = len(all)
	}
	// Newest first, like the sqlite implementation.
	out := make([]*store.Message, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		copied := *all[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) roomByID(t *testing.T, id int64) *store.Room {
	t.Helper()
	room, err := m.GetRoomByID(context.Background(), id)
	if err != nil {
		t.Fatalf("room %d not found: %v", id, err)
	}
	return room
}

func (m *memStore) messageCount(roomID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[roomID])
}
