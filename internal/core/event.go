package core

import "github.com/akarimov/chatbroker/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventAuthenticated confirms a successful display-name claim.
	EventAuthenticated EventKind = iota
	// EventAuthError rejects an authenticate attempt.
	EventAuthError
	// EventJoinedRoom confirms a room join to the joiner.
	EventJoinedRoom
	// EventUserJoined notifies room members about a user joining.
	EventUserJoined
	// EventUserLeft notifies room members about a user leaving.
	EventUserLeft
	// EventNewMessage notifies room members about a chat message.
	EventNewMessage
	// EventRoomCreated confirms room creation to the creator.
	EventRoomCreated
	// EventRoomListUpdated tells every connection the room list changed.
	EventRoomListUpdated
	// EventRoomsList delivers the room list to a client.
	EventRoomsList
	// EventMessagesHistory delivers message history to a client.
	EventMessagesHistory
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	UserID   int64
	Username string
	RoomID   int64
	RoomName string
	Members  []string
	Message  *store.Message
	Messages []*store.Message
	Rooms    []*store.Room
	Room     *store.Room
	Error    *CoreError
}
