package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAuthenticate claims a display name for the connection.
	CommandAuthenticate CommandKind = iota
	// CommandJoinRoom moves the session into a room.
	CommandJoinRoom
	// CommandLeaveRoom removes the session from its current room.
	CommandLeaveRoom
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
	// CommandCreateRoom creates a new durable room.
	CommandCreateRoom
	// CommandGetRooms requests the room list.
	CommandGetRooms
	// CommandGetMessages requests recent history for a room.
	CommandGetMessages
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Username string
	RoomID   int64
	RoomName string
	Text     string
	Limit    int
}
