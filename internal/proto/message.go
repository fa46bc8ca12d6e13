package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeAuthenticate = "authenticate"
	InboundTypeJoinRoom     = "join_room"
	InboundTypeLeaveRoom    = "leave_room"
	InboundTypeSendMessage  = "send_message"
	InboundTypeCreateRoom   = "create_room"
	InboundTypeGetRooms     = "get_rooms"
	InboundTypeGetMessages  = "get_messages"

	OutboundTypeAuthenticated   = "authenticated"
	OutboundTypeAuthError       = "auth_error"
	OutboundTypeJoinedRoom      = "joined_room"
	OutboundTypeUserJoined      = "user_joined"
	OutboundTypeUserLeft        = "user_left"
	OutboundTypeNewMessage      = "new_message"
	OutboundTypeRoomCreated     = "room_created"
	OutboundTypeRoomListUpdated = "room_list_updated"
	OutboundTypeRoomsList       = "rooms_list"
	OutboundTypeMessagesHistory = "messages_history"
	OutboundTypeError           = "error"
)

// AuthenticateData is sent by the client to claim a display name.
type AuthenticateData struct {
	Username string `json:"username"`
}

// RoomRef addresses a room by id (join_room, leave_room).
type RoomRef struct {
	RoomID int64 `json:"roomId"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	RoomID int64  `json:"roomId"`
	Text   string `json:"text"`
}

// CreateRoomData requests creation of a new room.
type CreateRoomData struct {
	RoomName string `json:"roomName"`
}

// GetMessagesData requests recent history for a room.
type GetMessagesData struct {
	RoomID int64 `json:"roomId"`
	Limit  int   `json:"limit,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// AuthenticatedData confirms a successful display-name claim.
type AuthenticatedData struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// JoinedRoomData confirms a room join to the joiner.
type JoinedRoomData struct {
	RoomID   int64  `json:"roomId"`
	RoomName string `json:"roomName"`
}

// PresenceData announces a join or leave to room members.
type PresenceData struct {
	Username    string   `json:"username"`
	OnlineUsers []string `json:"onlineUsers"`
}

// MessageData carries one chat message (new_message, messages_history).
type MessageData struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomData describes a room (room_created, rooms_list).
type RoomData struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserCount int       `json:"userCount"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}
