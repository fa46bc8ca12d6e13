package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by store implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// User represents a chat participant.
type User struct {
	ID        int64
	Username  string
	IsOnline  bool
	LastSeen  time.Time
	CreatedAt time.Time
}

// Room represents a chat room. UserCount is a persisted cache of the
// live occupancy maintained by the presence tracker.
type Room struct {
	ID        int64
	Name      string
	CreatorID int64
	UserCount int
	CreatedAt time.Time
}

// Message represents a persisted chat message. Username is denormalized
// at write time so history reads need no join.
type Message struct {
	ID        int64
	RoomID    int64
	UserID    int64
	Username  string
	Text      string
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UpsertUser creates the user if absent, otherwise marks it online
	// and refreshes last-seen.
	UpsertUser(ctx context.Context, username string) (*User, error)

	// SetUserOnline flips the online flag and refreshes last-seen.
	SetUserOnline(ctx context.Context, id int64, online bool) error
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom creates a new room with occupancy zero.
	// Returns ErrDuplicate if the name is already taken.
	CreateRoom(ctx context.Context, name string, creatorID int64) (*Room, error)

	// GetRoomByID retrieves a room by id.
	GetRoomByID(ctx context.Context, id int64) (*Room, error)

	// GetRoomByName retrieves a room by its exact name.
	GetRoomByName(ctx context.Context, name string) (*Room, error)

	// SetRoomOccupancy writes the cached occupancy count.
	SetRoomOccupancy(ctx context.Context, id int64, count int) error

	// ListRooms lists all rooms.
	ListRooms(ctx context.Context) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage persists a message; the store assigns id and timestamp.
	AppendMessage(ctx context.Context, roomID, userID int64, username, text string) (*Message, error)

	// ListMessages retrieves up to limit messages for a room, newest first.
	ListMessages(ctx context.Context, roomID int64, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
