package core

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/akarimov/chatbroker/internal/store"
)

const (
	minRoomNameLen = 2
	maxRoomNameLen = 30

	// DefaultHistoryLimit is used when get_messages omits a limit.
	DefaultHistoryLimit = 50
)

// Router decodes client commands, runs them against the session registry
// and presence tracker, persists through the store, and fans results out
// via the broadcaster. Each command runs synchronously on its
// connection's worker; shared state is guarded inside the registry and
// tracker, so a slow store call delays only the calling connection.
type Router struct {
	registry     *Registry
	presence     *Presence
	store        store.Store
	cast         *Broadcaster
	historyLimit int
	log          *zerolog.Logger
}

// NewRouter constructs a router with its own registry and presence
// tracker. historyLimit <= 0 falls back to DefaultHistoryLimit.
func NewRouter(st store.Store, historyLimit int, logger *zerolog.Logger) *Router {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	registry := NewRegistry()
	return &Router{
		registry:     registry,
		presence:     NewPresence(),
		store:        st,
		cast:         NewBroadcaster(registry),
		historyLimit: historyLimit,
		log:          logger,
	}
}

// Connect registers a new connection with no bound session.
func (rt *Router) Connect(c *Client) {
	rt.registry.Register(c)
	rt.log.Debug().Str("client_id", c.ID).Msg("client connected")
}

// Handle dispatches one command from a client. Domain failures are
// answered on the originating connection only and never propagate.
func (rt *Router) Handle(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandAuthenticate:
		rt.handleAuthenticate(ctx, c, cmd.Username)
	case CommandJoinRoom:
		rt.handleJoinRoom(ctx, c, cmd.RoomID)
	case CommandLeaveRoom:
		rt.handleLeaveRoom(ctx, c, cmd.RoomID)
	case CommandSendMessage:
		rt.handleSendMessage(ctx, c, cmd.RoomID, cmd.Text)
	case CommandCreateRoom:
		rt.handleCreateRoom(ctx, c, cmd.RoomName)
	case CommandGetRooms:
		rt.handleGetRooms(ctx, c)
	case CommandGetMessages:
		rt.handleGetMessages(ctx, c, cmd.RoomID, cmd.Limit)
	}
}

func (rt *Router) handleAuthenticate(ctx context.Context, c *Client, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		rt.cast.SendTo(c, &Event{
			Kind:  EventAuthError,
			Error: coreError(ErrCodeBadRequest, "Username is required"),
		})
		return
	}

	if cerr := rt.registry.Claim(c, username); cerr != nil {
		rt.cast.SendTo(c, &Event{Kind: EventAuthError, Error: cerr})
		return
	}

	// The durable upsert runs outside the registry lock; the claim is
	// rolled back if it fails.
	user, err := rt.store.UpsertUser(ctx, username)
	if err != nil {
		rt.registry.Unclaim(c)
		rt.log.Error().Err(err).Str("username", username).Msg("failed to upsert user")
		rt.cast.SendTo(c, &Event{
			Kind:  EventAuthError,
			Error: coreError(ErrCodeStoreError, "Failed to authenticate"),
		})
		return
	}
	rt.registry.Bind(c, user.ID)

	rt.cast.SendTo(c, &Event{
		Kind:     EventAuthenticated,
		UserID:   user.ID,
		Username: username,
	})
	rt.log.Info().Str("username", username).Msg("user authenticated")
}

func (rt *Router) handleJoinRoom(ctx context.Context, c *Client, roomID int64) {
	sess, ok := rt.registry.Lookup(c)
	if !ok {
		rt.sendError(c, coreError(ErrCodeNotAuthenticated, "Not authenticated"))
		return
	}

	room, err := rt.store.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rt.sendError(c, coreError(ErrCodeRoomNotFound, "Room not found"))
			return
		}
		rt.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to look up room")
		rt.sendError(c, coreError(ErrCodeStoreError, "Failed to join room"))
		return
	}

	// Leaving the previous room first keeps each session in at most one
	// room.
	if sess.State == StateInRoom && rt.registry.ClearRoom(c, sess.RoomID) {
		if cerr := rt.departRoom(ctx, c, sess.RoomID, sess.Username); cerr != nil {
			rt.sendError(c, cerr)
			return
		}
	}

	rt.registry.SetRoom(c, roomID)
	members := rt.presence.Join(roomID, sess.Username)

	// The persisted count is the one computed under the tracker lock.
	if err := rt.store.SetRoomOccupancy(ctx, roomID, len(members)); err != nil {
		rt.presence.Leave(roomID, sess.Username)
		rt.registry.ClearRoom(c, roomID)
		rt.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to persist occupancy")
		rt.sendError(c, coreError(ErrCodeStoreError, "Failed to join room"))
		return
	}

	rt.cast.SendTo(c, &Event{
		Kind:     EventJoinedRoom,
		RoomID:   roomID,
		RoomName: room.Name,
	})
	rt.cast.Room(roomID, &Event{
		Kind:     EventUserJoined,
		Username: sess.Username,
		RoomID:   roomID,
		Members:  members,
	}, c)
	rt.log.Info().Str("username", sess.Username).Str("room", room.Name).Msg("user joined room")
}

func (rt *Router) handleLeaveRoom(ctx context.Context, c *Client, roomID int64) {
	sess, ok := rt.registry.Lookup(c)
	if !ok {
		return
	}
	// Silently ignored unless the session is actually in that room.
	if !rt.registry.ClearRoom(c, roomID) {
		return
	}

	if cerr := rt.departRoom(ctx, c, roomID, sess.Username); cerr != nil {
		rt.sendError(c, cerr)
		return
	}
	rt.log.Info().Str("username", sess.Username).Int64("room_id", roomID).Msg("user left room")
}

// departRoom removes the name from the room's membership, persists the
// occupancy computed under the tracker lock, and broadcasts user_left to
// the remaining members. The departing connection gets the same
// user_left so its client can update the member list. A store failure
// aborts before the broadcast.
func (rt *Router) departRoom(ctx context.Context, c *Client, roomID int64, username string) *CoreError {
	members := rt.presence.Leave(roomID, username)

	if err := rt.store.SetRoomOccupancy(ctx, roomID, len(members)); err != nil {
		rt.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to persist occupancy")
		return coreError(ErrCodeStoreError, "Failed to leave room")
	}

	ev := &Event{
		Kind:     EventUserLeft,
		Username: username,
		RoomID:   roomID,
		Members:  members,
	}
	// The session's room is already cleared, so the room fan-out no
	// longer reaches the leaver.
	rt.cast.Room(roomID, ev, nil)
	rt.cast.SendTo(c, ev)
	return nil
}

func (rt *Router) handleSendMessage(ctx context.Context, c *Client, roomID int64, text string) {
	sess, ok := rt.registry.Lookup(c)
	if !ok || sess.State != StateInRoom || sess.RoomID != roomID {
		rt.sendError(c, coreError(ErrCodeNotInRoom, "Not in this room"))
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		rt.sendError(c, coreError(ErrCodeEmptyMessage, "Message cannot be empty"))
		return
	}

	msg, err := rt.store.AppendMessage(ctx, roomID, sess.UserID, sess.Username, text)
	if err != nil {
		rt.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to persist message")
		rt.sendError(c, coreError(ErrCodeStoreError, "Failed to send message"))
		return
	}

	// The sender receives its own message too.
	rt.cast.Room(roomID, &Event{
		Kind:    EventNewMessage,
		RoomID:  roomID,
		Message: msg,
	}, nil)
	rt.log.Debug().Str("username", sess.Username).Int64("room_id", roomID).Msg("message sent")
}

func (rt *Router) handleCreateRoom(ctx context.Context, c *Client, roomName string) {
	sess, ok := rt.registry.Lookup(c)
	if !ok {
		rt.sendError(c, coreError(ErrCodeNotAuthenticated, "Not authenticated"))
		return
	}

	roomName = strings.TrimSpace(roomName)
	if roomName == "" {
		rt.sendError(c, coreError(ErrCodeEmptyRoomName, "Room name cannot be empty"))
		return
	}
	if n := utf8.RuneCountInString(roomName); n < minRoomNameLen || n > maxRoomNameLen {
		rt.sendError(c, coreError(ErrCodeBadRequest, "Room name must be 2-30 characters"))
		return
	}

	if _, err := rt.store.GetRoomByName(ctx, roomName); err == nil {
		rt.sendError(c, coreError(ErrCodeRoomExists, "Room already exists"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		rt.log.Error().Err(err).Str("room_name", roomName).Msg("failed to look up room")
		rt.sendError(c, coreError(ErrCodeStoreError, "Failed to create room"))
		return
	}

	room, err := rt.store.CreateRoom(ctx, roomName, sess.UserID)
	if err != nil {
		// Concurrent create can slip past the lookup; the unique
		// constraint is the backstop.
		if errors.Is(err, store.ErrDuplicate) {
			rt.sendError(c, coreError(ErrCodeRoomExists, "Room already exists"))
			return
		}
		rt.log.Error().Err(err).Str("room_name", roomName).Msg("failed to create room")
		rt.sendError(c, coreError(ErrCodeStoreError, "Failed to create room"))
		return
	}

	rt.cast.SendTo(c, &Event{Kind: EventRoomCreated, Room: room})
	rt.cast.All(&Event{Kind: EventRoomListUpdated})
	rt.log.Info().Str("room_name", room.Name).Str("username", sess.Username).Msg("room created")
}

func (rt *Router) handleGetRooms(ctx context.Context, c *Client) {
	rooms, err := rt.store.ListRooms(ctx)
	if err != nil {
		rt.log.Error().Err(err).Msg("failed to list rooms")
		rt.sendError(c, coreError(ErrCodeStoreError, "Failed to fetch rooms"))
		return
	}
	rt.cast.SendTo(c, &Event{Kind: EventRoomsList, Rooms: rooms})
}

func (rt *Router) handleGetMessages(ctx context.Context, c *Client, roomID int64, limit int) {
	if limit <= 0 {
		limit = rt.historyLimit
	}

	messages, err := rt.store.ListMessages(ctx, roomID, limit)
	if err != nil {
		rt.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to list messages")
		rt.sendError(c, coreError(ErrCodeStoreError, "Failed to fetch messages"))
		return
	}

	// The store returns newest first; history is delivered ascending.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	rt.cast.SendTo(c, &Event{
		Kind:     EventMessagesHistory,
		RoomID:   roomID,
		Messages: messages,
	})
}

// Disconnect runs the cleanup for a closed connection: leave the current
// room, mark the user offline, drop the session. Safe to call more than
// once; the work runs exactly once per connection. Failures are logged,
// never propagated.
func (rt *Router) Disconnect(ctx context.Context, c *Client) {
	c.Close()

	sess := rt.registry.Remove(c)
	if sess == nil {
		return
	}

	if sess.State == StateInRoom {
		members := rt.presence.Leave(sess.RoomID, sess.Username)
		if err := rt.store.SetRoomOccupancy(ctx, sess.RoomID, len(members)); err != nil {
			rt.log.Warn().Err(err).Int64("room_id", sess.RoomID).Msg("failed to persist occupancy on disconnect")
		}
		rt.cast.Room(sess.RoomID, &Event{
			Kind:     EventUserLeft,
			Username: sess.Username,
			RoomID:   sess.RoomID,
			Members:  members,
		}, nil)
	}

	if sess.UserID != 0 {
		if err := rt.store.SetUserOnline(ctx, sess.UserID, false); err != nil {
			rt.log.Warn().Err(err).Str("username", sess.Username).Msg("failed to mark user offline")
		}
	}

	rt.log.Info().Str("username", sess.Username).Msg("user disconnected")
}

func (rt *Router) sendError(c *Client, cerr *CoreError) {
	rt.cast.SendTo(c, &Event{Kind: EventError, Error: cerr})
}
