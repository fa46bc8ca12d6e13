package http

import (
	"encoding/json"

	"github.com/akarimov/chatbroker/internal/core"
	"github.com/akarimov/chatbroker/internal/proto"
)

// inboundToCommand maps a wire envelope to a core command. A nil command
// with nil error means the type is unrecognized and the envelope is
// dropped silently.
func inboundToCommand(inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeAuthenticate:
		var auth proto.AuthenticateData
		if err := json.Unmarshal(inbound.Data, &auth); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:     core.CommandAuthenticate,
			Username: auth.Username,
		}, nil
	case proto.InboundTypeJoinRoom:
		var join proto.RoomRef
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:   core.CommandJoinRoom,
			RoomID: join.RoomID,
		}, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.RoomRef
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:   core.CommandLeaveRoom,
			RoomID: leave.RoomID,
		}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:   core.CommandSendMessage,
			RoomID: msg.RoomID,
			Text:   msg.Text,
		}, nil
	case proto.InboundTypeCreateRoom:
		var create proto.CreateRoomData
		if err := json.Unmarshal(inbound.Data, &create); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:     core.CommandCreateRoom,
			RoomName: create.RoomName,
		}, nil
	case proto.InboundTypeGetRooms:
		return &core.Command{Kind: core.CommandGetRooms}, nil
	case proto.InboundTypeGetMessages:
		var get proto.GetMessagesData
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &get); err != nil {
				return nil, err
			}
		}
		return &core.Command{
			Kind:   core.CommandGetMessages,
			RoomID: get.RoomID,
			Limit:  get.Limit,
		}, nil
	default:
		return nil, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventAuthenticated:
		return proto.Outbound{
			Type: proto.OutboundTypeAuthenticated,
			Data: proto.AuthenticatedData{
				UserID:   event.UserID,
				Username: event.Username,
			},
		}
	case core.EventAuthError:
		return proto.Outbound{
			Type:    proto.OutboundTypeAuthError,
			Message: event.Error.Message,
		}
	case core.EventJoinedRoom:
		return proto.Outbound{
			Type: proto.OutboundTypeJoinedRoom,
			Data: proto.JoinedRoomData{
				RoomID:   event.RoomID,
				RoomName: event.RoomName,
			},
		}
	case core.EventUserJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeUserJoined,
			Data: proto.PresenceData{
				Username:    event.Username,
				OnlineUsers: memberList(event.Members),
			},
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeUserLeft,
			Data: proto.PresenceData{
				Username:    event.Username,
				OnlineUsers: memberList(event.Members),
			},
		}
	case core.EventNewMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeNewMessage,
			Data: proto.MessageData{
				ID:        event.Message.ID,
				Username:  event.Message.Username,
				Text:      event.Message.Text,
				Timestamp: event.Message.CreatedAt,
			},
		}
	case core.EventRoomCreated:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomCreated,
			Data: proto.RoomData{
				ID:        event.Room.ID,
				Name:      event.Room.Name,
				UserCount: event.Room.UserCount,
			},
		}
	case core.EventRoomListUpdated:
		return proto.Outbound{Type: proto.OutboundTypeRoomListUpdated}
	case core.EventRoomsList:
		rooms := make([]proto.RoomData, 0, len(event.Rooms))
		for _, room := range event.Rooms {
			rooms = append(rooms, proto.RoomData{
				ID:        room.ID,
				Name:      room.Name,
				UserCount: room.UserCount,
				CreatedAt: room.CreatedAt,
			})
		}
		return proto.Outbound{
			Type: proto.OutboundTypeRoomsList,
			Data: rooms,
		}
	case core.EventMessagesHistory:
		messages := make([]proto.MessageData, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, proto.MessageData{
				ID:        msg.ID,
				Username:  msg.Username,
				Text:      msg.Text,
				Timestamp: msg.CreatedAt,
			})
		}
		return proto.Outbound{
			Type: proto.OutboundTypeMessagesHistory,
			Data: messages,
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Message: "unknown error"}
		}
		return proto.Outbound{
			Type:    proto.OutboundTypeError,
			Message: event.Error.Message,
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Message: "unknown event"}
	}
}

func memberList(members []string) []string {
	if members == nil {
		return []string{}
	}
	return members
}
