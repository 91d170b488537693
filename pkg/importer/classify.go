// Copyright 2024-2026 Aiku AI

package importer

import (
	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
)

// ChannelKind is the category a raw room record is converted as.
type ChannelKind int

const (
	ChannelRoom ChannelKind = iota
	ChannelDiscussion
	ChannelDirect
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelDiscussion:
		return "discussion"
	case ChannelDirect:
		return "direct"
	default:
		return "room"
	}
}

// ClassifyChannel returns the category of a room. A parent reference wins
// over the direct tag, which wins over everything else.
func ClassifyChannel(room *rocketchat.Room) ChannelKind {
	switch {
	case room.IsDiscussion():
		return ChannelDiscussion
	case room.IsDirect():
		return ChannelDirect
	default:
		return ChannelRoom
	}
}

// ChannelIndex holds the id-keyed room categories later stages read from.
type ChannelIndex struct {
	Rooms map[string]*rocketchat.Room
	// RoomOrder lists room ids in source order so streams are numbered
	// deterministically.
	RoomOrder []string
	// Teams maps a team id to the team's main room.
	Teams       map[string]*rocketchat.Room
	Discussions map[string]*rocketchat.Room
	Directs     map[string]*rocketchat.Room
}

// ClassifyChannels sorts every room into exactly one category.
func ClassifyChannels(rooms []*rocketchat.Room) *ChannelIndex {
	idx := &ChannelIndex{
		Rooms:       make(map[string]*rocketchat.Room),
		Teams:       make(map[string]*rocketchat.Room),
		Discussions: make(map[string]*rocketchat.Room),
		Directs:     make(map[string]*rocketchat.Room),
	}
	for _, room := range rooms {
		switch ClassifyChannel(room) {
		case ChannelDiscussion:
			idx.Discussions[room.ID] = room
		case ChannelDirect:
			idx.Directs[room.ID] = room
		default:
			if _, seen := idx.Rooms[room.ID]; !seen {
				idx.RoomOrder = append(idx.RoomOrder, room.ID)
			}
			idx.Rooms[room.ID] = room
			if room.TeamMain && room.TeamID != "" {
				idx.Teams[room.TeamID] = room
			}
		}
	}
	return idx
}

// Kind returns the category of a room id, and false for unknown ids.
func (idx *ChannelIndex) Kind(roomID string) (ChannelKind, bool) {
	if _, ok := idx.Discussions[roomID]; ok {
		return ChannelDiscussion, true
	} else if _, ok = idx.Directs[roomID]; ok {
		return ChannelDirect, true
	} else if _, ok = idx.Rooms[roomID]; ok {
		return ChannelRoom, true
	}
	return ChannelRoom, false
}
