// Copyright 2024-2026 Aiku AI

package importer

import (
	"fmt"

	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

const teamStreamPrefix = "[TEAM] "

// ConvertStreams turns every classified room into a stream, in source order.
func (cc *ConversionContext) ConvertStreams() []*zulip.Stream {
	created := zulip.UnixSeconds(cc.Now)
	streams := make([]*zulip.Stream, 0, len(cc.Channels.RoomOrder))
	for _, roomID := range cc.Channels.RoomOrder {
		room := cc.Channels.Rooms[roomID]
		name, description := cc.streamNaming(room)
		streams = append(streams, &zulip.Stream{
			ID:                         cc.Streams.Get(room.ID),
			Realm:                      cc.RealmID,
			Name:                       name,
			Description:                description,
			InviteOnly:                 room.IsPrivate(),
			HistoryPublicToSubscribers: !room.IsPrivate(),
			DateCreated:                created,
		})
	}
	cc.Stats.Streams = len(streams)
	cc.Log.Info().Int("count", len(streams)).Msg("Converted streams")
	return streams
}

// streamNaming returns the stream name and description for a room. A team's
// main room is marked in its name; other rooms of the team name their team
// in the description.
func (cc *ConversionContext) streamNaming(room *rocketchat.Room) (name, description string) {
	name, description = room.Name, room.Description
	if name == "" {
		name = room.Title()
	}
	if room.TeamID == "" {
		return
	}
	if room.TeamMain {
		return teamStreamPrefix + name, description
	}
	team, ok := cc.Channels.Teams[room.TeamID]
	if !ok {
		cc.Log.Warn().
			Str("room_id", room.ID).
			Str("team_id", room.TeamID).
			Msg("Team of room not found, leaving description as is")
		return
	}
	return name, fmt.Sprintf("[Team %s channel]. %s", team.Name, description)
}

// PopulateSubscribers records the member set of every stream from the
// users' room lists. Discussions and direct rooms are not streams and are
// skipped.
func (cc *ConversionContext) PopulateSubscribers(users []*rocketchat.User, streams []*zulip.Stream) {
	members := make(map[int][]int)
	for _, user := range users {
		userID, ok := cc.Users.Lookup(user.ID)
		if !ok {
			continue
		}
		for _, roomID := range user.Rooms {
			kind, known := cc.Channels.Kind(roomID)
			if !known || kind != ChannelRoom {
				if !known {
					cc.Stats.SkippedMembership++
				}
				continue
			}
			streamID, ok := cc.Streams.Lookup(roomID)
			if !ok {
				continue
			}
			members[streamID] = append(members[streamID], userID)
		}
	}
	for _, stream := range streams {
		cc.Subscribers.Set(stream.ID, members[stream.ID])
	}
	if cc.Stats.SkippedMembership > 0 {
		cc.Log.Warn().
			Int("count", cc.Stats.SkippedMembership).
			Msg("Ignored memberships of rooms missing from the dump")
	}
}
