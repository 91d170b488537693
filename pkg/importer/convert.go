// Copyright 2024-2026 Aiku AI

package importer

import (
	"cmp"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/mattermost/mattermost/server/public/model"

	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

// MaxMessageLength is the longest body, in characters, Zulip accepts.
const MaxMessageLength = 10000

const (
	topicDirect     = "Imported from rocketchat"
	topicMain       = "Main channel content (imported from rocketchat)"
	topicDiscussion = "(Discussion) "
)

// ConvertedMessage is a message ready to be emitted. It carries no target
// ids for itself or its reactions; those are assigned on emission.
type ConvertedMessage struct {
	SourceID         string
	SenderID         int
	RecipientID      int
	Direct           bool
	Topic            string
	Content          string
	DateSent         float64
	HasLink          bool
	MentionedUserIDs []int
	Reactions        []PendingReaction
}

// PendingReaction is a reaction whose message id is not known yet.
type PendingReaction struct {
	UserID    int
	EmojiName string
	EmojiCode string
}

// Mentions reports whether the message mentions the given user.
func (m *ConvertedMessage) Mentions(userID int) bool {
	return slices.Contains(m.MentionedUserIDs, userID)
}

// MessageConverter turns raw messages into ConvertedMessages.
type MessageConverter struct {
	cc *ConversionContext
}

func NewMessageConverter(cc *ConversionContext) *MessageConverter {
	return &MessageConverter{cc: cc}
}

// Convert converts one message. It returns nil without an error when the
// message is dropped: system events and bodies over MaxMessageLength.
func (mc *MessageConverter) Convert(msg *rocketchat.Message, direct bool) (*ConvertedMessage, error) {
	cc := mc.cc
	log := cc.Log.With().Str("message_id", msg.ID).Str("room_id", msg.RoomID).Logger()

	if msg.IsEvent() {
		cc.Stats.SkippedEvents++
		log.Trace().Str("type", msg.Type).Msg("Dropping system event")
		return nil, nil
	}

	senderID, ok := cc.Users.Lookup(msg.User.ID)
	if !ok || !cc.UserHandler.Has(senderID) {
		return nil, fmt.Errorf("%w: sender %s (%s) of message %s", ErrUnknownUser, msg.User.ID, msg.User.Username, msg.ID)
	}

	mentionedIDs, mentioned := cc.resolveMentions(msg)
	content := formatContent(msg.Text, mentioned)
	if length := utf8.RuneCountInString(content); length > MaxMessageLength {
		cc.Stats.SkippedTooLong++
		log.Info().Int("length", length).Msg("Skipping too-long message")
		return nil, nil
	}

	recipientID, topic, err := mc.route(msg, senderID, direct)
	if err != nil {
		return nil, err
	}

	return &ConvertedMessage{
		SourceID:         msg.ID,
		SenderID:         senderID,
		RecipientID:      recipientID,
		Direct:           direct,
		Topic:            topic,
		Content:          content,
		DateSent:         zulip.UnixSeconds(msg.Timestamp),
		HasLink:          hasLink(content),
		MentionedUserIDs: mentionedIDs,
		Reactions:        mc.convertReactions(msg),
	}, nil
}

// route returns the recipient id and topic of a message.
func (mc *MessageConverter) route(msg *rocketchat.Message, senderID int, direct bool) (int, string, error) {
	cc := mc.cc
	if direct {
		room, ok := cc.Channels.Directs[msg.RoomID]
		if !ok {
			return 0, "", fmt.Errorf("%w: direct room %s of message %s not found", ErrUnresolvedRecipient, msg.RoomID, msg.ID)
		}
		targetID, err := mc.directTarget(room, msg, senderID)
		if err != nil {
			return 0, "", err
		}
		recipientID, ok := cc.UserRecipients[targetID]
		if !ok {
			return 0, "", fmt.Errorf("%w: user %d has no personal recipient", ErrUnresolvedRecipient, targetID)
		}
		return recipientID, topicDirect, nil
	}

	streamRoomID, topic := msg.RoomID, topicMain
	if dsc, ok := cc.Channels.Discussions[msg.RoomID]; ok {
		streamRoomID, topic = dsc.ParentID, topicDiscussion+dsc.Title()
	}
	streamID, ok := cc.Streams.Lookup(streamRoomID)
	if !ok {
		return 0, "", fmt.Errorf("%w: room %s of message %s is not a stream", ErrUnresolvedRecipient, streamRoomID, msg.ID)
	}
	recipientID, ok := cc.StreamRecipients[streamID]
	if !ok {
		return 0, "", fmt.Errorf("%w: stream %d has no recipient", ErrUnresolvedRecipient, streamID)
	}
	return recipientID, topic, nil
}

// directTarget picks the member of a direct room the message is addressed
// to: the first member unless the sender is the first member. A room with
// a single member is a note to self.
func (mc *MessageConverter) directTarget(room *rocketchat.Room, msg *rocketchat.Message, senderID int) (int, error) {
	var targetSourceID string
	switch {
	case len(room.UIDs) == 1:
		return senderID, nil
	case len(room.UIDs) == 0:
		return 0, fmt.Errorf("%w: direct room %s has no members", ErrUnresolvedRecipient, room.ID)
	case room.UIDs[0] == msg.User.ID:
		targetSourceID = room.UIDs[1]
	default:
		targetSourceID = room.UIDs[0]
	}
	targetID, ok := mc.cc.Users.Lookup(targetSourceID)
	if !ok {
		return 0, fmt.Errorf("%w: member %s of direct room %s", ErrUnknownUser, targetSourceID, room.ID)
	}
	return targetID, nil
}

func (mc *MessageConverter) convertReactions(msg *rocketchat.Message) []PendingReaction {
	cc := mc.cc
	var reactions []PendingReaction
	for _, reaction := range msg.FlatReactions() {
		code, ok := model.SystemEmojis[reaction.Emoji]
		if !ok {
			cc.Stats.SkippedReactions++
			cc.Log.Debug().
				Str("message_id", msg.ID).
				Str("emoji", reaction.Emoji).
				Msg("Dropping reaction with unknown emoji")
			continue
		}
		sourceID, ok := cc.Usernames[reaction.Username]
		var userID int
		if ok {
			userID, ok = cc.Users.Lookup(sourceID)
		}
		if !ok {
			cc.Stats.SkippedReactions++
			cc.Log.Debug().
				Str("message_id", msg.ID).
				Str("username", reaction.Username).
				Msg("Dropping reaction by unknown user")
			continue
		}
		reactions = append(reactions, PendingReaction{
			UserID:    userID,
			EmojiName: reaction.Emoji,
			EmojiCode: code,
		})
	}
	return reactions
}

// ConvertAll converts messages in order, dropping the ones Convert skips.
func (mc *MessageConverter) ConvertAll(msgs []*rocketchat.Message, direct bool) ([]*ConvertedMessage, error) {
	converted := make([]*ConvertedMessage, 0, len(msgs))
	for _, msg := range msgs {
		cm, err := mc.Convert(msg, direct)
		if err != nil {
			return nil, err
		} else if cm != nil {
			converted = append(converted, cm)
		}
	}
	return converted, nil
}

// PartitionMessages splits messages into channel traffic (rooms and
// discussions) and direct traffic, keeping relative order. Messages of
// unknown rooms go with channel traffic, where they fail to resolve.
func PartitionMessages(idx *ChannelIndex, msgs []*rocketchat.Message) (channel, direct []*rocketchat.Message) {
	for _, msg := range msgs {
		if kind, _ := idx.Kind(msg.RoomID); kind == ChannelDirect {
			direct = append(direct, msg)
		} else {
			channel = append(channel, msg)
		}
	}
	return
}

// sortByNativeID orders a snapshot by source id so target ids do not depend
// on dump order. Messages are ordered by timestamp first.
func sortByNativeID(snap *rocketchat.Snapshot) {
	slices.SortStableFunc(snap.Users, func(a, b *rocketchat.User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(snap.Rooms, func(a, b *rocketchat.Room) int {
		return cmp.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(snap.Messages, func(a, b *rocketchat.Message) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.ID, b.ID))
	})
}
