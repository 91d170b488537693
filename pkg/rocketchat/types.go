// Copyright 2024-2026 Aiku AI

package rocketchat

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrInvalidRecord is returned when a decoded document lacks a field that
// every record of its kind must carry.
var ErrInvalidRecord = errors.New("invalid record")

// Room type tags as stored in the "t" field of rocketchat_room.
const (
	RoomTypePublic   = "c"
	RoomTypePrivate  = "p"
	RoomTypeDirect   = "d"
	RoomTypeLivechat = "l"
)

// UserTypeUser is the account type of a regular human account. Anything else
// (bot, app, ...) is imported as an inactive mirror dummy.
const UserTypeUser = "user"

// Email is one entry of a user's emails list.
type Email struct {
	Address  string `bson:"address"`
	Verified bool   `bson:"verified"`
}

// User is a document from the users collection.
type User struct {
	ID       string   `bson:"_id"`
	Username string   `bson:"username"`
	Name     string   `bson:"name"`
	Type     string   `bson:"type"`
	Active   bool     `bson:"active"`
	Roles    []string `bson:"roles"`
	Emails   []Email  `bson:"emails"`
	// Rooms lists the ids of every room the user is a member of.
	Rooms []string `bson:"__rooms"`
}

func (u *User) Validate() error {
	switch {
	case u.ID == "":
		return fmt.Errorf("%w: user without _id", ErrInvalidRecord)
	case u.Username == "":
		return fmt.Errorf("%w: user %s has no username", ErrInvalidRecord, u.ID)
	}
	return nil
}

// PrimaryEmail returns the first email address of the user, if any.
func (u *User) PrimaryEmail() (string, bool) {
	for _, email := range u.Emails {
		if email.Address != "" {
			return email.Address, true
		}
	}
	return "", false
}

// HasRole reports whether the user carries the given role tag.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Room is a document from the rocketchat_room collection.
type Room struct {
	ID          string `bson:"_id"`
	Type        string `bson:"t"`
	Name        string `bson:"name"`
	FName       string `bson:"fname"`
	Description string `bson:"description"`
	Topic       string `bson:"topic"`
	// ParentID is set on discussions and references the room the discussion
	// was started from.
	ParentID   string   `bson:"prid"`
	TeamID     string   `bson:"teamId"`
	TeamMain   bool     `bson:"teamMain"`
	UIDs       []string `bson:"uids"`
	Usernames  []string `bson:"usernames"`
	UsersCount int      `bson:"usersCount"`
}

func (r *Room) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: room without _id", ErrInvalidRecord)
	case r.Type == "":
		return fmt.Errorf("%w: room %s has no type", ErrInvalidRecord, r.ID)
	}
	return nil
}

func (r *Room) IsDiscussion() bool {
	return r.ParentID != ""
}

func (r *Room) IsDirect() bool {
	return r.Type == RoomTypeDirect
}

func (r *Room) IsPrivate() bool {
	return r.Type == RoomTypePrivate
}

// Title returns the human readable room title. Discussions keep their
// title in fname while name holds a generated slug.
func (r *Room) Title() string {
	if r.FName != "" {
		return r.FName
	}
	return r.Name
}

// MessageUser is the embedded sender reference of a message.
type MessageUser struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
	Name     string `bson:"name"`
}

// Mention is one entry of a message's mentions list. The pseudo users "all"
// and "here" appear with those strings as their id.
type Mention struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
}

// IsBroadcast reports whether the mention is the @all or @here pseudo user.
func (m Mention) IsBroadcast() bool {
	return m.ID == MentionAll || m.ID == MentionHere
}

const (
	MentionAll  = "all"
	MentionHere = "here"
)

// ReactionUsers is the value side of a message's reactions map.
type ReactionUsers struct {
	Usernames []string `bson:"usernames"`
}

// Reaction is a single (emoji, user) pair flattened out of a message's
// reactions map.
type Reaction struct {
	// Emoji is the short name without surrounding colons.
	Emoji    string
	Username string
}

// Message is a document from the rocketchat_message collection.
type Message struct {
	ID        string      `bson:"_id"`
	RoomID    string      `bson:"rid"`
	User      MessageUser `bson:"u"`
	Text      string      `bson:"msg"`
	Timestamp time.Time   `bson:"ts"`
	// Type is set for system messages (uj, ru, room_changed_topic, ...).
	Type      string                   `bson:"t"`
	Mentions  []Mention                `bson:"mentions"`
	Reactions map[string]ReactionUsers `bson:"reactions"`
	ThreadID  string                   `bson:"tmid"`
}

func (m *Message) Validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: message without _id", ErrInvalidRecord)
	case m.RoomID == "":
		return fmt.Errorf("%w: message %s has no room", ErrInvalidRecord, m.ID)
	case m.User.ID == "":
		return fmt.Errorf("%w: message %s has no sender", ErrInvalidRecord, m.ID)
	case m.Timestamp.IsZero():
		return fmt.Errorf("%w: message %s has no timestamp", ErrInvalidRecord, m.ID)
	}
	return nil
}

// IsEvent reports whether the message is a membership change, rename or
// other system notice rather than user content.
func (m *Message) IsEvent() bool {
	return m.Type != ""
}

// FlatReactions returns one Reaction per (emoji, username) pair, ordered by
// emoji name and then by the order users reacted in.
func (m *Message) FlatReactions() []Reaction {
	if len(m.Reactions) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m.Reactions))
	for key := range m.Reactions {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	var reactions []Reaction
	for _, key := range keys {
		emoji := strings.Trim(key, ":")
		for _, username := range m.Reactions[key].Usernames {
			reactions = append(reactions, Reaction{Emoji: emoji, Username: username})
		}
	}
	return reactions
}
