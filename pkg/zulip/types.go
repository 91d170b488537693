// Copyright 2024-2026 Aiku AI

// Package zulip contains the records of a Zulip data import directory and
// the writer that lays them out on disk.
package zulip

// Recipient types, matching zerver.models.Recipient.
const (
	RecipientPersonal = 1
	RecipientStream   = 2
	RecipientHuddle   = 3
)

// User roles, matching zerver.models.UserProfile.
const (
	RoleRealmOwner    = 100
	RoleAdministrator = 200
	RoleModerator     = 300
	RoleMember        = 400
	RoleGuest         = 600
)

// UserMessage flag bits.
const (
	FlagRead              = 1 << 0
	FlagMentioned         = 1 << 3
	FlagWildcardMentioned = 1 << 4
	FlagIsPrivate         = 1 << 11
)

const (
	AvatarSourceGravatar   = "G"
	ReactionTypeUnicode    = "unicode_emoji"
	DefaultTimezone        = "UTC"
	DefaultSendingClientID = 1
)

type UserProfile struct {
	ID            int     `json:"id"`
	Realm         int     `json:"realm"`
	FullName      string  `json:"full_name"`
	ShortName     string  `json:"short_name"`
	Email         string  `json:"email"`
	DeliveryEmail string  `json:"delivery_email"`
	Role          int     `json:"role"`
	IsActive      bool    `json:"is_active"`
	IsMirrorDummy bool    `json:"is_mirror_dummy"`
	IsBot         bool    `json:"is_bot"`
	BotType       *int    `json:"bot_type"`
	AvatarSource  string  `json:"avatar_source"`
	DateJoined    float64 `json:"date_joined"`
	LastLogin     float64 `json:"last_login"`
	Timezone      string  `json:"timezone"`
}

type Stream struct {
	ID                         int     `json:"id"`
	Realm                      int     `json:"realm"`
	Name                       string  `json:"name"`
	Description                string  `json:"description"`
	RenderedDescription        string  `json:"rendered_description"`
	InviteOnly                 bool    `json:"invite_only"`
	HistoryPublicToSubscribers bool    `json:"history_public_to_subscribers"`
	Deactivated                bool    `json:"deactivated"`
	DateCreated                float64 `json:"date_created"`
}

type Recipient struct {
	ID     int `json:"id"`
	Type   int `json:"type"`
	TypeID int `json:"type_id"`
}

type Subscription struct {
	ID                     int    `json:"id"`
	UserProfile            int    `json:"user_profile"`
	Recipient              int    `json:"recipient"`
	Active                 bool   `json:"active"`
	Color                  string `json:"color"`
	IsMuted                bool   `json:"is_muted"`
	PinToTop               bool   `json:"pin_to_top"`
	DesktopNotifications   *bool  `json:"desktop_notifications"`
	AudibleNotifications   *bool  `json:"audible_notifications"`
	PushNotifications      *bool  `json:"push_notifications"`
	EmailNotifications     *bool  `json:"email_notifications"`
	WildcardMentionsNotify *bool  `json:"wildcard_mentions_notify"`
}

type Message struct {
	ID                     int     `json:"id"`
	Sender                 int     `json:"sender"`
	Recipient              int     `json:"recipient"`
	Realm                  int     `json:"realm"`
	Subject                string  `json:"subject"`
	Content                string  `json:"content"`
	RenderedContent        *string `json:"rendered_content"`
	RenderedContentVersion *int    `json:"rendered_content_version"`
	DateSent               float64 `json:"date_sent"`
	SendingClient          int     `json:"sending_client"`
	HasAttachment          bool    `json:"has_attachment"`
	HasImage               bool    `json:"has_image"`
	HasLink                bool    `json:"has_link"`
}

type UserMessage struct {
	ID          int `json:"id"`
	UserProfile int `json:"user_profile"`
	Message     int `json:"message"`
	FlagsMask   int `json:"flags_mask"`
}

type Reaction struct {
	ID           int    `json:"id"`
	Message      int    `json:"message"`
	UserProfile  int    `json:"user_profile"`
	EmojiName    string `json:"emoji_name"`
	EmojiCode    string `json:"emoji_code"`
	ReactionType string `json:"reaction_type"`
}

// MessageBatch is the content of one messages-NNNNNN.json file.
type MessageBatch struct {
	Messages     []*Message     `json:"zerver_message"`
	UserMessages []*UserMessage `json:"zerver_usermessage"`
}

// Len returns the number of messages in the batch.
func (mb *MessageBatch) Len() int {
	return len(mb.Messages)
}
