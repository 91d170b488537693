// Copyright 2024-2026 Aiku AI

package zulip

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mau.fi/util/ptr"
)

// RealmInfo is the single row of zerver_realm.
type RealmInfo struct {
	ID                int     `json:"id"`
	UUID              string  `json:"uuid"`
	StringID          string  `json:"string_id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	DateCreated       float64 `json:"date_created"`
	Deactivated       bool    `json:"deactivated"`
	InviteRequired    bool    `json:"invite_required"`
	EmailsRestricted  bool    `json:"emails_restricted_to_domains"`
	OrgType           int     `json:"org_type"`
	DefaultLanguage   string  `json:"default_language"`
	MessageRetainDays *int    `json:"message_retention_days"`
}

type Client struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type RealmDomain struct {
	ID              int    `json:"id"`
	Realm           int    `json:"realm"`
	Domain          string `json:"domain"`
	AllowSubdomains bool   `json:"allow_subdomains"`
}

type DefaultStream struct {
	ID     int `json:"id"`
	Realm  int `json:"realm"`
	Stream int `json:"stream"`
}

// Realm is the content of realm.json. Tables the converter does not fill
// are still emitted as empty lists because the Zulip importer expects them.
type Realm struct {
	Realm              []*RealmInfo     `json:"zerver_realm"`
	Clients            []*Client        `json:"zerver_client"`
	RealmDomains       []*RealmDomain   `json:"zerver_realmdomain"`
	DefaultStreams     []*DefaultStream `json:"zerver_defaultstream"`
	UserProfiles       []*UserProfile   `json:"zerver_userprofile"`
	Streams            []*Stream        `json:"zerver_stream"`
	Recipients         []*Recipient     `json:"zerver_recipient"`
	Subscriptions      []*Subscription  `json:"zerver_subscription"`
	Reactions          []*Reaction      `json:"zerver_reaction"`
	Huddles            []any            `json:"zerver_huddle"`
	RealmEmoji         []any            `json:"zerver_realmemoji"`
	RealmFilters       []any            `json:"zerver_realmfilter"`
	UserPresence       []any            `json:"zerver_userpresence"`
	UserActivity       []any            `json:"zerver_useractivity"`
	UserActivityIntv   []any            `json:"zerver_useractivityinterval"`
	CustomProfileField []any            `json:"zerver_customprofilefield"`
	CustomProfileValue []any            `json:"zerver_customprofilefieldvalue"`
	MirrorDummies      []any            `json:"zerver_userprofile_mirrordummy"`
	CrossRealm         []any            `json:"zerver_userprofile_crossrealm"`
	SortByDate         bool             `json:"sort_by_date"`
}

// NewRealm builds the realm skeleton for an import from the given product.
func NewRealm(realmID int, subdomain, domain, product string, now time.Time) *Realm {
	created := UnixSeconds(now)
	empty := func() []any { return []any{} }
	return &Realm{
		Realm: []*RealmInfo{{
			ID:              realmID,
			UUID:            uuid.NewString(),
			StringID:        subdomain,
			Name:            fmt.Sprintf("Imported from %s", product),
			Description:     fmt.Sprintf("Organization imported from %s!", product),
			DateCreated:     created,
			InviteRequired:  false,
			OrgType:         0,
			DefaultLanguage: "en",
		}},
		Clients: []*Client{{ID: DefaultSendingClientID, Name: "populate_db"}},
		RealmDomains: []*RealmDomain{{
			ID:     1,
			Realm:  realmID,
			Domain: domain,
		}},
		DefaultStreams:     []*DefaultStream{},
		UserProfiles:       []*UserProfile{},
		Streams:            []*Stream{},
		Recipients:         []*Recipient{},
		Subscriptions:      []*Subscription{},
		Reactions:          []*Reaction{},
		Huddles:            empty(),
		RealmEmoji:         empty(),
		RealmFilters:       empty(),
		UserPresence:       empty(),
		UserActivity:       empty(),
		UserActivityIntv:   empty(),
		CustomProfileField: empty(),
		CustomProfileValue: empty(),
		MirrorDummies:      empty(),
		CrossRealm:         empty(),
		SortByDate:         true,
	}
}

// UnixSeconds converts a timestamp to the fractional epoch seconds Zulip
// stores in date fields.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}

// NewSubscription builds a subscription row with Zulip's defaults.
func NewSubscription(id, userID, recipientID int) *Subscription {
	return &Subscription{
		ID:          id,
		UserProfile: userID,
		Recipient:   recipientID,
		Active:      true,
		Color:       "#c2c2c2",
	}
}

// NewUserMessage builds a delivery record with the flags Zulip's importer
// derives from the message class and mention state.
func NewUserMessage(id, userID, messageID int, private, mentioned, wildcard bool) *UserMessage {
	flags := FlagRead
	if mentioned {
		flags |= FlagMentioned
	}
	if wildcard {
		flags |= FlagWildcardMentioned
	}
	if private {
		flags |= FlagIsPrivate
	}
	return &UserMessage{
		ID:          id,
		UserProfile: userID,
		Message:     messageID,
		FlagsMask:   flags,
	}
}

// NewMessage builds a message row. Rendering is left to the Zulip importer.
func NewMessage(id, realmID, senderID, recipientID int, topic, content string, dateSent float64) *Message {
	return &Message{
		ID:                     id,
		Sender:                 senderID,
		Recipient:              recipientID,
		Realm:                  realmID,
		Subject:                topic,
		Content:                content,
		RenderedContentVersion: ptr.Ptr(1),
		DateSent:               dateSent,
		SendingClient:          DefaultSendingClientID,
	}
}
