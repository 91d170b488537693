// Copyright 2024-2026 Aiku AI

package importer

import (
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exmaps"

	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

// ConversionContext owns every piece of state one run shares between its
// stages. It is created empty at the start of a run and discarded at the
// end; nothing in it outlives the run.
type ConversionContext struct {
	RealmID int
	Domain  string
	Now     time.Time
	Log     zerolog.Logger

	Users       *IDMapper
	Streams     *IDMapper
	Seq         *Sequencer
	UserHandler *UserHandler
	Subscribers *SubscriberHandler

	Channels *ChannelIndex
	// Usernames maps a Rocket.Chat username to the user's source id.
	// Reactions reference users by name only.
	Usernames map[string]string

	// UserRecipients and StreamRecipients map a target user or stream id to
	// its recipient id.
	UserRecipients   map[int]int
	StreamRecipients map[int]int
	// SubscriberMap maps a recipient id to the users subscribed to it.
	SubscriberMap map[int]exmaps.Set[int]

	Reactions []*zulip.Reaction
	Stats     Stats
}

// Stats counts the records a run skipped without failing.
type Stats struct {
	Users             int
	Streams           int
	Messages          int
	Reactions         int
	BatchFiles        int
	SkippedEvents     int
	SkippedTooLong    int
	SkippedReactions  int
	SkippedMentions   int
	SkippedMembership int
}

func (s *Stats) MarshalZerologObject(evt *zerolog.Event) {
	evt.Int("users", s.Users).
		Int("streams", s.Streams).
		Int("messages", s.Messages).
		Int("reactions", s.Reactions).
		Int("batch_files", s.BatchFiles).
		Int("skipped_events", s.SkippedEvents).
		Int("skipped_too_long", s.SkippedTooLong).
		Int("skipped_reactions", s.SkippedReactions).
		Int("skipped_mentions", s.SkippedMentions).
		Int("skipped_memberships", s.SkippedMembership)
}

// NewConversionContext creates the empty state for one run.
func NewConversionContext(cfg *Config, now time.Time, log zerolog.Logger) *ConversionContext {
	return &ConversionContext{
		RealmID:          cfg.Realm.ID,
		Domain:           cfg.Realm.Domain,
		Now:              now,
		Log:              log,
		Users:            NewIDMapper("user", cfg.Conversion.IDFloor),
		Streams:          NewIDMapper("stream", cfg.Conversion.IDFloor),
		Seq:              NewSequencer(),
		UserHandler:      NewUserHandler(),
		Subscribers:      NewSubscriberHandler(),
		Channels:         ClassifyChannels(nil),
		Usernames:        make(map[string]string),
		UserRecipients:   make(map[int]int),
		StreamRecipients: make(map[int]int),
		SubscriberMap:    make(map[int]exmaps.Set[int]),
	}
}
