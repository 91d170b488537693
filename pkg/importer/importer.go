// Copyright 2024-2026 Aiku AI

package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

// SourceProduct names the exporting product in realm metadata.
const SourceProduct = "Rocket.Chat"

// Importer runs one conversion of a loaded snapshot into a bundle.
type Importer struct {
	Config *Config
	Writer BundleWriter
	Log    zerolog.Logger

	// Now is used for creation timestamps. Defaults to time.Now.
	Now func() time.Time
}

func NewImporter(cfg *Config, writer BundleWriter, log zerolog.Logger) *Importer {
	return &Importer{
		Config: cfg,
		Writer: writer,
		Log:    log.With().Str("component", "importer").Logger(),
		Now:    time.Now,
	}
}

// Run converts snap and writes every artifact through the bundle writer.
// The returned stats are valid even when an error is returned.
func (imp *Importer) Run(ctx context.Context, snap *rocketchat.Snapshot) (*Stats, error) {
	now := time.Now()
	if imp.Now != nil {
		now = imp.Now()
	}
	cc := NewConversionContext(imp.Config, now, imp.Log)
	if imp.Config.Conversion.SortByNativeID {
		sortByNativeID(snap)
	}
	imp.Log.Info().
		Int("users", len(snap.Users)).
		Int("rooms", len(snap.Rooms)).
		Int("messages", len(snap.Messages)).
		Msg("Starting conversion")

	if err := cc.ConvertUsers(snap.Users); err != nil {
		return &cc.Stats, fmt.Errorf("failed to convert users: %w", err)
	}
	cc.Channels = ClassifyChannels(snap.Rooms)
	imp.Log.Debug().
		Int("rooms", len(cc.Channels.Rooms)).
		Int("teams", len(cc.Channels.Teams)).
		Int("discussions", len(cc.Channels.Discussions)).
		Int("directs", len(cc.Channels.Directs)).
		Msg("Classified channels")

	streams := cc.ConvertStreams()
	cc.PopulateSubscribers(snap.Users, streams)
	users := cc.UserHandler.All()
	recipients := cc.BuildRecipients(users, streams)
	subscriptions := cc.BuildSubscriptions(recipients)

	channelMsgs, directMsgs := PartitionMessages(cc.Channels, snap.Messages)
	converter := NewMessageConverter(cc)
	emitter := NewBatchEmitter(cc, imp.Writer, imp.Config.Conversion.ChunkSize)
	for _, part := range []struct {
		name   string
		msgs   []*rocketchat.Message
		direct bool
	}{
		{"channel", channelMsgs, false},
		{"direct", directMsgs, true},
	} {
		converted, err := converter.ConvertAll(part.msgs, part.direct)
		if err != nil {
			return &cc.Stats, fmt.Errorf("failed to convert %s messages: %w", part.name, err)
		}
		if err = emitter.Emit(ctx, converted); err != nil {
			return &cc.Stats, fmt.Errorf("failed to emit %s messages: %w", part.name, err)
		}
		imp.Log.Info().
			Str("part", part.name).
			Int("source", len(part.msgs)).
			Int("converted", len(converted)).
			Msg("Emitted messages")
	}

	realm := zulip.NewRealm(cc.RealmID, imp.Config.Realm.Subdomain, cc.Domain, SourceProduct, now)
	realm.UserProfiles = users
	realm.Streams = streams
	realm.Recipients = recipients
	realm.Subscriptions = subscriptions
	if len(cc.Reactions) > 0 {
		realm.Reactions = cc.Reactions
	}
	if err := imp.Writer.WriteRealm(ctx, realm); err != nil {
		return &cc.Stats, fmt.Errorf("failed to write realm: %w", err)
	}
	if err := imp.Writer.WritePlaceholders(ctx); err != nil {
		return &cc.Stats, fmt.Errorf("failed to write placeholder records: %w", err)
	}
	imp.Log.Info().Object("stats", &cc.Stats).Msg("Conversion finished")
	return &cc.Stats, nil
}
