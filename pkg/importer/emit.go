// Copyright 2024-2026 Aiku AI

package importer

import (
	"context"
	"fmt"
	"slices"

	"go.mau.fi/util/exslices"

	"github.com/aiku/rocketchat-zulip/pkg/importer/zulipfmt"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

// BundleWriter persists import artifacts. zulip.DirWriter is the on-disk
// implementation.
type BundleWriter interface {
	WriteMessageBatch(ctx context.Context, n int, batch *zulip.MessageBatch) error
	WriteRealm(ctx context.Context, realm *zulip.Realm) error
	WritePlaceholders(ctx context.Context) error
}

var _ BundleWriter = (*zulip.DirWriter)(nil)

// BatchEmitter assigns target ids to converted messages and writes them in
// fixed-size batches.
type BatchEmitter struct {
	cc        *ConversionContext
	writer    BundleWriter
	chunkSize int
}

func NewBatchEmitter(cc *ConversionContext, writer BundleWriter, chunkSize int) *BatchEmitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &BatchEmitter{cc: cc, writer: writer, chunkSize: chunkSize}
}

// Emit writes msgs as consecutive batch files. Reactions are collected into
// the conversion context for the realm bundle. No file is written for an
// empty list.
func (be *BatchEmitter) Emit(ctx context.Context, msgs []*ConvertedMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	for _, chunk := range exslices.Chunk(msgs, be.chunkSize) {
		batch := be.buildBatch(chunk)
		n := be.cc.Seq.Next(CounterName(CounterDumpFile, be.cc.RealmID)) + 1
		if err := be.writer.WriteMessageBatch(ctx, n, batch); err != nil {
			return fmt.Errorf("failed to write message batch %d: %w", n, err)
		}
		be.cc.Stats.BatchFiles++
		be.cc.Stats.Messages += batch.Len()
		clear(chunk)
	}
	return nil
}

func (be *BatchEmitter) buildBatch(chunk []*ConvertedMessage) *zulip.MessageBatch {
	cc := be.cc
	batch := &zulip.MessageBatch{
		Messages:     make([]*zulip.Message, 0, len(chunk)),
		UserMessages: make([]*zulip.UserMessage, 0, len(chunk)),
	}
	for _, cm := range chunk {
		messageID := cc.Seq.Next(CounterMessage)
		msg := zulip.NewMessage(messageID, cc.RealmID, cm.SenderID, cm.RecipientID, cm.Topic, cm.Content, cm.DateSent)
		msg.HasLink = cm.HasLink
		batch.Messages = append(batch.Messages, msg)

		wildcard := zulipfmt.HasWildcard(cm.Content)
		for _, userID := range be.deliverTo(cm) {
			batch.UserMessages = append(batch.UserMessages, zulip.NewUserMessage(
				cc.Seq.Next(CounterUserMessage), userID, messageID,
				cm.Direct, cm.Mentions(userID), wildcard,
			))
		}

		for _, pending := range cm.Reactions {
			cc.Reactions = append(cc.Reactions, &zulip.Reaction{
				ID:           cc.Seq.Next(CounterReaction),
				Message:      messageID,
				UserProfile:  pending.UserID,
				EmojiName:    pending.EmojiName,
				EmojiCode:    pending.EmojiCode,
				ReactionType: zulip.ReactionTypeUnicode,
			})
			cc.Stats.Reactions++
		}
	}
	return batch
}

// deliverTo returns the users who receive a message, in ascending id order:
// the subscribers of its recipient, plus the sender of a direct message.
func (be *BatchEmitter) deliverTo(cm *ConvertedMessage) []int {
	var users []int
	if members, ok := be.cc.SubscriberMap[cm.RecipientID]; ok {
		users = members.AsList()
	}
	if cm.Direct && !slices.Contains(users, cm.SenderID) {
		users = append(users, cm.SenderID)
	}
	slices.Sort(users)
	return users
}
