// Copyright 2024-2026 Aiku AI

package importer

import (
	"go.mau.fi/util/exmaps"

	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

// BuildRecipients creates one personal recipient per user, in user handler
// order, followed by one stream recipient per stream.
func (cc *ConversionContext) BuildRecipients(users []*zulip.UserProfile, streams []*zulip.Stream) []*zulip.Recipient {
	recipients := make([]*zulip.Recipient, 0, len(users)+len(streams))
	for _, user := range users {
		rcpt := &zulip.Recipient{
			ID:     cc.Seq.Next(CounterRecipient),
			Type:   zulip.RecipientPersonal,
			TypeID: user.ID,
		}
		cc.UserRecipients[user.ID] = rcpt.ID
		recipients = append(recipients, rcpt)
	}
	for _, stream := range streams {
		rcpt := &zulip.Recipient{
			ID:     cc.Seq.Next(CounterRecipient),
			Type:   zulip.RecipientStream,
			TypeID: stream.ID,
		}
		cc.StreamRecipients[stream.ID] = rcpt.ID
		recipients = append(recipients, rcpt)
	}
	return recipients
}

// BuildSubscriptions links every user to their personal recipient and every
// stream member to the stream's recipient. It also fills the subscriber map
// used to address delivery records.
func (cc *ConversionContext) BuildSubscriptions(recipients []*zulip.Recipient) []*zulip.Subscription {
	var personal, stream []*zulip.Subscription
	for _, rcpt := range recipients {
		switch rcpt.Type {
		case zulip.RecipientPersonal:
			personal = append(personal, cc.subscribe(rcpt.TypeID, rcpt.ID))
		case zulip.RecipientStream:
			for _, userID := range cc.Subscribers.Sorted(rcpt.TypeID) {
				stream = append(stream, cc.subscribe(userID, rcpt.ID))
			}
		}
	}
	return append(personal, stream...)
}

func (cc *ConversionContext) subscribe(userID, recipientID int) *zulip.Subscription {
	members, ok := cc.SubscriberMap[recipientID]
	if !ok {
		members = make(exmaps.Set[int])
		cc.SubscriberMap[recipientID] = members
	}
	members.Add(userID)
	return zulip.NewSubscription(cc.Seq.Next(CounterSubscription), userID, recipientID)
}
