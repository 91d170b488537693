// Copyright 2024-2026 Aiku AI

package importer

import (
	"strings"

	"github.com/aiku/rocketchat-zulip/pkg/importer/zulipfmt"
	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
)

// resolveMentions maps the mentions of a message to target users. Broadcast
// mentions are left to the text rewrite, unknown users are logged and
// skipped. The returned ids are deduplicated and in mention order.
func (cc *ConversionContext) resolveMentions(msg *rocketchat.Message) ([]int, []zulipfmt.MentionedUser) {
	var ids []int
	var users []zulipfmt.MentionedUser
	seen := make(map[int]struct{}, len(msg.Mentions))
	for _, mention := range msg.Mentions {
		if mention.IsBroadcast() {
			continue
		}
		userID, ok := cc.Users.Lookup(mention.ID)
		if !ok {
			cc.Stats.SkippedMentions++
			cc.Log.Warn().
				Str("message_id", msg.ID).
				Str("mentioned_id", mention.ID).
				Str("mentioned_username", mention.Username).
				Msg("Mentioned user not found, leaving mention as plain text")
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		user, err := cc.UserHandler.Get(userID)
		if err != nil {
			cc.Stats.SkippedMentions++
			continue
		}
		ids = append(ids, userID)
		users = append(users, zulipfmt.MentionedUser{ShortName: user.ShortName, FullName: user.FullName})
	}
	return ids, users
}

// formatContent rewrites a message body to Zulip markdown.
func formatContent(text string, mentioned []zulipfmt.MentionedUser) string {
	return zulipfmt.RewriteMentions(text, mentioned)
}

func hasLink(content string) bool {
	return strings.Contains(content, "http://") || strings.Contains(content, "https://")
}
