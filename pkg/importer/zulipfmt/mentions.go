// Copyright 2024-2026 Aiku AI

// Package zulipfmt converts Rocket.Chat message markup to Zulip markdown.
package zulipfmt

import (
	"cmp"
	"slices"
	"strings"
)

// WildcardMention is Zulip's mention of everyone in the conversation.
const WildcardMention = "@**all**"

// Rocket.Chat broadcast mentions. @here (users active in the room) has no
// Zulip counterpart and becomes a wildcard mention too.
const (
	mentionAll  = "@all"
	mentionHere = "@here"
)

// MentionedUser is the part of a user a mention is rewritten from and to.
type MentionedUser struct {
	ShortName string
	FullName  string
}

// Mention returns the Zulip mention of a user by full name.
func Mention(fullName string) string {
	return "@**" + fullName + "**"
}

// RewriteMentions replaces "@short_name" with "@**Full Name**" for every
// given user and turns @all and @here into the wildcard mention.
//
// Replacement is literal, not word-boundary aware. Longer handles are tried
// first and the text is scanned once, so a handle that is a prefix of
// another handle cannot eat into the longer one, and text produced by a
// replacement is never rewritten again.
func RewriteMentions(content string, users []MentionedUser) string {
	if content == "" || (len(users) == 0 && !strings.Contains(content, "@")) {
		return content
	}
	type pair struct{ from, to string }
	pairs := make([]pair, 0, len(users)+2)
	for _, user := range users {
		if user.ShortName == "" {
			continue
		}
		pairs = append(pairs, pair{"@" + user.ShortName, Mention(user.FullName)})
	}
	// Users win over broadcast tokens of the same length, e.g. a user
	// literally named "all".
	pairs = append(pairs, pair{mentionAll, WildcardMention}, pair{mentionHere, WildcardMention})
	slices.SortStableFunc(pairs, func(a, b pair) int {
		return cmp.Compare(len(b.from), len(a.from))
	})

	oldnew := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		oldnew = append(oldnew, p.from, p.to)
	}
	return strings.NewReplacer(oldnew...).Replace(content)
}

// HasWildcard reports whether converted content mentions everyone.
func HasWildcard(content string) bool {
	return strings.Contains(content, WildcardMention)
}
