// Copyright 2024-2026 Aiku AI

package importer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// memWriter is a BundleWriter that keeps everything in memory.
type memWriter struct {
	mu           sync.Mutex
	batches      map[int]*zulip.MessageBatch
	order        []int
	realm        *zulip.Realm
	placeholders bool
	failBatch    error
}

func newMemWriter() *memWriter {
	return &memWriter{batches: make(map[int]*zulip.MessageBatch)}
}

func (w *memWriter) WriteMessageBatch(_ context.Context, n int, batch *zulip.MessageBatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failBatch != nil {
		return w.failBatch
	}
	w.batches[n] = batch
	w.order = append(w.order, n)
	return nil
}

func (w *memWriter) WriteRealm(_ context.Context, realm *zulip.Realm) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.realm = realm
	return nil
}

func (w *memWriter) WritePlaceholders(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.placeholders = true
	return nil
}

// allMessages returns every written message in file order.
func (w *memWriter) allMessages() []*zulip.Message {
	var msgs []*zulip.Message
	for _, n := range w.order {
		msgs = append(msgs, w.batches[n].Messages...)
	}
	return msgs
}

func (w *memWriter) allUserMessages() []*zulip.UserMessage {
	var ums []*zulip.UserMessage
	for _, n := range w.order {
		ums = append(ums, w.batches[n].UserMessages...)
	}
	return ums
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := ParseConfig([]byte(ExampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig(example): %v", err)
	}
	return cfg
}

func newTestContext(t *testing.T) *ConversionContext {
	t.Helper()
	return NewConversionContext(testConfig(t), testNow, zerolog.Nop())
}

func testUser(id, username, name, email string, rooms ...string) *rocketchat.User {
	user := &rocketchat.User{
		ID:       id,
		Username: username,
		Name:     name,
		Type:     rocketchat.UserTypeUser,
		Active:   true,
		Rooms:    rooms,
	}
	if email != "" {
		user.Emails = []rocketchat.Email{{Address: email, Verified: true}}
	}
	return user
}

func testMessage(id, roomID, senderID, text string, ts time.Time) *rocketchat.Message {
	return &rocketchat.Message{
		ID:        id,
		RoomID:    roomID,
		User:      rocketchat.MessageUser{ID: senderID},
		Text:      text,
		Timestamp: ts,
	}
}

// testSnapshot returns a small workspace:
//
//   - alice (admin), bob and the rocket.cat bot
//   - #general (public), #secret (private), the "Bug Triage" discussion
//     under #general, a DM between alice and bob, alice's self-DM, and
//     the eng team with its main room and one team channel
func testSnapshot() *rocketchat.Snapshot {
	alice := testUser("u-alice", "alice", "Alice Smith", "alice@example.com", "GENERAL", "SECRET", "DSC1", "DM1", "SELF")
	alice.Roles = []string{"user", "admin"}
	bob := testUser("u-bob", "bob", "Bob", "bob@example.com", "GENERAL", "DM1", "ENG")
	bot := testUser("u-bot", "rocket.cat", "Rocket.Cat", "", "GENERAL")
	bot.Type = "bot"
	bot.Roles = []string{"bot"}

	return &rocketchat.Snapshot{
		Users: []*rocketchat.User{alice, bob, bot},
		Rooms: []*rocketchat.Room{
			{ID: "GENERAL", Type: rocketchat.RoomTypePublic, Name: "general", Description: "Company wide"},
			{ID: "SECRET", Type: rocketchat.RoomTypePrivate, Name: "secret"},
			{ID: "DSC1", Type: rocketchat.RoomTypePrivate, Name: "abc123", FName: "Bug Triage", ParentID: "GENERAL"},
			{ID: "DM1", Type: rocketchat.RoomTypeDirect, UIDs: []string{"u-alice", "u-bob"}, Usernames: []string{"alice", "bob"}},
			{ID: "SELF", Type: rocketchat.RoomTypeDirect, UIDs: []string{"u-alice"}, Usernames: []string{"alice"}},
			{ID: "ENG", Type: rocketchat.RoomTypePublic, Name: "eng", TeamID: "T1", TeamMain: true},
			{ID: "INFRA", Type: rocketchat.RoomTypePublic, Name: "eng-infra", Description: "Servers", TeamID: "T1"},
		},
	}
}

// prepared runs every stage before message conversion on testSnapshot.
func prepared(t *testing.T) (*ConversionContext, *rocketchat.Snapshot) {
	t.Helper()
	cc := newTestContext(t)
	snap := testSnapshot()
	if err := cc.ConvertUsers(snap.Users); err != nil {
		t.Fatalf("ConvertUsers: %v", err)
	}
	cc.Channels = ClassifyChannels(snap.Rooms)
	streams := cc.ConvertStreams()
	cc.PopulateSubscribers(snap.Users, streams)
	recipients := cc.BuildRecipients(cc.UserHandler.All(), streams)
	cc.BuildSubscriptions(recipients)
	return cc, snap
}

// mustLookup returns the target id of a source id.
func mustLookup(t *testing.T, m *IDMapper, key string) int {
	t.Helper()
	id, ok := m.Lookup(key)
	if !ok {
		t.Fatalf("%s %q not mapped", m.Namespace(), key)
	}
	return id
}
