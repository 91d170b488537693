// Copyright 2024-2026 Aiku AI

package importer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

func testMessages() []*rocketchat.Message {
	mention := testMessage("m2", "GENERAL", "u-alice", "@bob can you look?", ts0.Add(time.Minute))
	mention.Mentions = []rocketchat.Mention{{ID: "u-bob", Username: "bob"}}
	mention.Reactions = map[string]rocketchat.ReactionUsers{":eyes:": {Usernames: []string{"bob"}}}
	joined := testMessage("m0", "GENERAL", "u-bob", "bob", ts0.Add(-time.Minute))
	joined.Type = "uj"
	return []*rocketchat.Message{
		joined,
		testMessage("m1", "GENERAL", "u-bob", "morning all", ts0),
		mention,
		testMessage("d1", "DM1", "u-alice", "psst", ts0.Add(2*time.Minute)),
		testMessage("m3", "DSC1", "u-alice", "repro attached", ts0.Add(3*time.Minute)),
	}
}

func TestImporterRun(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()
	snap.Messages = testMessages()
	w := newMemWriter()
	imp := NewImporter(testConfig(t), w, zerolog.Nop())
	imp.Now = func() time.Time { return testNow }

	stats, err := imp.Run(t.Context(), snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Messages != 4 || stats.SkippedEvents != 1 || stats.Reactions != 1 {
		t.Errorf("stats: got %+v", stats)
	}
	// Channel and direct traffic are written separately.
	if stats.BatchFiles != 2 || !slices.Equal(w.order, []int{1, 2}) {
		t.Fatalf("batch files: got %d %v, want 2 [1 2]", stats.BatchFiles, w.order)
	}

	channel := w.batches[1].Messages
	if len(channel) != 3 {
		t.Fatalf("channel messages: got %d, want 3", len(channel))
	}
	if channel[1].Content != "@**Bob** can you look?" {
		t.Errorf("mention content: got %q", channel[1].Content)
	}
	if channel[2].Subject != "(Discussion) Bug Triage" {
		t.Errorf("discussion subject: got %q", channel[2].Subject)
	}
	direct := w.batches[2].Messages
	if len(direct) != 1 {
		t.Fatalf("direct messages: got %d, want 1", len(direct))
	}
	if direct[0].ID != 3 {
		t.Errorf("message ids continue into direct traffic: got %d, want 3", direct[0].ID)
	}

	if w.realm == nil {
		t.Fatal("realm was not written")
	}
	if !w.placeholders {
		t.Error("placeholder files were not written")
	}
	realm := w.realm
	if len(realm.UserProfiles) != 3 || len(realm.Streams) != 4 || len(realm.Recipients) != 7 {
		t.Errorf("realm tables: got %d users, %d streams, %d recipients", len(realm.UserProfiles), len(realm.Streams), len(realm.Recipients))
	}
	if len(realm.Reactions) != 1 {
		t.Fatalf("reactions: got %d, want 1", len(realm.Reactions))
	}
	if realm.Reactions[0].Message != channel[1].ID {
		t.Errorf("reaction message: got %d, want %d", realm.Reactions[0].Message, channel[1].ID)
	}
	if realm.Realm[0].Name != "Imported from Rocket.Chat" {
		t.Errorf("realm name: got %q", realm.Realm[0].Name)
	}
	if want := zulip.UnixSeconds(testNow); realm.Realm[0].DateCreated != want {
		t.Errorf("date_created: got %v, want %v", realm.Realm[0].DateCreated, want)
	}
}

func TestImporterRunWithoutDirectMessages(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()
	snap.Messages = []*rocketchat.Message{testMessage("m1", "GENERAL", "u-bob", "hi", ts0)}
	w := newMemWriter()
	stats, err := NewImporter(testConfig(t), w, zerolog.Nop()).Run(t.Context(), snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(w.order, []int{1}) {
		t.Errorf("batch files: got %v, want [1]", w.order)
	}
	if stats.BatchFiles != 1 || stats.Messages != 1 {
		t.Errorf("stats: got %d messages in %d files, want 1 in 1", stats.Messages, stats.BatchFiles)
	}
}

func TestImporterRunWithoutMessages(t *testing.T) {
	t.Parallel()
	w := newMemWriter()
	stats, err := NewImporter(testConfig(t), w, zerolog.Nop()).Run(t.Context(), testSnapshot())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.order) != 0 || stats.BatchFiles != 0 {
		t.Errorf("batch files written for an export without messages: %v", w.order)
	}
	if w.realm == nil {
		t.Error("realm is written even without messages")
	}
}

func TestImporterRunUnknownSender(t *testing.T) {
	t.Parallel()
	snap := testSnapshot()
	snap.Messages = []*rocketchat.Message{testMessage("x", "GENERAL", "u-ghost", "boo", ts0)}
	w := newMemWriter()
	_, err := NewImporter(testConfig(t), w, zerolog.Nop()).Run(t.Context(), snap)
	if !errors.Is(err, ErrUnknownUser) {
		t.Errorf("got %v, want ErrUnknownUser", err)
	}
	if w.realm != nil {
		t.Error("realm is not written after a fatal error")
	}
}

func TestImporterRunSortByNativeID(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Conversion.SortByNativeID = true
	w := newMemWriter()
	if _, err := NewImporter(cfg, w, zerolog.Nop()).Run(t.Context(), testSnapshot()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// u-alice < u-bob < u-bot
	if got := w.realm.UserProfiles[0].ShortName; got != "alice" {
		t.Errorf("first user: got %q, want alice", got)
	}
	if got := w.realm.UserProfiles[2].ShortName; got != "rocket.cat" {
		t.Errorf("last user: got %q, want rocket.cat", got)
	}
	// DSC1, DM1, SELF are not streams; ENG < GENERAL < INFRA < SECRET
	if got := w.realm.Streams[0].Name; got != "[TEAM] eng" {
		t.Errorf("first stream: got %q, want %q", got, "[TEAM] eng")
	}
}

func writeCollection[T any](t *testing.T, dir, name string, docs []*T) {
	t.Helper()
	var data []byte
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			t.Fatalf("bson.Marshal: %v", err)
		}
		data = append(data, raw...)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".bson"), data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestImporterEndToEnd(t *testing.T) {
	t.Parallel()
	src, out := t.TempDir(), t.TempDir()
	fixture := testSnapshot()
	writeCollection(t, src, rocketchat.UsersCollection, fixture.Users)
	writeCollection(t, src, rocketchat.RoomsCollection, fixture.Rooms)
	writeCollection(t, src, rocketchat.MessagesCollection, testMessages())

	ctx := t.Context()
	snap, err := rocketchat.Load(ctx, src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := testConfig(t)
	_, err = NewImporter(cfg, zulip.NewDirWriter(out, cfg.Output.Indent, zerolog.Nop()), zerolog.Nop()).Run(ctx, snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{
		zulip.RealmFile,
		zulip.MessageFileName(1),
		zulip.MessageFileName(2),
		zulip.AttachmentFile,
		zulip.AvatarRecordsFile,
		zulip.UploadRecordsFile,
		zulip.EmojiRecordsFile,
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	for _, n := range []int{0, 3} {
		if _, err := os.Stat(filepath.Join(out, zulip.MessageFileName(n))); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s should not exist: %v", zulip.MessageFileName(n), err)
		}
	}

	data, err := os.ReadFile(filepath.Join(out, zulip.RealmFile))
	if err != nil {
		t.Fatal(err)
	}
	var realm map[string]json.RawMessage
	if err = json.Unmarshal(data, &realm); err != nil {
		t.Fatalf("realm.json: %v", err)
	}
	for _, key := range []string{"zerver_realm", "zerver_userprofile", "zerver_stream", "zerver_recipient", "zerver_subscription", "zerver_reaction"} {
		if _, ok := realm[key]; !ok {
			t.Errorf("realm.json is missing %s", key)
		}
	}

	data, err = os.ReadFile(filepath.Join(out, zulip.MessageFileName(2)))
	if err != nil {
		t.Fatal(err)
	}
	var batch zulip.MessageBatch
	if err = json.Unmarshal(data, &batch); err != nil {
		t.Fatalf("%s: %v", zulip.MessageFileName(2), err)
	}
	if len(batch.Messages) != 1 || batch.Messages[0].Content != "psst" {
		t.Fatalf("direct batch: got %+v", batch.Messages)
	}
	for _, um := range batch.UserMessages {
		if um.FlagsMask&zulip.FlagIsPrivate == 0 {
			t.Errorf("user message %d lacks the private flag", um.ID)
		}
	}
}
