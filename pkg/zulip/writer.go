// Copyright 2024-2026 Aiku AI

package zulip

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Artifact paths inside the output directory.
const (
	RealmFile          = "realm.json"
	AttachmentFile     = "attachment.json"
	AvatarRecordsFile  = "avatars/records.json"
	UploadRecordsFile  = "uploads/records.json"
	EmojiRecordsFile   = "emoji/records.json"
	messageFilePattern = "messages-%06d.json"
)

// MessageFileName returns the name of the n-th message batch file.
func MessageFileName(n int) string {
	return fmt.Sprintf(messageFilePattern, n)
}

// DirWriter writes import artifacts into a directory.
type DirWriter struct {
	Dir    string
	Indent bool

	log zerolog.Logger
}

func NewDirWriter(dir string, indent bool, log zerolog.Logger) *DirWriter {
	return &DirWriter{
		Dir:    dir,
		Indent: indent,
		log:    log.With().Str("component", "bundle_writer").Logger(),
	}
}

// WriteMessageBatch writes one messages-NNNNNN.json file.
func (w *DirWriter) WriteMessageBatch(ctx context.Context, n int, batch *MessageBatch) error {
	name := MessageFileName(n)
	w.log.Info().
		Str("file", name).
		Int("messages", len(batch.Messages)).
		Int("user_messages", len(batch.UserMessages)).
		Msg("Writing message batch")
	return w.writeJSON(ctx, name, batch)
}

// WriteRealm writes realm.json.
func (w *DirWriter) WriteRealm(ctx context.Context, realm *Realm) error {
	w.log.Info().
		Int("users", len(realm.UserProfiles)).
		Int("streams", len(realm.Streams)).
		Int("subscriptions", len(realm.Subscriptions)).
		Int("reactions", len(realm.Reactions)).
		Msg("Writing realm")
	return w.writeJSON(ctx, RealmFile, realm)
}

// WritePlaceholders writes the empty records for avatars, uploads, custom
// emoji and attachments, none of which are converted.
func (w *DirWriter) WritePlaceholders(ctx context.Context) error {
	for _, name := range []string{AvatarRecordsFile, UploadRecordsFile, EmojiRecordsFile} {
		if err := w.writeJSON(ctx, name, []any{}); err != nil {
			return err
		}
	}
	return w.writeJSON(ctx, AttachmentFile, map[string][]any{"zerver_attachment": {}})
}

func (w *DirWriter) writeJSON(ctx context.Context, name string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(w.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	var out []byte
	var err error
	if w.Indent {
		out, err = json.MarshalIndent(data, "", "    ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err = os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
