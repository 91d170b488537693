// Copyright 2024-2026 Aiku AI

package rocketchat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"
)

// ErrMissingCollection is returned when a required .bson file is absent
// from the dump directory.
var ErrMissingCollection = errors.New("missing collection")

// Collection file names (without the .bson extension) in a mongodump of a
// Rocket.Chat database.
const (
	UsersCollection    = "users"
	RoomsCollection    = "rocketchat_room"
	MessagesCollection = "rocketchat_message"
)

// Snapshot holds the decoded collections of one dump, in file order.
type Snapshot struct {
	Users    []*User
	Rooms    []*Room
	Messages []*Message
}

type record[T any] interface {
	*T
	Validate() error
}

// DecodeAll reads concatenated BSON documents from r until EOF, decoding
// and validating each one.
func DecodeAll[T any, PT record[T]](r io.Reader) ([]PT, error) {
	br := bufio.NewReader(r)
	var out []PT
	for i := 0; ; i++ {
		doc, err := bson.ReadDocument(br)
		if errors.Is(err, io.EOF) {
			return out, nil
		} else if err != nil {
			return nil, fmt.Errorf("failed to read document #%d: %w", i, err)
		}
		rec := PT(new(T))
		if err = bson.Unmarshal(doc, rec); err != nil {
			return nil, fmt.Errorf("failed to decode document #%d: %w", i, err)
		}
		if err = rec.Validate(); err != nil {
			return nil, fmt.Errorf("document #%d: %w", i, err)
		}
		out = append(out, rec)
	}
}

// ReadCollection opens <dir>/<name>.bson and decodes every document in it.
func ReadCollection[T any, PT record[T]](ctx context.Context, dir, name string) ([]PT, error) {
	path := filepath.Join(dir, name+".bson")
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingCollection, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	records, err := DecodeAll[T, PT](file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return records, nil
}

// Load decodes the users, rooms and messages collections from a dump
// directory. The collections are independent, so they are read in parallel.
func Load(ctx context.Context, dir string) (*Snapshot, error) {
	var snap Snapshot
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		snap.Users, err = ReadCollection[User](egCtx, dir, UsersCollection)
		return
	})
	eg.Go(func() (err error) {
		snap.Rooms, err = ReadCollection[Room](egCtx, dir, RoomsCollection)
		return
	})
	eg.Go(func() (err error) {
		snap.Messages, err = ReadCollection[Message](egCtx, dir, MessagesCollection)
		return
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
