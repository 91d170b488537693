// Copyright 2024-2026 Aiku AI

package importer

import (
	"fmt"
	"slices"
	"sync"

	"go.mau.fi/util/exmaps"

	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

// UserHandler accumulates converted users and hands them back in the order
// they were added.
type UserHandler struct {
	lock  sync.RWMutex
	order []int
	users map[int]*zulip.UserProfile
}

func NewUserHandler() *UserHandler {
	return &UserHandler{users: make(map[int]*zulip.UserProfile)}
}

// Add registers a converted user. Registering the same id twice is a bug in
// the caller and returns ErrDuplicateUser.
func (uh *UserHandler) Add(user *zulip.UserProfile) error {
	uh.lock.Lock()
	defer uh.lock.Unlock()
	if _, exists := uh.users[user.ID]; exists {
		return fmt.Errorf("%w: %d (%s)", ErrDuplicateUser, user.ID, user.ShortName)
	}
	uh.users[user.ID] = user
	uh.order = append(uh.order, user.ID)
	return nil
}

func (uh *UserHandler) Get(id int) (*zulip.UserProfile, error) {
	uh.lock.RLock()
	defer uh.lock.RUnlock()
	user, ok := uh.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, id)
	}
	return user, nil
}

func (uh *UserHandler) Has(id int) bool {
	uh.lock.RLock()
	defer uh.lock.RUnlock()
	_, ok := uh.users[id]
	return ok
}

// All returns every registered user in insertion order.
func (uh *UserHandler) All() []*zulip.UserProfile {
	uh.lock.RLock()
	defer uh.lock.RUnlock()
	users := make([]*zulip.UserProfile, len(uh.order))
	for i, id := range uh.order {
		users[i] = uh.users[id]
	}
	return users
}

// SubscriberHandler stores the member set of each stream.
type SubscriberHandler struct {
	lock    sync.RWMutex
	members map[int]exmaps.Set[int]
}

func NewSubscriberHandler() *SubscriberHandler {
	return &SubscriberHandler{members: make(map[int]exmaps.Set[int])}
}

// Set replaces the member set of a stream.
func (sh *SubscriberHandler) Set(streamID int, userIDs []int) {
	sh.lock.Lock()
	defer sh.lock.Unlock()
	sh.members[streamID] = exmaps.NewSetWithItems(userIDs)
}

// Get returns the member set of a stream, or an empty set.
func (sh *SubscriberHandler) Get(streamID int) exmaps.Set[int] {
	sh.lock.RLock()
	defer sh.lock.RUnlock()
	members, ok := sh.members[streamID]
	if !ok {
		return make(exmaps.Set[int])
	}
	return members
}

// Sorted returns the members of a stream in ascending id order.
func (sh *SubscriberHandler) Sorted(streamID int) []int {
	members := sh.Get(streamID).AsList()
	slices.Sort(members)
	return members
}
