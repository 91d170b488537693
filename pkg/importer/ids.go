// Copyright 2024-2026 Aiku AI

package importer

import (
	"strconv"
	"sync"
)

// Counter names shared by every stage of a run.
const (
	CounterMessage      = "message"
	CounterReaction     = "reaction"
	CounterRecipient    = "recipient"
	CounterSubscription = "subscription"
	CounterUserMessage  = "user_message"
	CounterDumpFile     = "dump_file_id"
)

// CounterName composes a counter name from a base and a numeric qualifier,
// e.g. the per-realm dump file counter "dump_file_id0".
func CounterName(base string, n int) string {
	return base + strconv.Itoa(n)
}

// IDMapper assigns dense integers to opaque source ids within one entity
// namespace. An id keeps its integer for the lifetime of the mapper.
type IDMapper struct {
	lock      sync.Mutex
	namespace string
	next      int
	ids       map[string]int
}

// NewIDMapper creates a mapper whose first assigned id is floor.
func NewIDMapper(namespace string, floor int) *IDMapper {
	return &IDMapper{
		namespace: namespace,
		next:      floor,
		ids:       make(map[string]int),
	}
}

// Get returns the integer for key, assigning the next free one on first use.
func (m *IDMapper) Get(key string) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	if id, ok := m.ids[key]; ok {
		return id
	}
	id := m.next
	m.ids[key] = id
	m.next++
	return id
}

// Lookup returns the integer for key without assigning one.
func (m *IDMapper) Lookup(key string) (int, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	id, ok := m.ids[key]
	return id, ok
}

// Len returns the number of keys seen so far.
func (m *IDMapper) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.ids)
}

func (m *IDMapper) Namespace() string {
	return m.namespace
}

// Sequencer is a table of named monotonic counters scoped to one run.
type Sequencer struct {
	lock     sync.Mutex
	counters map[string]int
}

func NewSequencer() *Sequencer {
	return &Sequencer{counters: make(map[string]int)}
}

// Next returns the current value of the named counter and increments it.
// Unseen counters start at 0.
func (s *Sequencer) Next(name string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	val := s.counters[name]
	s.counters[name] = val + 1
	return val
}
