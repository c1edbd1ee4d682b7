package testutil

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"hg-go/internal/hg"
	"hg-go/internal/store"
)

// ErrInjected is returned by RecordingStore when a failure is switched on.
var ErrInjected = errors.New("injected storage failure")

// RecordingStore wraps a Store, remembers every key written, and can be told
// to fail reads or writes.
type RecordingStore struct {
	hg.Store

	mu         sync.Mutex
	sets       []string
	failReads  bool
	failWrites bool
}

var _ hg.Store = (*RecordingStore)(nil)

// NewRecordingStore wraps a fresh in-memory store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{Store: store.NewMemoryStore()}
}

func (s *RecordingStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	fail := s.failReads
	s.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return s.Store.Get(key)
}

func (s *RecordingStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	fail := s.failReads
	s.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return s.Store.Keys(prefix)
}

func (s *RecordingStore) Set(key, value string) error {
	s.mu.Lock()
	fail := s.failWrites
	if !fail {
		s.sets = append(s.sets, key)
	}
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.Store.Set(key, value)
}

// FailReads makes every Get and Keys fail until switched off.
func (s *RecordingStore) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = fail
}

// FailWrites makes every Set fail until switched off.
func (s *RecordingStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// Sets returns the keys written so far, in order.
func (s *RecordingStore) Sets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sets)
}

// SetsWithPrefix returns the written keys that start with prefix.
func (s *RecordingStore) SetsWithPrefix(prefix string) []string {
	var out []string
	for _, k := range s.Sets() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// Reset forgets recorded writes.
func (s *RecordingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = nil
}

// NewTestGateway returns a gateway over a fresh RecordingStore.
func NewTestGateway() (*hg.Gateway, *RecordingStore) {
	s := NewRecordingStore()
	return hg.NewGateway(s, "", nil, nil), s
}
