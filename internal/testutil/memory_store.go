// Package testutil provides an in-memory unit of work for service and ledger tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// MemoryStore holds committed rows. A unit of work holds the store's
// transaction lock from Begin until Commit or Rollback, which serializes
// transactions the way row locks serialize the same bundles in postgres.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users    map[uuid.UUID]*entity.User
	bundles  map[uuid.UUID]*entity.Bundle
	messages []*entity.ChatMessage

	// FailBundleUpdates, when set, is returned by every BundleRepository.Update.
	FailBundleUpdates error
	// FailUserCreates, when set, is returned by every UserRepository.Create.
	FailUserCreates error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uuid.UUID]*entity.User),
		bundles: make(map[uuid.UUID]*entity.Bundle),
	}
}

// NewUnitOfWork satisfies unitofwork.RepositoryFactory.
func (s *MemoryStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUnitOfWork{store: s}
}

// SeedUser and SeedBundle insert committed rows directly.
func (s *MemoryStore) SeedUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Id] = cloneUser(u)
}

func (s *MemoryStore) SeedBundle(b *entity.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles[b.Id] = cloneBundle(b)
}

// Bundle returns a copy of the committed bundle, or nil.
func (s *MemoryStore) Bundle(id uuid.UUID) *entity.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[id]
	if !ok {
		return nil
	}
	return cloneBundle(b)
}

// BundlesOf returns committed bundles of a user, oldest first.
func (s *MemoryStore) BundlesOf(userId uuid.UUID) []*entity.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Bundle
	for _, b := range s.bundles {
		if b.UserId == userId {
			out = append(out, cloneBundle(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// MessageCount returns the number of committed chat usage records.
func (s *MemoryStore) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// snapshot state used by a transaction.
type txState struct {
	users    map[uuid.UUID]*entity.User
	bundles  map[uuid.UUID]*entity.Bundle
	messages []*entity.ChatMessage
}

func (s *MemoryStore) snapshot() *txState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &txState{
		users:    make(map[uuid.UUID]*entity.User, len(s.users)),
		bundles:  make(map[uuid.UUID]*entity.Bundle, len(s.bundles)),
		messages: make([]*entity.ChatMessage, len(s.messages)),
	}
	for k, v := range s.users {
		st.users[k] = cloneUser(v)
	}
	for k, v := range s.bundles {
		st.bundles[k] = cloneBundle(v)
	}
	copy(st.messages, s.messages)
	return st
}

func (s *MemoryStore) apply(st *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = st.users
	s.bundles = st.bundles
	s.messages = st.messages
}

var errNoTx = errors.New("no transaction")

type memoryUnitOfWork struct {
	store *MemoryStore
	tx    *txState
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errors.New("transaction already started")
	}
	u.store.txMu.Lock()
	u.tx = u.store.snapshot()
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if u.tx == nil {
		return errNoTx
	}
	u.store.apply(u.tx)
	u.tx = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	if u.tx == nil {
		return errNoTx
	}
	u.tx = nil
	u.store.txMu.Unlock()
	return nil
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	if u.PaymentCardToken != nil {
		token := *u.PaymentCardToken
		cp.PaymentCardToken = &token
	}
	return &cp
}

func cloneBundle(b *entity.Bundle) *entity.Bundle {
	cp := *b
	cp.MaxMessages = cloneInt(b.MaxMessages)
	cp.RenewalDate = cloneTime(b.RenewalDate)
	cp.CancelledAt = cloneTime(b.CancelledAt)
	cp.PaymentFailedAt = cloneTime(b.PaymentFailedAt)
	return &cp
}

func cloneMessage(m *entity.ChatMessage) *entity.ChatMessage {
	cp := *m
	return &cp
}
