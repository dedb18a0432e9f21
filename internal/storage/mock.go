package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/embermud/ember/pkg/actor"
)

// MemoryStorage is an in-memory Storage implementation for tests and for
// running the server without Redis. It serializes through JSON so tests
// exercise the same round-trip as the real store.
type MemoryStorage struct {
	mu       sync.RWMutex
	players  map[string][]byte
	accounts map[string][]byte
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		players:  make(map[string][]byte),
		accounts: make(map[string][]byte),
	}
}

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) SavePlayer(ctx context.Context, p *actor.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}
	m.mu.Lock()
	m.players[p.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) LoadPlayer(ctx context.Context, id string) (*actor.Player, error) {
	m.mu.RLock()
	data, ok := m.players[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var p actor.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	p.Normalize()
	return &p, nil
}

func (m *MemoryStorage) DeletePlayer(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.players, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) SaveAccount(ctx context.Context, a *Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	m.mu.Lock()
	m.accounts[strings.ToLower(a.Name)] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) LoadAccount(ctx context.Context, name string) (*Account, error) {
	m.mu.RLock()
	data, ok := m.accounts[strings.ToLower(strings.TrimSpace(name))]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var a Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &a, nil
}
