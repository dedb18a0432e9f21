package storage

import (
	"context"
	"time"

	"github.com/embermud/ember/pkg/actor"
)

// Account links a login name to its password hash and character id.
// Authentication itself happens in the connection layer.
type Account struct {
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	PlayerID     string    `json:"player_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Storage is the persistence boundary of the game core. The core only
// requires that LoadPlayer and SavePlayer round-trip every player field
// losslessly; the engine behind the interface is irrelevant to it.
type Storage interface {
	// Ping tests the backing store connection
	Ping(ctx context.Context) error

	// Close closes the backing store connection
	Close() error

	// SavePlayer persists a full player snapshot
	SavePlayer(ctx context.Context, p *actor.Player) error

	// LoadPlayer retrieves a player by id.
	// Returns nil if the player doesn't exist.
	LoadPlayer(ctx context.Context, id string) (*actor.Player, error)

	// DeletePlayer removes a player by id
	DeletePlayer(ctx context.Context, id string) error

	// SaveAccount persists a login account
	SaveAccount(ctx context.Context, a *Account) error

	// LoadAccount retrieves an account by login name.
	// Returns nil if the account doesn't exist.
	LoadAccount(ctx context.Context, name string) (*Account, error)
}
