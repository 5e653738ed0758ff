package ports

import (
	"context"
	"errors"
	"time"

	"github.com/SnickersDE/DailyHub/internal/domain"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a conditional save lost a race:
	// the stored version no longer matches the one that was read.
	ErrVersionConflict = errors.New("record version conflict")
)

// GameRecord pairs a game with the store version it was read at. An empty
// version marks a record that does not exist yet; saving it is a create.
type GameRecord struct {
	Game    *domain.Game
	Version string
}

// LobbyRecord pairs a lobby with its store version.
type LobbyRecord struct {
	Lobby   *domain.Lobby
	Version string
}

// GameRepository provides versioned access to game records. SaveGame writes
// conditionally on the record's version and returns ErrVersionConflict when
// a concurrent writer got there first.
type GameRepository interface {
	GetGame(ctx context.Context, lobbyID string) (GameRecord, error)
	SaveGame(ctx context.Context, record GameRecord) (GameRecord, error)
	// ListExpiredPlaying returns playing games whose turn deadline passed.
	ListExpiredPlaying(ctx context.Context, now time.Time) ([]GameRecord, error)
}

// LobbyRepository provides versioned access to lobby records.
type LobbyRepository interface {
	GetLobby(ctx context.Context, lobbyID string) (LobbyRecord, error)
	SaveLobby(ctx context.Context, record LobbyRecord) (LobbyRecord, error)
	// ListExpiredSetup returns setup lobbies whose setup deadline passed.
	ListExpiredSetup(ctx context.Context, now time.Time) ([]LobbyRecord, error)
}
