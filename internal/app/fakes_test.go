package app

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/SnickersDE/DailyHub/internal/domain"
	"github.com/SnickersDE/DailyHub/internal/ports"
)

// memGameRepo is an in-memory GameRepository with the same conditional-write
// behavior as the storage adapter: records round-trip through JSON and saves
// succeed only when the caller holds the current version.
type memGameRepo struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int
	saveErr  map[string]error
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{
		data:     make(map[string][]byte),
		versions: make(map[string]int),
		saveErr:  make(map[string]error),
	}
}

func (r *memGameRepo) GetGame(ctx context.Context, lobbyID string) (ports.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.data[lobbyID]
	if !ok {
		return ports.GameRecord{}, ports.ErrNotFound
	}
	game := &domain.Game{}
	if err := json.Unmarshal(raw, game); err != nil {
		return ports.GameRecord{}, err
	}
	return ports.GameRecord{Game: game, Version: strconv.Itoa(r.versions[lobbyID])}, nil
}

func (r *memGameRepo) SaveGame(ctx context.Context, record ports.GameRecord) (ports.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := record.Game.LobbyID
	if err := r.saveErr[id]; err != nil {
		return ports.GameRecord{}, err
	}
	current, exists := r.versions[id]
	if record.Version == "" {
		if exists {
			return ports.GameRecord{}, ports.ErrVersionConflict
		}
	} else if strconv.Itoa(current) != record.Version {
		return ports.GameRecord{}, ports.ErrVersionConflict
	}
	raw, err := json.Marshal(record.Game)
	if err != nil {
		return ports.GameRecord{}, err
	}
	r.data[id] = raw
	r.versions[id] = current + 1
	record.Version = strconv.Itoa(current + 1)
	return record, nil
}

func (r *memGameRepo) ListExpiredPlaying(ctx context.Context, now time.Time) ([]ports.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]ports.GameRecord, 0)
	for id, raw := range r.data {
		game := &domain.Game{}
		if err := json.Unmarshal(raw, game); err != nil {
			return nil, err
		}
		if game.Status != domain.StatusPlaying || game.TurnEndsAt == nil {
			continue
		}
		if game.TurnEndsAt.After(now) {
			continue
		}
		records = append(records, ports.GameRecord{Game: game, Version: strconv.Itoa(r.versions[id])})
	}
	return records, nil
}

type memLobbyRepo struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int
}

func newMemLobbyRepo() *memLobbyRepo {
	return &memLobbyRepo{
		data:     make(map[string][]byte),
		versions: make(map[string]int),
	}
}

func (r *memLobbyRepo) GetLobby(ctx context.Context, lobbyID string) (ports.LobbyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.data[lobbyID]
	if !ok {
		return ports.LobbyRecord{}, ports.ErrNotFound
	}
	lobby := &domain.Lobby{}
	if err := json.Unmarshal(raw, lobby); err != nil {
		return ports.LobbyRecord{}, err
	}
	return ports.LobbyRecord{Lobby: lobby, Version: strconv.Itoa(r.versions[lobbyID])}, nil
}

func (r *memLobbyRepo) SaveLobby(ctx context.Context, record ports.LobbyRecord) (ports.LobbyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := record.Lobby.ID
	current, exists := r.versions[id]
	if record.Version == "" {
		if exists {
			return ports.LobbyRecord{}, ports.ErrVersionConflict
		}
	} else if strconv.Itoa(current) != record.Version {
		return ports.LobbyRecord{}, ports.ErrVersionConflict
	}
	raw, err := json.Marshal(record.Lobby)
	if err != nil {
		return ports.LobbyRecord{}, err
	}
	r.data[id] = raw
	r.versions[id] = current + 1
	record.Version = strconv.Itoa(current + 1)
	return record, nil
}

func (r *memLobbyRepo) ListExpiredSetup(ctx context.Context, now time.Time) ([]ports.LobbyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]ports.LobbyRecord, 0)
	for id, raw := range r.data {
		lobby := &domain.Lobby{}
		if err := json.Unmarshal(raw, lobby); err != nil {
			return nil, err
		}
		if lobby.Status != domain.StatusSetup || lobby.SetupEndsAt == nil {
			continue
		}
		if lobby.SetupEndsAt.After(now) {
			continue
		}
		records = append(records, ports.LobbyRecord{Lobby: lobby, Version: strconv.Itoa(r.versions[id])})
	}
	return records, nil
}

// recordingNotifier captures notification calls for assertions.
type recordingNotifier struct {
	started  []string
	turns    []string
	gameOver []string
}

func (n *recordingNotifier) NotifyGameStarted(ctx context.Context, lobbyID string, userIDs []string, currentPlayerID string) error {
	n.started = append(n.started, lobbyID)
	return nil
}

func (n *recordingNotifier) NotifyTurn(ctx context.Context, lobbyID, userID string, turnIndex int) error {
	n.turns = append(n.turns, userID)
	return nil
}

func (n *recordingNotifier) NotifyGameOver(ctx context.Context, lobbyID string, userIDs []string, winnerID string) error {
	n.gameOver = append(n.gameOver, winnerID)
	return nil
}

func seedGame(t *testing.T, repo *memGameRepo, game *domain.Game) {
	t.Helper()
	if _, err := repo.SaveGame(context.Background(), ports.GameRecord{Game: game}); err != nil {
		t.Fatalf("seed game: %v", err)
	}
}

func seedLobby(t *testing.T, repo *memLobbyRepo, lobby *domain.Lobby) {
	t.Helper()
	if _, err := repo.SaveLobby(context.Background(), ports.LobbyRecord{Lobby: lobby}); err != nil {
		t.Fatalf("seed lobby: %v", err)
	}
}

// overwriteGame replaces a stored game at its current version.
func overwriteGame(t *testing.T, repo *memGameRepo, game *domain.Game) {
	t.Helper()
	rec, err := repo.GetGame(context.Background(), game.LobbyID)
	if err != nil {
		t.Fatalf("overwrite game %s: %v", game.LobbyID, err)
	}
	rec.Game = game
	if _, err := repo.SaveGame(context.Background(), rec); err != nil {
		t.Fatalf("overwrite game %s: %v", game.LobbyID, err)
	}
}

func loadGame(t *testing.T, repo *memGameRepo, lobbyID string) *domain.Game {
	t.Helper()
	rec, err := repo.GetGame(context.Background(), lobbyID)
	if err != nil {
		t.Fatalf("load game %s: %v", lobbyID, err)
	}
	return rec.Game
}

func loadLobby(t *testing.T, repo *memLobbyRepo, lobbyID string) *domain.Lobby {
	t.Helper()
	rec, err := repo.GetLobby(context.Background(), lobbyID)
	if err != nil {
		t.Fatalf("load lobby %s: %v", lobbyID, err)
	}
	return rec.Lobby
}
