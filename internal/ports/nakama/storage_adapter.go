package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SnickersDE/DailyHub/internal/domain"
	"github.com/SnickersDE/DailyHub/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const storageListPageSize = 100

// StorageGameRepository implements ports.GameRepository on the Nakama storage
// engine. Saves are conditional on the object version read, which is what
// turns the turn-index check into a real compare-and-swap: a racing writer
// gets runtime.ErrStorageRejectedVersion, surfaced as ports.ErrVersionConflict.
type StorageGameRepository struct {
	nk runtime.NakamaModule
}

// NewStorageGameRepository creates a game repository backed by Nakama storage.
func NewStorageGameRepository(nk runtime.NakamaModule) *StorageGameRepository {
	return &StorageGameRepository{nk: nk}
}

func (r *StorageGameRepository) GetGame(ctx context.Context, lobbyID string) (ports.GameRecord, error) {
	objects, err := r.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: gamesCollection, Key: lobbyID},
	})
	if err != nil {
		return ports.GameRecord{}, fmt.Errorf("failed to read game %s: %w", lobbyID, err)
	}
	if len(objects) == 0 {
		return ports.GameRecord{}, ports.ErrNotFound
	}

	var game domain.Game
	if err := json.Unmarshal([]byte(objects[0].Value), &game); err != nil {
		return ports.GameRecord{}, fmt.Errorf("failed to unmarshal game %s: %w", lobbyID, err)
	}
	return ports.GameRecord{Game: &game, Version: objects[0].Version}, nil
}

func (r *StorageGameRepository) SaveGame(ctx context.Context, record ports.GameRecord) (ports.GameRecord, error) {
	value, err := json.Marshal(record.Game)
	if err != nil {
		return ports.GameRecord{}, fmt.Errorf("failed to marshal game %s: %w", record.Game.LobbyID, err)
	}

	version := record.Version
	if version == "" {
		// First write: only succeed if the object does not exist yet.
		version = "*"
	}

	acks, err := r.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      gamesCollection,
			Key:             record.Game.LobbyID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return ports.GameRecord{}, ports.ErrVersionConflict
		}
		return ports.GameRecord{}, fmt.Errorf("failed to write game %s: %w", record.Game.LobbyID, err)
	}

	record.Version = acks[0].Version
	return record, nil
}

func (r *StorageGameRepository) ListExpiredPlaying(ctx context.Context, now time.Time) ([]ports.GameRecord, error) {
	var expired []ports.GameRecord
	cursor := ""
	for {
		objects, nextCursor, err := r.nk.StorageList(ctx, "", "", gamesCollection, storageListPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list games: %w", err)
		}
		for _, obj := range objects {
			var game domain.Game
			if err := json.Unmarshal([]byte(obj.Value), &game); err != nil {
				continue
			}
			if game.Status != domain.StatusPlaying || game.TurnEndsAt == nil {
				continue
			}
			if game.TurnEndsAt.Before(now) {
				g := game
				expired = append(expired, ports.GameRecord{Game: &g, Version: obj.Version})
			}
		}
		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}
	return expired, nil
}

var _ ports.GameRepository = (*StorageGameRepository)(nil)

// StorageLobbyRepository implements ports.LobbyRepository on Nakama storage.
type StorageLobbyRepository struct {
	nk runtime.NakamaModule
}

// NewStorageLobbyRepository creates a lobby repository backed by Nakama storage.
func NewStorageLobbyRepository(nk runtime.NakamaModule) *StorageLobbyRepository {
	return &StorageLobbyRepository{nk: nk}
}

func (r *StorageLobbyRepository) GetLobby(ctx context.Context, lobbyID string) (ports.LobbyRecord, error) {
	objects, err := r.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: lobbiesCollection, Key: lobbyID},
	})
	if err != nil {
		return ports.LobbyRecord{}, fmt.Errorf("failed to read lobby %s: %w", lobbyID, err)
	}
	if len(objects) == 0 {
		return ports.LobbyRecord{}, ports.ErrNotFound
	}

	var lobby domain.Lobby
	if err := json.Unmarshal([]byte(objects[0].Value), &lobby); err != nil {
		return ports.LobbyRecord{}, fmt.Errorf("failed to unmarshal lobby %s: %w", lobbyID, err)
	}
	return ports.LobbyRecord{Lobby: &lobby, Version: objects[0].Version}, nil
}

func (r *StorageLobbyRepository) SaveLobby(ctx context.Context, record ports.LobbyRecord) (ports.LobbyRecord, error) {
	value, err := json.Marshal(record.Lobby)
	if err != nil {
		return ports.LobbyRecord{}, fmt.Errorf("failed to marshal lobby %s: %w", record.Lobby.ID, err)
	}

	version := record.Version
	if version == "" {
		version = "*"
	}

	acks, err := r.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      lobbiesCollection,
			Key:             record.Lobby.ID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return ports.LobbyRecord{}, ports.ErrVersionConflict
		}
		return ports.LobbyRecord{}, fmt.Errorf("failed to write lobby %s: %w", record.Lobby.ID, err)
	}

	record.Version = acks[0].Version
	return record, nil
}

func (r *StorageLobbyRepository) ListExpiredSetup(ctx context.Context, now time.Time) ([]ports.LobbyRecord, error) {
	var expired []ports.LobbyRecord
	cursor := ""
	for {
		objects, nextCursor, err := r.nk.StorageList(ctx, "", "", lobbiesCollection, storageListPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list lobbies: %w", err)
		}
		for _, obj := range objects {
			var lobby domain.Lobby
			if err := json.Unmarshal([]byte(obj.Value), &lobby); err != nil {
				continue
			}
			if lobby.Status != domain.StatusSetup || lobby.SetupEndsAt == nil {
				continue
			}
			if lobby.SetupEndsAt.Before(now) {
				l := lobby
				expired = append(expired, ports.LobbyRecord{Lobby: &l, Version: obj.Version})
			}
		}
		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}
	return expired, nil
}

var _ ports.LobbyRepository = (*StorageLobbyRepository)(nil)
