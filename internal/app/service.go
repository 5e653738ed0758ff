package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/SnickersDE/DailyHub/internal/domain"
	"github.com/SnickersDE/DailyHub/internal/ports"

	"github.com/google/uuid"
)

// Default deadlines; overridable through Options for tests and config.
const (
	DefaultTurnDuration  = 30 * time.Second
	DefaultSetupDuration = 60 * time.Second
)

// Options tunes a Service or Sweep. Zero values select defaults: a
// time-seeded rng, the wall clock and the default deadlines.
type Options struct {
	Rand          *rand.Rand
	Now           func() time.Time
	TurnDuration  time.Duration
	SetupDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.TurnDuration <= 0 {
		o.TurnDuration = DefaultTurnDuration
	}
	if o.SetupDuration <= 0 {
		o.SetupDuration = DefaultSetupDuration
	}
	return o
}

// Service contains the request-driven engine use-cases. It holds no game
// state between calls; every operation loads the record, computes the next
// one and writes it back conditionally.
type Service struct {
	games    ports.GameRepository
	lobbies  ports.LobbyRepository
	notifier ports.Notifier
	rng      *rand.Rand
	now      func() time.Time

	turnDuration  time.Duration
	setupDuration time.Duration
}

// NewService constructs a Service. notifier may be nil to disable
// notifications.
func NewService(games ports.GameRepository, lobbies ports.LobbyRepository, notifier ports.Notifier, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		games:         games,
		lobbies:       lobbies,
		notifier:      notifier,
		rng:           opts.Rand,
		now:           opts.Now,
		turnDuration:  opts.TurnDuration,
		setupDuration: opts.SetupDuration,
	}
}

// CreateLobby opens a two-seat lobby with the caller in seat 1 and creates
// the backing game record in setup status.
func (s *Service) CreateLobby(ctx context.Context, userID string) (*domain.Lobby, error) {
	if userID == "" {
		return nil, ErrInvalidPlayer
	}
	now := s.now()
	lobby := domain.NewLobby(uuid.NewString(), userID, now)

	if _, err := s.lobbies.SaveLobby(ctx, ports.LobbyRecord{Lobby: lobby}); err != nil {
		return nil, mapStoreErr(err)
	}
	game := domain.NewGame(lobby.ID, userID, now)
	if _, err := s.games.SaveGame(ctx, ports.GameRecord{Game: game}); err != nil {
		return nil, mapStoreErr(err)
	}
	return lobby, nil
}

// JoinLobby seats the caller as player 2. Joining a lobby the caller already
// occupies is a no-op. Once both seats are filled the setup deadline starts.
func (s *Service) JoinLobby(ctx context.Context, lobbyID, userID string) (*domain.Lobby, error) {
	if userID == "" {
		return nil, ErrInvalidPlayer
	}
	lobbyRec, err := s.lobbies.GetLobby(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	lobby := lobbyRec.Lobby
	if lobby.HasMember(userID) {
		return lobby, nil
	}
	if lobby.Status != domain.StatusSetup {
		return nil, ErrAlreadyStarted
	}
	if lobby.Full() {
		return nil, ErrLobbyFull
	}

	now := s.now()
	deadline := now.Add(s.setupDuration)
	lobby.Members = append(lobby.Members, userID)
	lobby.SetupEndsAt = &deadline
	if _, err := s.lobbies.SaveLobby(ctx, lobbyRec); err != nil {
		return nil, mapStoreErr(err)
	}

	gameRec, err := s.games.GetGame(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	gameRec.Game.Player2ID = userID
	gameRec.Game.SetupEndsAt = &deadline
	gameRec.Game.UpdatedAt = now
	if _, err := s.games.SaveGame(ctx, gameRec); err != nil {
		return nil, mapStoreErr(err)
	}
	return lobby, nil
}

// ConfirmSetupResult reports whether both seats are now confirmed.
type ConfirmSetupResult struct {
	AllReady bool
}

// ConfirmSetup validates and stores the caller's placement. Resubmitting
// while the game is still in setup replaces the prior setup. Once both
// participants are confirmed the starting board is assembled and the game
// transitions to playing with player 1 to move.
func (s *Service) ConfirmSetup(ctx context.Context, lobbyID, userID string, setup *domain.Setup) (ConfirmSetupResult, error) {
	gameRec, err := s.games.GetGame(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ConfirmSetupResult{}, ErrGameNotFound
		}
		return ConfirmSetupResult{}, err
	}
	game := gameRec.Game

	lobbyRec, err := s.lobbies.GetLobby(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ConfirmSetupResult{}, ErrLobbyNotFound
		}
		return ConfirmSetupResult{}, err
	}
	lobby := lobbyRec.Lobby
	if !lobby.HasMember(userID) {
		return ConfirmSetupResult{}, ErrNotInLobby
	}
	playerNumber := game.PlayerNumber(userID)
	if playerNumber == 0 {
		return ConfirmSetupResult{}, ErrInvalidPlayer
	}
	if game.Status != domain.StatusSetup {
		return ConfirmSetupResult{}, ErrAlreadyStarted
	}
	if err := domain.ValidateSetup(playerNumber, setup); err != nil {
		return ConfirmSetupResult{}, setupError(err)
	}

	if game.Setups == nil {
		game.Setups = make(map[string]*domain.Setup)
	}
	if game.SetupConfirmed == nil {
		game.SetupConfirmed = make(map[string]bool)
	}
	game.Setups[userID] = setup
	game.SetupConfirmed[userID] = true

	now := s.now()
	allReady := lobby.Full() && game.SetupConfirmed[game.Player1ID] && game.SetupConfirmed[game.Player2ID]
	if allReady {
		if err := game.BeginPlay(now, s.turnDuration); err != nil {
			return ConfirmSetupResult{}, err
		}
	} else {
		game.UpdatedAt = now
	}

	if _, err := s.games.SaveGame(ctx, gameRec); err != nil {
		return ConfirmSetupResult{}, mapStoreErr(err)
	}

	if allReady {
		lobby.Status = domain.StatusPlaying
		lobby.SetupEndsAt = nil
		if _, err := s.lobbies.SaveLobby(ctx, lobbyRec); err != nil {
			return ConfirmSetupResult{}, mapStoreErr(err)
		}
		if s.notifier != nil {
			_ = s.notifier.NotifyGameStarted(ctx, lobbyID, []string{game.Player1ID, game.Player2ID}, game.CurrentPlayerID)
		}
	}
	return ConfirmSetupResult{AllReady: allReady}, nil
}

// ApplyMoveResult summarizes a committed move for the caller.
type ApplyMoveResult struct {
	Battle    bool
	Duel      *domain.DuelDraw
	GameOver  bool
	Winner    int
	TurnIndex int
}

// ApplyMove validates and commits a single-step move. turnIndex is the
// optimistic-concurrency token: it must equal the stored turn index, and the
// final write is conditional on the record version read here, so a racing
// writer surfaces as ErrStaleTurn and the caller re-reads and retries.
func (s *Service) ApplyMove(ctx context.Context, lobbyID, userID string, turnIndex int, from, to domain.Cell) (ApplyMoveResult, error) {
	gameRec, err := s.games.GetGame(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ApplyMoveResult{}, ErrGameNotFound
		}
		return ApplyMoveResult{}, err
	}
	game := gameRec.Game

	if game.Status != domain.StatusPlaying {
		return ApplyMoveResult{}, ErrNotPlaying
	}
	if game.TurnIndex != turnIndex {
		return ApplyMoveResult{}, ErrStaleTurn
	}
	if game.CurrentPlayerID != userID {
		return ApplyMoveResult{}, ErrNotYourTurn
	}
	playerNumber := game.PlayerNumber(userID)
	if playerNumber == 0 {
		return ApplyMoveResult{}, ErrInvalidPlayer
	}

	outcome, err := game.ExecuteMove(playerNumber, from, to, s.rng, s.now(), s.turnDuration)
	if err != nil {
		return ApplyMoveResult{}, ErrInvalidMove
	}

	if _, err := s.games.SaveGame(ctx, gameRec); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return ApplyMoveResult{}, ErrStaleTurn
		}
		return ApplyMoveResult{}, err
	}

	if s.notifier != nil {
		if outcome.GameOver {
			_ = s.notifier.NotifyGameOver(ctx, lobbyID, []string{game.Player1ID, game.Player2ID}, game.WinnerID)
		} else {
			_ = s.notifier.NotifyTurn(ctx, lobbyID, game.CurrentPlayerID, game.TurnIndex)
		}
	}

	return ApplyMoveResult{
		Battle:    outcome.Battle,
		Duel:      outcome.Duel,
		GameOver:  outcome.GameOver,
		Winner:    outcome.Winner,
		TurnIndex: game.TurnIndex,
	}, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, ports.ErrVersionConflict) {
		return ErrConflict
	}
	return err
}
