package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/SnickersDE/DailyHub/internal/domain"
	"github.com/SnickersDE/DailyHub/internal/ports"
)

// Sweep forcibly advances games and lobbies whose deadlines elapsed. It is
// the only way a stalled game progresses and must reach the same outcome as
// the in-line operations it substitutes for.
type Sweep struct {
	games    ports.GameRepository
	lobbies  ports.LobbyRepository
	notifier ports.Notifier
	rng      *rand.Rand
	now      func() time.Time

	turnDuration time.Duration
}

// NewSweep constructs a Sweep. notifier may be nil.
func NewSweep(games ports.GameRepository, lobbies ports.LobbyRepository, notifier ports.Notifier, opts Options) *Sweep {
	opts = opts.withDefaults()
	return &Sweep{
		games:        games,
		lobbies:      lobbies,
		notifier:     notifier,
		rng:          opts.Rand,
		now:          opts.Now,
		turnDuration: opts.TurnDuration,
	}
}

// Failure records one game or lobby the sweep could not advance.
type Failure struct {
	LobbyID string
	Err     error
}

// Report lists the games advanced by a sweep pass, split by population the
// way the operation reports them: timed-out active games and setup lobbies
// that were force-started.
type Report struct {
	Updated      []string
	SetupUpdated []string
	Failures     []Failure
}

// Run processes both expired populations. Each game advances as an
// independent transaction: a conditional-write conflict means some other
// actor already moved the game past its deadline and the entry is skipped;
// any other failure is recorded and the pass continues.
func (s *Sweep) Run(ctx context.Context) Report {
	report := Report{}
	now := s.now()

	s.sweepExpiredTurns(ctx, now, &report)
	s.sweepExpiredSetups(ctx, now, &report)
	return report
}

func (s *Sweep) sweepExpiredTurns(ctx context.Context, now time.Time, report *Report) {
	records, err := s.games.ListExpiredPlaying(ctx, now)
	if err != nil {
		report.Failures = append(report.Failures, Failure{Err: err})
		return
	}

	for _, rec := range records {
		game := rec.Game
		outcome := game.ApplyTimeout(now, s.turnDuration)

		if _, err := s.games.SaveGame(ctx, rec); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				// Someone else advanced the game first; the next pass
				// sees the fresh deadline.
				continue
			}
			report.Failures = append(report.Failures, Failure{LobbyID: game.LobbyID, Err: err})
			continue
		}

		if outcome.GameOver {
			if s.notifier != nil {
				_ = s.notifier.NotifyGameOver(ctx, game.LobbyID, []string{game.Player1ID, game.Player2ID}, game.WinnerID)
			}
		} else if s.notifier != nil {
			_ = s.notifier.NotifyTurn(ctx, game.LobbyID, game.CurrentPlayerID, game.TurnIndex)
		}
		report.Updated = append(report.Updated, game.LobbyID)
	}
}

func (s *Sweep) sweepExpiredSetups(ctx context.Context, now time.Time, report *Report) {
	lobbyRecs, err := s.lobbies.ListExpiredSetup(ctx, now)
	if err != nil {
		report.Failures = append(report.Failures, Failure{Err: err})
		return
	}

	for _, lobbyRec := range lobbyRecs {
		lobby := lobbyRec.Lobby
		if len(lobby.Members) != domain.LobbySeats {
			continue
		}

		gameRec, err := s.games.GetGame(ctx, lobby.ID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				continue
			}
			report.Failures = append(report.Failures, Failure{LobbyID: lobby.ID, Err: err})
			continue
		}
		game := gameRec.Game
		if game.Status != domain.StatusSetup {
			continue
		}
		if game.Player1ID == "" {
			game.Player1ID = lobby.Members[0]
		}
		if game.Player2ID == "" {
			game.Player2ID = lobby.Members[1]
		}

		if game.Setups == nil {
			game.Setups = make(map[string]*domain.Setup)
		}
		if game.SetupConfirmed == nil {
			game.SetupConfirmed = make(map[string]bool)
		}
		if !game.SetupConfirmed[game.Player1ID] {
			game.Setups[game.Player1ID] = domain.GenerateRandomSetup(s.rng, 1)
			game.SetupConfirmed[game.Player1ID] = true
		}
		if !game.SetupConfirmed[game.Player2ID] {
			game.Setups[game.Player2ID] = domain.GenerateRandomSetup(s.rng, 2)
			game.SetupConfirmed[game.Player2ID] = true
		}

		if err := game.BeginPlay(now, s.turnDuration); err != nil {
			report.Failures = append(report.Failures, Failure{LobbyID: lobby.ID, Err: err})
			continue
		}

		if _, err := s.games.SaveGame(ctx, gameRec); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				continue
			}
			report.Failures = append(report.Failures, Failure{LobbyID: lobby.ID, Err: err})
			continue
		}

		lobby.Status = domain.StatusPlaying
		lobby.SetupEndsAt = nil
		if _, err := s.lobbies.SaveLobby(ctx, lobbyRec); err != nil && !errors.Is(err, ports.ErrVersionConflict) {
			report.Failures = append(report.Failures, Failure{LobbyID: lobby.ID, Err: err})
		}

		if s.notifier != nil {
			_ = s.notifier.NotifyGameStarted(ctx, lobby.ID, []string{game.Player1ID, game.Player2ID}, game.CurrentPlayerID)
		}
		report.SetupUpdated = append(report.SetupUpdated, lobby.ID)
	}
}
