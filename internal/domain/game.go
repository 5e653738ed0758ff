package domain

import (
	"errors"
	"math/rand"
	"time"
)

// Status is the lifecycle stage of a game.
type Status string

const (
	// StatusSetup is the placement phase before either player may move.
	StatusSetup Status = "setup"
	// StatusPlaying is the active alternating-turn phase.
	StatusPlaying Status = "playing"
	// StatusFinished is terminal; the record is immutable afterwards.
	StatusFinished Status = "finished"
)

// MaxPenalties is the penalty count at which a player forfeits the game.
const MaxPenalties = 2

// MoveRecord is one entry of the append-only move log.
type MoveRecord struct {
	From       Cell      `json:"from"`
	To         Cell      `json:"to"`
	At         int64     `json:"at"` // unix milliseconds
	Result     string    `json:"result"`
	DuelResult *DuelDraw `json:"duelResult,omitempty"`
}

const (
	MoveResultPlain  = "move"
	MoveResultBattle = "battle"
)

// Game is the authoritative aggregate for one match. All engine operations
// read the full record, compute the next one and write it back conditionally.
type Game struct {
	LobbyID        string               `json:"lobbyId"`
	Player1ID      string               `json:"player1Id"`
	Player2ID      string               `json:"player2Id"`
	Status         Status               `json:"status"`
	Board          *Board               `json:"board,omitempty"`
	Setups         map[string]*Setup    `json:"setups,omitempty"`
	SetupConfirmed map[string]bool      `json:"setupConfirmed,omitempty"`

	CurrentPlayerID string     `json:"currentPlayerId,omitempty"`
	NextPlayerID    string     `json:"nextPlayerId,omitempty"`
	TurnIndex       int        `json:"turnIndex"`
	TurnEndsAt      *time.Time `json:"turnEndsAt,omitempty"`
	SetupEndsAt     *time.Time `json:"setupEndsAt,omitempty"`

	P1Penalties int    `json:"p1Penalties"`
	P2Penalties int    `json:"p2Penalties"`
	Winner      int    `json:"winner,omitempty"`
	WinnerID    string `json:"winnerId,omitempty"`

	Moves []MoveRecord `json:"moves,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewGame creates a game in setup status for a freshly opened lobby.
func NewGame(lobbyID, player1ID string, now time.Time) *Game {
	return &Game{
		LobbyID:        lobbyID,
		Player1ID:      player1ID,
		Status:         StatusSetup,
		Setups:         make(map[string]*Setup),
		SetupConfirmed: make(map[string]bool),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// PlayerNumber maps a user id onto its seat number, or 0 for non-participants.
func (g *Game) PlayerNumber(userID string) int {
	switch {
	case userID != "" && userID == g.Player1ID:
		return 1
	case userID != "" && userID == g.Player2ID:
		return 2
	default:
		return 0
	}
}

// SeatUserID returns the user id holding the given seat number.
func (g *Game) SeatUserID(playerNumber int) string {
	switch playerNumber {
	case 1:
		return g.Player1ID
	case 2:
		return g.Player2ID
	default:
		return ""
	}
}

// Opponent returns the other seat's user id.
func (g *Game) Opponent(userID string) string {
	switch userID {
	case g.Player1ID:
		return g.Player2ID
	case g.Player2ID:
		return g.Player1ID
	default:
		return ""
	}
}

// Penalties returns the penalty count for a seat number.
func (g *Game) Penalties(playerNumber int) int {
	if playerNumber == 1 {
		return g.P1Penalties
	}
	return g.P2Penalties
}

var (
	ErrSetupsNotReady = errors.New("both setups must be confirmed")
	ErrSeatsNotFilled = errors.New("both seats must be filled")
)

// BeginPlay assembles the starting board from both confirmed setups and
// transitions the game to playing: player 1 moves first, turn index starts
// at 1 and a fresh turn deadline is set. Stale winner state is cleared.
func (g *Game) BeginPlay(now time.Time, turnDuration time.Duration) error {
	if g.Player1ID == "" || g.Player2ID == "" {
		return ErrSeatsNotFilled
	}
	if !g.SetupConfirmed[g.Player1ID] || !g.SetupConfirmed[g.Player2ID] {
		return ErrSetupsNotReady
	}

	board := &Board{}
	if err := board.ApplySetup(1, g.Setups[g.Player1ID]); err != nil {
		return err
	}
	if err := board.ApplySetup(2, g.Setups[g.Player2ID]); err != nil {
		return err
	}

	deadline := now.Add(turnDuration)
	g.Board = board
	g.Status = StatusPlaying
	g.CurrentPlayerID = g.Player1ID
	g.NextPlayerID = g.Player2ID
	g.TurnIndex = 1
	g.TurnEndsAt = &deadline
	g.SetupEndsAt = nil
	g.Winner = 0
	g.WinnerID = ""
	g.UpdatedAt = now
	return nil
}

// MoveOutcome summarizes what a committed move did.
type MoveOutcome struct {
	Battle   bool
	Duel     *DuelDraw
	GameOver bool
	Winner   int
}

var ErrIllegalMove = errors.New("illegal move")

// ExecuteMove applies a single-step move for the given seat, resolving combat
// if the destination is held by the opponent. The caller must already have
// verified game status, turn index and turn ownership; this method enforces
// board-level legality and mutates the game on success.
func (g *Game) ExecuteMove(playerNumber int, from, to Cell, rng *rand.Rand, now time.Time, turnDuration time.Duration) (MoveOutcome, error) {
	if g.Board == nil {
		return MoveOutcome{}, ErrIllegalMove
	}
	if !from.InBounds() || !to.InBounds() {
		return MoveOutcome{}, ErrIllegalMove
	}
	if from == to || !IsStep(from, to) {
		return MoveOutcome{}, ErrIllegalMove
	}

	movingPiece := g.Board.At(from)
	if movingPiece == nil || movingPiece.Player != playerNumber {
		return MoveOutcome{}, ErrIllegalMove
	}
	targetPiece := g.Board.At(to)
	if targetPiece != nil && targetPiece.Player == movingPiece.Player {
		return MoveOutcome{}, ErrIllegalMove
	}

	outcome := MoveOutcome{}
	if targetPiece == nil {
		g.Board.Set(to, movingPiece)
		g.Board.Set(from, nil)
	} else {
		outcome.Battle = true
		result := ResolveBattle(movingPiece.Kind, targetPiece.Kind, movingPiece, targetPiece)
		if result == Duel {
			draw := ResolveDuel(rng)
			outcome.Duel = &draw
			result = ResolveBattle(draw.AttackerChoice, draw.DefenderChoice, nil, nil)
		}
		if result == AttackerWins {
			if targetPiece.Kind == KindFlag {
				outcome.GameOver = true
				outcome.Winner = movingPiece.Player
			}
			ApplyChargeLoss(movingPiece, targetPiece)
			g.Board.Set(to, movingPiece)
			g.Board.Set(from, nil)
		} else {
			if movingPiece.Kind == KindFlag {
				outcome.GameOver = true
				outcome.Winner = targetPiece.Player
			}
			ApplyChargeLoss(targetPiece, movingPiece)
			g.Board.Set(from, nil)
		}
	}

	record := MoveRecord{From: from, To: to, At: now.UnixMilli(), Result: MoveResultPlain}
	if outcome.Battle {
		record.Result = MoveResultBattle
		record.DuelResult = outcome.Duel
	}
	g.Moves = append(g.Moves, record)

	if outcome.GameOver {
		g.Status = StatusFinished
		g.Winner = outcome.Winner
		g.WinnerID = g.SeatUserID(outcome.Winner)
		g.CurrentPlayerID = ""
		g.NextPlayerID = ""
		g.TurnEndsAt = nil
	} else {
		g.CurrentPlayerID, g.NextPlayerID = g.NextPlayerID, g.CurrentPlayerID
		deadline := now.Add(turnDuration)
		g.TurnEndsAt = &deadline
	}
	g.TurnIndex++
	g.UpdatedAt = now
	return outcome, nil
}

// TimeoutOutcome summarizes a sweep-forced turn advance.
type TimeoutOutcome struct {
	PenalizedID string
	Penalties   int
	GameOver    bool
	Winner      int
}

// ApplyTimeout penalizes the player who failed to move before the deadline.
// Reaching MaxPenalties forfeits the game to the other seat; otherwise the
// turn is handed over exactly as a null move would: pointers swap, the turn
// index increments and a fresh deadline is set. The board never changes.
func (g *Game) ApplyTimeout(now time.Time, turnDuration time.Duration) TimeoutOutcome {
	timedOut := g.CurrentPlayerID
	timedOutNumber := g.PlayerNumber(timedOut)
	if timedOutNumber == 1 {
		g.P1Penalties++
	} else if timedOutNumber == 2 {
		g.P2Penalties++
	}

	outcome := TimeoutOutcome{PenalizedID: timedOut, Penalties: g.Penalties(timedOutNumber)}
	next := g.NextPlayerID
	if next == "" {
		next = g.Opponent(timedOut)
	}

	if timedOutNumber != 0 && g.Penalties(timedOutNumber) >= MaxPenalties {
		winnerNumber := 3 - timedOutNumber
		outcome.GameOver = true
		outcome.Winner = winnerNumber
		g.Status = StatusFinished
		g.Winner = winnerNumber
		g.WinnerID = g.SeatUserID(winnerNumber)
		g.CurrentPlayerID = ""
		g.NextPlayerID = ""
		g.TurnEndsAt = nil
	} else {
		g.CurrentPlayerID = next
		g.NextPlayerID = timedOut
		deadline := now.Add(turnDuration)
		g.TurnEndsAt = &deadline
	}
	g.TurnIndex++
	g.UpdatedAt = now
	return outcome
}
