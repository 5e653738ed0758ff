package ports

import "context"

// Notifier pushes engine events to players out of band. Implementations are
// best-effort: callers log failures and never fail the triggering operation.
type Notifier interface {
	// NotifyGameStarted informs both players that setup is over and whose
	// turn it is.
	NotifyGameStarted(ctx context.Context, lobbyID string, userIDs []string, currentPlayerID string) error

	// NotifyTurn informs a player that it is now their turn.
	NotifyTurn(ctx context.Context, lobbyID, userID string, turnIndex int) error

	// NotifyGameOver informs both players of the final result.
	NotifyGameOver(ctx context.Context, lobbyID string, userIDs []string, winnerID string) error
}
