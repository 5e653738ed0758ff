package nakama

import (
	"context"

	"github.com/SnickersDE/DailyHub/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NotificationSender implements ports.Notifier with Nakama in-app
// notifications. Failures are logged and swallowed; a dropped notification
// must never fail the game operation that triggered it.
type NotificationSender struct {
	nk     runtime.NakamaModule
	logger runtime.Logger
}

// NewNotificationSender creates a notifier backed by Nakama notifications.
func NewNotificationSender(nk runtime.NakamaModule, logger runtime.Logger) *NotificationSender {
	return &NotificationSender{nk: nk, logger: logger}
}

func (n *NotificationSender) NotifyGameStarted(ctx context.Context, lobbyID string, userIDs []string, currentPlayerID string) error {
	content := map[string]interface{}{
		"lobbyId":         lobbyID,
		"currentPlayerId": currentPlayerID,
	}
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		if err := n.nk.NotificationSend(ctx, userID, "Game started", content, NotificationCodeGameStarted, "", false); err != nil {
			n.logger.Warn("NotifyGameStarted: failed for user %s in lobby %s: %v", userID, lobbyID, err)
		}
	}
	return nil
}

func (n *NotificationSender) NotifyTurn(ctx context.Context, lobbyID, userID string, turnIndex int) error {
	if userID == "" {
		return nil
	}
	content := map[string]interface{}{
		"lobbyId":   lobbyID,
		"turnIndex": turnIndex,
	}
	if err := n.nk.NotificationSend(ctx, userID, "Your turn", content, NotificationCodeYourTurn, "", false); err != nil {
		n.logger.Warn("NotifyTurn: failed for user %s in lobby %s: %v", userID, lobbyID, err)
	}
	return nil
}

func (n *NotificationSender) NotifyGameOver(ctx context.Context, lobbyID string, userIDs []string, winnerID string) error {
	content := map[string]interface{}{
		"lobbyId":  lobbyID,
		"winnerId": winnerID,
	}
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		if err := n.nk.NotificationSend(ctx, userID, "Game over", content, NotificationCodeGameOver, "", true); err != nil {
			n.logger.Warn("NotifyGameOver: failed for user %s in lobby %s: %v", userID, lobbyID, err)
		}
	}
	return nil
}

var _ ports.Notifier = (*NotificationSender)(nil)
