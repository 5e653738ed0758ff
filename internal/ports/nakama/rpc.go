package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SnickersDE/DailyHub/internal/app"
	"github.com/SnickersDE/DailyHub/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// position accepts the two client encodings for a board cell: a [row, col]
// array or a "row,col" string.
type position struct {
	domain.Cell
}

func (p *position) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("position needs exactly two coordinates")
		}
		p.Row, p.Col = pair[0], pair[1]
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unsupported position encoding")
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return fmt.Errorf("position needs exactly two coordinates")
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("position coordinates must be integers")
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("position coordinates must be integers")
	}
	p.Row, p.Col = row, col
	return nil
}

type createLobbyResponse struct {
	LobbyID string `json:"lobbyId"`
}

type joinLobbyRequest struct {
	LobbyID string `json:"lobbyId"`
	UserID  string `json:"userId,omitempty"`
}

type joinLobbyResponse struct {
	OK bool `json:"ok"`
}

type setupPayload struct {
	FlagPos     *domain.Cell                `json:"flagPos"`
	Assignments map[string]domain.PieceKind `json:"assignments"`
}

type confirmSetupRequest struct {
	LobbyID string        `json:"lobbyId"`
	UserID  string        `json:"userId,omitempty"`
	Setup   *setupPayload `json:"setup"`
}

type confirmSetupResponse struct {
	OK       bool `json:"ok"`
	AllReady bool `json:"allReady"`
}

type applyMoveRequest struct {
	LobbyID   string    `json:"lobbyId"`
	UserID    string    `json:"userId,omitempty"`
	TurnIndex int       `json:"turnIndex"`
	From      *position `json:"from"`
	To        *position `json:"to"`
}

type applyMoveResponse struct {
	OK bool `json:"ok"`
}

type tickTurnResponse struct {
	OK           bool     `json:"ok"`
	Updated      []string `json:"updated"`
	SetupUpdated []string `json:"setupUpdated"`
}

// RegisterRPCs registers the engine's RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, svc *app.Service, sweep *app.Sweep) error {
	handlers := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateLobby:  rpcCreateLobby(svc),
		RpcJoinLobby:    rpcJoinLobby(svc),
		RpcConfirmSetup: rpcConfirmSetup(svc),
		RpcApplyMove:    rpcApplyMove(svc),
		RpcTickTurn:     rpcTickTurn(sweep),
	}
	for id, fn := range handlers {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func rpcCreateLobby(svc *app.Service) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, err := callerID(ctx, "")
		if err != nil {
			return "", err
		}
		lobby, err := svc.CreateLobby(ctx, userID)
		if err != nil {
			return "", toRuntimeError(logger, err)
		}
		logger.Info("CreateLobby: user %s opened lobby %s", userID, lobby.ID)
		return marshalResponse(createLobbyResponse{LobbyID: lobby.ID})
	}
}

func rpcJoinLobby(svc *app.Service) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		var request joinLobbyRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", toRuntimeError(logger, app.ErrInvalidPayload)
		}
		userID, err := callerID(ctx, request.UserID)
		if err != nil {
			return "", err
		}
		if _, err := svc.JoinLobby(ctx, request.LobbyID, userID); err != nil {
			return "", toRuntimeError(logger, err)
		}
		logger.Info("JoinLobby: user %s joined lobby %s", userID, request.LobbyID)
		return marshalResponse(joinLobbyResponse{OK: true})
	}
}

func rpcConfirmSetup(svc *app.Service) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		var request confirmSetupRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", toRuntimeError(logger, app.ErrInvalidPayload)
		}
		userID, err := callerID(ctx, request.UserID)
		if err != nil {
			return "", err
		}
		if request.Setup == nil || request.Setup.FlagPos == nil || request.Setup.Assignments == nil {
			return "", toRuntimeError(logger, app.ErrInvalidPayload)
		}
		setup := &domain.Setup{
			FlagPos:     *request.Setup.FlagPos,
			Assignments: request.Setup.Assignments,
		}

		result, err := svc.ConfirmSetup(ctx, request.LobbyID, userID, setup)
		if err != nil {
			logger.Warn("ConfirmSetup: rejected for user %s in lobby %s: %v", userID, request.LobbyID, err)
			return "", toRuntimeError(logger, err)
		}
		logger.Info("ConfirmSetup: user %s confirmed in lobby %s (allReady=%t)", userID, request.LobbyID, result.AllReady)
		return marshalResponse(confirmSetupResponse{OK: true, AllReady: result.AllReady})
	}
}

func rpcApplyMove(svc *app.Service) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		var request applyMoveRequest
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", toRuntimeError(logger, app.ErrInvalidMove)
		}
		userID, err := callerID(ctx, request.UserID)
		if err != nil {
			return "", err
		}
		if request.From == nil || request.To == nil {
			return "", toRuntimeError(logger, app.ErrInvalidMove)
		}

		result, err := svc.ApplyMove(ctx, request.LobbyID, userID, request.TurnIndex, request.From.Cell, request.To.Cell)
		if err != nil {
			logger.Warn("ApplyMove: rejected for user %s in lobby %s: %v", userID, request.LobbyID, err)
			return "", toRuntimeError(logger, err)
		}
		if result.GameOver {
			logger.Info("ApplyMove: lobby %s finished, winner player %d", request.LobbyID, result.Winner)
		}
		return marshalResponse(applyMoveResponse{OK: true})
	}
}

func rpcTickTurn(sweep *app.Sweep) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		report := sweep.Run(ctx)
		logFailures(logger, report)
		return marshalResponse(tickTurnResponse{
			OK:           true,
			Updated:      emptyIfNil(report.Updated),
			SetupUpdated: emptyIfNil(report.SetupUpdated),
		})
	}
}

// logFailures reports sweep failures without failing the pass; each game is
// an independent transaction.
func logFailures(logger runtime.Logger, report app.Report) {
	for _, failure := range report.Failures {
		if failure.LobbyID != "" {
			logger.Error("Sweep: lobby %s failed: %v", failure.LobbyID, failure.Err)
		} else {
			logger.Error("Sweep: %v", failure.Err)
		}
	}
}

// callerID resolves the acting user: the session identity when present,
// otherwise the payload field for trusted server-to-server calls.
func callerID(ctx context.Context, payloadUserID string) (string, error) {
	if userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok && userID != "" {
		return userID, nil
	}
	if payloadUserID != "" {
		return payloadUserID, nil
	}
	return "", runtime.NewError("unauthenticated", 16)
}

func toRuntimeError(logger runtime.Logger, err error) error {
	var appErr *app.Error
	if errors.As(err, &appErr) {
		return runtime.NewError(appErr.Code, appErr.GRPCCode)
	}
	logger.Error("Unexpected engine error: %v", err)
	return runtime.NewError("internal", 13)
}

func marshalResponse(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("internal", 13)
	}
	return string(data), nil
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
