package app

import (
	"errors"

	"github.com/SnickersDE/DailyHub/internal/domain"
)

// Error is a caller-facing failure with a stable code. The code is the wire
// contract; clients branch on it, never on the message.
type Error struct {
	// Code is the stable error identifier.
	Code string
	// GRPCCode is the numeric status the transport adapter reports.
	GRPCCode int
}

func (e *Error) Error() string { return e.Code }

// gRPC status codes used at the RPC boundary.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeAborted            = 10
)

var (
	ErrGameNotFound  = &Error{Code: "game_not_found", GRPCCode: codeNotFound}
	ErrLobbyNotFound = &Error{Code: "lobby_not_found", GRPCCode: codeNotFound}

	ErrNotInLobby    = &Error{Code: "not_in_lobby", GRPCCode: codePermissionDenied}
	ErrInvalidPlayer = &Error{Code: "invalid_player", GRPCCode: codePermissionDenied}
	ErrNotYourTurn   = &Error{Code: "not_your_turn", GRPCCode: codePermissionDenied}

	ErrNotPlaying     = &Error{Code: "not_playing", GRPCCode: codeFailedPrecondition}
	ErrAlreadyStarted = &Error{Code: "already_started", GRPCCode: codeFailedPrecondition}
	ErrStaleTurn      = &Error{Code: "stale_turn", GRPCCode: codeFailedPrecondition}
	ErrLobbyFull      = &Error{Code: "lobby_full", GRPCCode: codeFailedPrecondition}
	ErrConflict       = &Error{Code: "conflict", GRPCCode: codeAborted}

	ErrInvalidMove    = &Error{Code: "invalid_move", GRPCCode: codeInvalidArgument}
	ErrInvalidPayload = &Error{Code: "invalid_payload", GRPCCode: codeInvalidArgument}

	ErrFlagInvalid               = &Error{Code: "flag_invalid", GRPCCode: codeInvalidArgument}
	ErrNeedsThirteenAssignments  = &Error{Code: "needs_13_assignments", GRPCCode: codeInvalidArgument}
	ErrInvalidPiece              = &Error{Code: "invalid_piece", GRPCCode: codeInvalidArgument}
	ErrInvalidCell               = &Error{Code: "invalid_cell", GRPCCode: codeInvalidArgument}
	ErrWrongCounts               = &Error{Code: "wrong_counts", GRPCCode: codeInvalidArgument}
	ErrInvalidFlagPosition       = &Error{Code: "invalid_flag_position", GRPCCode: codeInvalidArgument}
	ErrInvalidAssignmentPosition = &Error{Code: "invalid_assignment_position", GRPCCode: codeInvalidArgument}
)

// setupError maps a domain setup-validation failure onto its wire code.
func setupError(err error) *Error {
	switch {
	case errors.Is(err, domain.ErrSetupMissing):
		return ErrInvalidPayload
	case errors.Is(err, domain.ErrFlagInvalid):
		return ErrFlagInvalid
	case errors.Is(err, domain.ErrAssignmentCount):
		return ErrNeedsThirteenAssignments
	case errors.Is(err, domain.ErrUnknownKind):
		return ErrInvalidPiece
	case errors.Is(err, domain.ErrBadCell):
		return ErrInvalidCell
	case errors.Is(err, domain.ErrWrongCounts):
		return ErrWrongCounts
	case errors.Is(err, domain.ErrFlagOutsideZone):
		return ErrInvalidFlagPosition
	case errors.Is(err, domain.ErrAssignmentOutsideZone):
		return ErrInvalidAssignmentPosition
	default:
		return ErrInvalidPayload
	}
}
