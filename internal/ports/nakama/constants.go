package nakama

// RPC identifiers registered with the Nakama runtime.
const (
	RpcCreateLobby  = "create_lobby"
	RpcJoinLobby    = "join_lobby"
	RpcConfirmSetup = "confirm_setup"
	RpcApplyMove    = "apply_move"
	RpcTickTurn     = "tick_turn"
)

// Storage collections backing the engine's records. Both are system-owned;
// clients never read them directly (a read-side projection handles display).
const (
	gamesCollection   = "games"
	lobbiesCollection = "lobbies"
)

// Notification codes sent to players on engine events.
const (
	NotificationCodeGameStarted = 110
	NotificationCodeYourTurn    = 111
	NotificationCodeGameOver    = 112
)
