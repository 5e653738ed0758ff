package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-go/v2"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

// RPC ids exposed by the engine module.
const (
	RpcCreateLobby  = "create_lobby"
	RpcJoinLobby    = "join_lobby"
	RpcConfirmSetup = "confirm_setup"
	RpcApplyMove    = "apply_move"
	RpcTickTurn     = "tick_turn"
)

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	UserID  string
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())
	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	return &TestClient{
		Client:  client,
		Session: session,
		UserID:  session.UserId,
	}
}

// Rpc invokes an engine RPC and decodes the JSON response into out.
func (tc *TestClient) Rpc(t *testing.T, id string, payload interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal %s payload: %v", id, err)
	}
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, id, string(raw))
	if err != nil {
		t.Fatalf("RPC %s failed: %v", id, err)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal([]byte(rpc.Payload), out); err != nil {
		t.Fatalf("Decode %s response %q: %v", id, rpc.Payload, err)
	}
}

// RpcExpectError invokes an RPC that must be rejected by the engine.
func (tc *TestClient) RpcExpectError(t *testing.T, id string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal %s payload: %v", id, err)
	}
	if _, err := tc.Client.RpcFunc(context.Background(), tc.Session, id, string(raw)); err == nil {
		t.Fatalf("RPC %s unexpectedly succeeded", id)
	}
}

// placement builds a deterministic legal setup for the player's home zone:
// the flag on the first cell, then 4/4/4 ordinary units and one guardian
// across the rest.
func placement(playerNumber int) map[string]interface{} {
	rows := []int{0, 1}
	if playerNumber == 2 {
		rows = []int{4, 5}
	}
	cells := make([][2]int, 0, 14)
	for _, row := range rows {
		for col := 0; col < 7; col++ {
			cells = append(cells, [2]int{row, col})
		}
	}
	pool := []string{
		"a", "a", "a", "a",
		"b", "b", "b", "b",
		"c", "c", "c", "c",
		"d",
	}
	assignments := make(map[string]string, len(pool))
	for i, kind := range pool {
		cell := cells[i+1]
		assignments[fmt.Sprintf("%d-%d", cell[0], cell[1])] = kind
	}
	return map[string]interface{}{
		"flagPos":     map[string]int{"row": cells[0][0], "col": cells[0][1]},
		"assignments": assignments,
	}
}
