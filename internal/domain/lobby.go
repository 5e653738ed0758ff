package domain

import "time"

// LobbySeats is the fixed number of participants per lobby.
const LobbySeats = 2

// Lobby holds the membership record for one match. The member order is seat
// order: members[0] is player 1, members[1] is player 2.
type Lobby struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Members     []string   `json:"members"`
	Status      Status     `json:"status"`
	SetupEndsAt *time.Time `json:"setupEndsAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewLobby opens a lobby with the creator in seat 1.
func NewLobby(id, ownerID string, now time.Time) *Lobby {
	return &Lobby{
		ID:        id,
		OwnerID:   ownerID,
		Members:   []string{ownerID},
		Status:    StatusSetup,
		CreatedAt: now,
	}
}

// HasMember reports whether the user occupies a seat in the lobby.
func (l *Lobby) HasMember(userID string) bool {
	for _, member := range l.Members {
		if member == userID {
			return true
		}
	}
	return false
}

// Full reports whether both seats are taken.
func (l *Lobby) Full() bool {
	return len(l.Members) >= LobbySeats
}
