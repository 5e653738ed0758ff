package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// BoardRows and BoardCols define the fixed playing field size.
	BoardRows = 6
	BoardCols = 7
)

// PieceKind identifies one of the five piece types.
type PieceKind string

const (
	KindA        PieceKind = "a"
	KindB        PieceKind = "b"
	KindC        PieceKind = "c"
	KindGuardian PieceKind = "d"
	KindFlag     PieceKind = "e"
)

// GuardianStartingLives is the number of charges a freshly placed guardian holds.
const GuardianStartingLives = 3

// IsOrdinary reports whether the kind is one of the three cycling units.
func (k PieceKind) IsOrdinary() bool {
	return k == KindA || k == KindB || k == KindC
}

// IsValidUnit reports whether the kind may appear in a setup assignment (flag excluded).
func (k PieceKind) IsValidUnit() bool {
	return k.IsOrdinary() || k == KindGuardian
}

// Piece is a single unit on the board. SwordLives is meaningful only for the
// guardian kind and tracks its remaining charges.
type Piece struct {
	Player     int       `json:"player"`
	Kind       PieceKind `json:"type"`
	SwordLives int       `json:"swordLives,omitempty"`
}

// Board is the 6x7 playing field. A nil cell is empty.
type Board [BoardRows][BoardCols]*Piece

// Cell addresses a single board position, zero-based.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Key renders the cell in the "<row>-<col>" form used by setup assignments.
func (c Cell) Key() string {
	return fmt.Sprintf("%d-%d", c.Row, c.Col)
}

// InBounds reports whether the cell lies on the board.
func (c Cell) InBounds() bool {
	return c.Row >= 0 && c.Row < BoardRows && c.Col >= 0 && c.Col < BoardCols
}

// ParseCellKey parses a "<row>-<col>" assignment key.
func ParseCellKey(key string) (Cell, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return Cell{}, fmt.Errorf("malformed cell key %q", key)
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return Cell{}, fmt.Errorf("malformed cell key %q", key)
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return Cell{}, fmt.Errorf("malformed cell key %q", key)
	}
	return Cell{Row: row, Col: col}, nil
}

// HomeRows returns the two setup rows belonging to the given player number.
func HomeRows(playerNumber int) [2]int {
	if playerNumber == 1 {
		return [2]int{0, 1}
	}
	return [2]int{4, 5}
}

// IsHomeRow reports whether the row lies inside the player's setup zone.
func IsHomeRow(playerNumber, row int) bool {
	rows := HomeRows(playerNumber)
	return row == rows[0] || row == rows[1]
}

// IsStep reports whether to is exactly one orthogonal step from from.
func IsStep(from, to Cell) bool {
	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)
	return (rowDiff == 1 && colDiff == 0) || (rowDiff == 0 && colDiff == 1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// At returns the piece at the cell, or nil when the cell is empty or off-board.
func (b *Board) At(c Cell) *Piece {
	if !c.InBounds() {
		return nil
	}
	return b[c.Row][c.Col]
}

// Set places a piece (or nil) at the cell. Off-board cells are ignored.
func (b *Board) Set(c Cell, p *Piece) {
	if !c.InBounds() {
		return
	}
	b[c.Row][c.Col] = p
}

// ApplySetup places a validated setup on the board for the given player:
// the flag first, then every assignment, with guardians receiving their
// starting charges.
func (b *Board) ApplySetup(playerNumber int, setup *Setup) error {
	if setup == nil {
		return fmt.Errorf("no setup for player %d", playerNumber)
	}
	b.Set(setup.FlagPos, &Piece{Player: playerNumber, Kind: KindFlag})
	for key, kind := range setup.Assignments {
		cell, err := ParseCellKey(key)
		if err != nil {
			return err
		}
		piece := &Piece{Player: playerNumber, Kind: kind}
		if kind == KindGuardian {
			piece.SwordLives = GuardianStartingLives
		}
		b.Set(cell, piece)
	}
	return nil
}

// CountPieces returns the number of pieces on the board owned by the player.
func (b *Board) CountPieces(playerNumber int) int {
	count := 0
	for row := 0; row < BoardRows; row++ {
		for col := 0; col < BoardCols; col++ {
			if p := b[row][col]; p != nil && p.Player == playerNumber {
				count++
			}
		}
	}
	return count
}
