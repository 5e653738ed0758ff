package domain

import (
	"errors"
	"math/rand"
)

// Exact unit counts a setup must carry alongside the single flag.
const (
	SetupUnitCount     = 13
	setupCountOrdinary = 4
	setupCountGuardian = 1
)

// Setup is a player's declared placement: one flag cell plus an assignment of
// the remaining home-zone cells to unit kinds, keyed "<row>-<col>".
type Setup struct {
	FlagPos     Cell                 `json:"flagPos"`
	Assignments map[string]PieceKind `json:"assignments"`
}

var (
	ErrSetupMissing          = errors.New("setup payload missing")
	ErrFlagInvalid           = errors.New("flag position invalid")
	ErrAssignmentCount       = errors.New("setup needs exactly 13 assignments")
	ErrUnknownKind           = errors.New("unknown piece kind in setup")
	ErrBadCell               = errors.New("malformed or out-of-board setup cell")
	ErrWrongCounts           = errors.New("setup unit counts must be 4/4/4/1")
	ErrFlagOutsideZone       = errors.New("flag outside home zone")
	ErrAssignmentOutsideZone = errors.New("assignment outside home zone")
)

// ValidateSetup checks a setup for the given player number. Checks run in a
// fixed order and the first failure is returned: structural shape, kind
// vocabulary, cell well-formedness, unit counts, then zone membership for the
// flag and every assignment. Assignment cells must be distinct from each other
// and from the flag cell.
func ValidateSetup(playerNumber int, setup *Setup) error {
	if setup == nil || setup.Assignments == nil {
		return ErrSetupMissing
	}
	if !setup.FlagPos.InBounds() {
		return ErrFlagInvalid
	}
	if len(setup.Assignments) != SetupUnitCount {
		return ErrAssignmentCount
	}

	counts := map[PieceKind]int{}
	cells := make([]Cell, 0, SetupUnitCount)
	for key, kind := range setup.Assignments {
		if !kind.IsValidUnit() {
			return ErrUnknownKind
		}
		counts[kind]++
		cell, err := ParseCellKey(key)
		if err != nil {
			return ErrBadCell
		}
		if !cell.InBounds() {
			return ErrBadCell
		}
		if cell == setup.FlagPos {
			return ErrBadCell
		}
		cells = append(cells, cell)
	}

	if counts[KindA] != setupCountOrdinary ||
		counts[KindB] != setupCountOrdinary ||
		counts[KindC] != setupCountOrdinary ||
		counts[KindGuardian] != setupCountGuardian {
		return ErrWrongCounts
	}

	if !IsHomeRow(playerNumber, setup.FlagPos.Row) {
		return ErrFlagOutsideZone
	}
	for _, cell := range cells {
		if !IsHomeRow(playerNumber, cell.Row) {
			return ErrAssignmentOutsideZone
		}
	}
	return nil
}

// GenerateRandomSetup synthesizes a legal setup for a non-responsive player:
// the flag cell is drawn uniformly from the 14 home cells, the unit pool is
// shuffled across the rest.
func GenerateRandomSetup(rng *rand.Rand, playerNumber int) *Setup {
	rows := HomeRows(playerNumber)
	cells := make([]Cell, 0, 2*BoardCols)
	for _, row := range rows {
		for col := 0; col < BoardCols; col++ {
			cells = append(cells, Cell{Row: row, Col: col})
		}
	}

	flagIndex := rng.Intn(len(cells))
	flagPos := cells[flagIndex]
	cells = append(cells[:flagIndex], cells[flagIndex+1:]...)

	pool := make([]PieceKind, 0, SetupUnitCount)
	for i := 0; i < setupCountOrdinary; i++ {
		pool = append(pool, KindA, KindB, KindC)
	}
	pool = append(pool, KindGuardian)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	assignments := make(map[string]PieceKind, SetupUnitCount)
	for i, cell := range cells {
		assignments[cell.Key()] = pool[i]
	}
	return &Setup{FlagPos: flagPos, Assignments: assignments}
}
