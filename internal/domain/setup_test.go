package domain

import (
	"math/rand"
	"testing"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// validSetup builds a deterministic legal setup: the flag in the zone's first
// cell, then 4/4/4/1 units across the remaining home cells in order.
func validSetup(playerNumber int) *Setup {
	rows := HomeRows(playerNumber)
	cells := make([]Cell, 0, 2*BoardCols)
	for _, row := range rows {
		for col := 0; col < BoardCols; col++ {
			cells = append(cells, Cell{Row: row, Col: col})
		}
	}
	pool := []PieceKind{
		KindA, KindA, KindA, KindA,
		KindB, KindB, KindB, KindB,
		KindC, KindC, KindC, KindC,
		KindGuardian,
	}
	assignments := make(map[string]PieceKind, len(pool))
	for i, kind := range pool {
		assignments[cells[i+1].Key()] = kind
	}
	return &Setup{FlagPos: cells[0], Assignments: assignments}
}

func TestValidateSetup(t *testing.T) {
	for _, playerNumber := range []int{1, 2} {
		if err := ValidateSetup(playerNumber, validSetup(playerNumber)); err != nil {
			t.Errorf("valid setup for player %d rejected: %v", playerNumber, err)
		}
	}
}

func TestValidateSetupFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *Setup)
		expected error
	}{
		{
			name:     "missing assignments",
			mutate:   func(s *Setup) { s.Assignments = nil },
			expected: ErrSetupMissing,
		},
		{
			name:     "flag off board",
			mutate:   func(s *Setup) { s.FlagPos = Cell{Row: -1, Col: 0} },
			expected: ErrFlagInvalid,
		},
		{
			name: "too few assignments",
			mutate: func(s *Setup) {
				for key := range s.Assignments {
					delete(s.Assignments, key)
					break
				}
			},
			expected: ErrAssignmentCount,
		},
		{
			name: "unknown kind",
			mutate: func(s *Setup) {
				for key := range s.Assignments {
					s.Assignments[key] = PieceKind("f")
					break
				}
			},
			expected: ErrUnknownKind,
		},
		{
			name: "flag kind in assignments",
			mutate: func(s *Setup) {
				for key := range s.Assignments {
					s.Assignments[key] = KindFlag
					break
				}
			},
			expected: ErrUnknownKind,
		},
		{
			name: "malformed cell key",
			mutate: func(s *Setup) {
				kind := s.Assignments["1-0"]
				delete(s.Assignments, "1-0")
				s.Assignments["one-zero"] = kind
			},
			expected: ErrBadCell,
		},
		{
			name: "cell off board",
			mutate: func(s *Setup) {
				kind := s.Assignments["1-0"]
				delete(s.Assignments, "1-0")
				s.Assignments["1-9"] = kind
			},
			expected: ErrBadCell,
		},
		{
			name: "assignment on flag cell",
			mutate: func(s *Setup) {
				kind := s.Assignments["1-0"]
				delete(s.Assignments, "1-0")
				s.Assignments[s.FlagPos.Key()] = kind
			},
			expected: ErrBadCell,
		},
		{
			name: "wrong unit counts",
			mutate: func(s *Setup) {
				for key, kind := range s.Assignments {
					if kind == KindGuardian {
						s.Assignments[key] = KindA
					}
				}
			},
			expected: ErrWrongCounts,
		},
		{
			name:     "flag outside zone",
			mutate:   func(s *Setup) { s.FlagPos = Cell{Row: 3, Col: 0} },
			expected: ErrFlagOutsideZone,
		},
		{
			name: "assignment outside zone",
			mutate: func(s *Setup) {
				kind := s.Assignments["1-0"]
				delete(s.Assignments, "1-0")
				s.Assignments["2-0"] = kind
			},
			expected: ErrAssignmentOutsideZone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := validSetup(1)
			tt.mutate(setup)
			err := ValidateSetup(1, setup)
			if err != tt.expected {
				t.Errorf("ValidateSetup = %v, want %v", err, tt.expected)
			}
		})
	}
}

// A setup whose flag sits outside the zone but whose counts are also wrong
// must report the count failure: checks run in a fixed order.
func TestValidateSetupOrder(t *testing.T) {
	setup := validSetup(1)
	setup.FlagPos = Cell{Row: 4, Col: 0}
	for key, kind := range setup.Assignments {
		if kind == KindGuardian {
			setup.Assignments[key] = KindB
		}
	}
	if err := ValidateSetup(1, setup); err != ErrWrongCounts {
		t.Errorf("ValidateSetup = %v, want %v", err, ErrWrongCounts)
	}
}

func TestGenerateRandomSetup(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := newTestRand(seed)
		for _, playerNumber := range []int{1, 2} {
			setup := GenerateRandomSetup(rng, playerNumber)
			if err := ValidateSetup(playerNumber, setup); err != nil {
				t.Fatalf("seed %d player %d: generated setup invalid: %v", seed, playerNumber, err)
			}
		}
	}
}
