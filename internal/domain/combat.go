package domain

import "math/rand"

// BattleResult names the side that survives a contested move.
type BattleResult string

const (
	// AttackerWins means the moving piece takes the cell.
	AttackerWins BattleResult = "attacker"
	// DefenderWins means the occupying piece holds the cell.
	DefenderWins BattleResult = "defender"
	// Duel means attacker and defender share a kind and a tie-break draw is required.
	Duel BattleResult = "duel"
)

// DuelDraw records the synthetic kinds drawn to break a same-kind battle.
type DuelDraw struct {
	AttackerChoice PieceKind `json:"attackerChoice"`
	DefenderChoice PieceKind `json:"defenderChoice"`
}

// ResolveBattle decides a contested move as an ordered rule set; the first
// matching rule wins. attackerPiece/defenderPiece carry guardian charge state
// and may be nil when re-resolving a duel draw with synthetic kinds.
//
// Rule order: exhausted guardians lose outright, equal kinds duel, a charged
// guardian beats any ordinary unit, the a>c, b>a, c>b cycle decides ordinary
// pairings, a defending flag falls, an attacking flag cannot prevail.
func ResolveBattle(attacker, defender PieceKind, attackerPiece, defenderPiece *Piece) BattleResult {
	if attackerPiece != nil && attackerPiece.Kind == KindGuardian && attackerPiece.SwordLives <= 0 {
		return DefenderWins
	}
	if defenderPiece != nil && defenderPiece.Kind == KindGuardian && defenderPiece.SwordLives <= 0 {
		return AttackerWins
	}
	if attacker == defender {
		return Duel
	}

	if attacker == KindGuardian && defender.IsOrdinary() {
		return AttackerWins
	}
	if defender == KindGuardian && attacker.IsOrdinary() {
		return DefenderWins
	}

	if attacker == KindA && defender == KindC {
		return AttackerWins
	}
	if defender == KindA && attacker == KindC {
		return DefenderWins
	}
	if attacker == KindB && defender == KindA {
		return AttackerWins
	}
	if defender == KindB && attacker == KindA {
		return DefenderWins
	}
	if attacker == KindC && defender == KindB {
		return AttackerWins
	}
	if defender == KindC && attacker == KindB {
		return DefenderWins
	}

	if defender == KindFlag {
		return AttackerWins
	}
	if attacker == KindFlag {
		return DefenderWins
	}

	return DefenderWins
}

// ResolveDuel draws the tie-break kinds: the attacker's pick is uniform over
// the ordinary kinds, the defender's is re-drawn until it differs.
func ResolveDuel(rng *rand.Rand) DuelDraw {
	choices := []PieceKind{KindA, KindB, KindC}
	attackerChoice := choices[rng.Intn(len(choices))]
	defenderChoice := choices[rng.Intn(len(choices))]
	for defenderChoice == attackerChoice {
		defenderChoice = choices[rng.Intn(len(choices))]
	}
	return DuelDraw{AttackerChoice: attackerChoice, DefenderChoice: defenderChoice}
}

// ApplyChargeLoss deducts one guardian charge when the surviving piece is a
// guardian that defeated an ordinary unit. Duel wins never consume a charge
// because a duel only arises between equal kinds.
func ApplyChargeLoss(winner, loser *Piece) {
	if winner == nil || winner.Kind != KindGuardian {
		return
	}
	if loser == nil || !loser.Kind.IsOrdinary() {
		return
	}
	if winner.SwordLives > 0 {
		winner.SwordLives--
	}
}
