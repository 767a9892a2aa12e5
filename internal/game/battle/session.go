package battle

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/minidungeon/internal/game/combat"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
)

// State is the lifecycle stage of the current battle.
type State int

const (
	NotStarted State = iota
	InProgress
	Won
	Fled
	Lost
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Fled:
		return "fled"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s ends a battle.
func (s State) IsTerminal() bool {
	return s == Won || s == Fled || s == Lost
}

// Session is the per-battle state owned by the Battle.
//
// The monster is held by value. It outlives Close so an interrupted battle
// can be resumed with the same monster.
type Session struct {
	ID         uuid.UUID
	Monster    monster.Monster
	HasMonster bool
	// CleanExit is false from Start until Close. A session saved while false
	// was interrupted mid-battle.
	CleanExit bool
	State     State
	Turns     int
}

// MonsterStrike describes one monster attack.
type MonsterStrike struct {
	Magic   bool
	Raw     uint16
	Defense uint8
	Damage  uint16
}

// TurnResult reports what one player action caused.
type TurnResult struct {
	State State
	// Player is set when the action struck the monster.
	Player *combat.Strike
	// Monster is set when the monster counter-attacked.
	Monster *MonsterStrike
	// Healed is the health restored by a potion.
	Healed int
	// Gold is the reward granted on victory.
	Gold      uint16
	LeveledUp bool
}

// Tally counts battle outcomes over a run.
type Tally struct {
	Victories  int    `json:"victories"`
	Escapes    int    `json:"escapes"`
	GoldEarned uint32 `json:"gold_earned"`
}
