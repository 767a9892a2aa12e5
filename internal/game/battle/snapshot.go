package battle

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/minidungeon/internal/game/monster"
)

// Snapshot is the battle state that survives a suspended run.
type Snapshot struct {
	SessionID uuid.UUID        `json:"session_id"`
	Floor     uint8            `json:"floor"`
	Monster   *monster.Monster `json:"monster,omitempty"`
	CleanExit bool             `json:"clean_exit"`
	Tally     Tally            `json:"tally"`
}

// Snapshot captures the floor, the current monster, and whether the last
// battle was closed.
func (b *Battle) Snapshot() Snapshot {
	s := Snapshot{
		SessionID: b.session.ID,
		Floor:     b.floor.Current(),
		CleanExit: b.session.CleanExit,
		Tally:     b.tally,
	}
	if b.session.HasMonster {
		m := b.session.Monster
		s.Monster = &m
	}
	return s
}

// Restore reloads a snapshot. No battle is running afterwards; if the
// snapshot was taken mid-battle, WasClosedUncleanly reports true and
// ResumeBattle pins the saved monster for the next Start.
func (b *Battle) Restore(s Snapshot) {
	b.floor.Set(int(s.Floor))
	b.tally = s.Tally
	b.itemMenuOpen = false
	b.session = Session{
		ID:        s.SessionID,
		CleanExit: s.CleanExit,
		State:     NotStarted,
	}
	if s.Monster != nil {
		b.session.Monster = *s.Monster
		b.session.HasMonster = true
	}
}
