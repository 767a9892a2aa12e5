// Package battle runs a single turn-based fight between the player and one
// monster, and tracks the floor progression that drives monster difficulty.
//
// Every action runs to completion before returning. A Battle is not safe for
// concurrent use; the hosting UI loop is expected to be single-threaded.
package battle

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/combat"
	"github.com/cory-johannsen/minidungeon/internal/game/dice"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
)

// Character is the player record the battle reads stats from and applies
// outcomes to.
type Character interface {
	Stats() character.Stats
	CurrentLevel() uint16
	// DealDamage returns true when the hit kills the player.
	DealDamage(amount uint16) bool
	// Heal returns the health actually restored.
	Heal(percent uint16) int
	GrantGold(amount uint16)
	// GrantExperience returns true when the award crosses a level threshold.
	GrantExperience(floor uint8) bool
	LevelUp()
}

// Inventory consumes items during battle.
type Inventory interface {
	// TryConsume returns false when none of k are in stock.
	TryConsume(k inventory.Kind) bool
}

// ItemCatalog resolves item effects.
type ItemCatalog interface {
	Item(k inventory.Kind) (*inventory.ItemDef, bool)
}

// Encounters picks the monster for each battle. *monster.Registry implements it.
type Encounters interface {
	Select(floor uint8) (monster.Monster, error)
	Pin(m monster.Monster)
	IsForced() bool
}

// DebugCapabilities are development-only actions, off unless injected.
type DebugCapabilities struct {
	// InstantKill enables Kill.
	InstantKill bool
}

// Config holds the balance rules of a battle.
type Config struct {
	// BossFloor is the first floor on which fleeing always fails.
	BossFloor uint8
	// FleeOdds is N in the 1-in-N chance of a successful flee.
	FleeOdds int
	Debug    DebugCapabilities
}

// DefaultConfig returns the standard rules: inescapable from floor 20, 1-in-3 flee.
func DefaultConfig() Config {
	return Config{BossFloor: 20, FleeOdds: 3}
}

// Battle is the battle state machine:
//
//	NotStarted -> InProgress -> {Won, Fled, Lost}
//
// The monster always gets its turn after a player action that does not end
// the battle. Defeat is only checked after a monster attack.
type Battle struct {
	cfg        Config
	char       Character
	inv        Inventory
	items      ItemCatalog
	encounters Encounters
	roller     *dice.Roller
	ui         UI
	logger     *zap.Logger

	floor        *Floor
	session      Session
	itemMenuOpen bool
	tally        Tally
}

// New creates a Battle on floor 1 with no battle started.
//
// Precondition: every argument must be non-nil; cfg.FleeOdds >= 1.
func New(cfg Config, char Character, inv Inventory, items ItemCatalog, encounters Encounters, roller *dice.Roller, ui UI, logger *zap.Logger) *Battle {
	return &Battle{
		cfg:        cfg,
		char:       char,
		inv:        inv,
		items:      items,
		encounters: encounters,
		roller:     roller,
		ui:         ui,
		logger:     logger,
		floor:      NewFloor(),
	}
}

// Start begins a battle on the current floor.
//
// A forced monster (scripted or resumed) is used as-is; otherwise one is
// drawn for the floor at full health. The session is marked unclean until
// Close so an interrupted battle can be detected.
//
// Postcondition: State() == InProgress on success.
func (b *Battle) Start() error {
	floor := b.floor.Current()
	forced := b.encounters.IsForced()
	m, err := b.encounters.Select(floor)
	if err != nil {
		return err
	}

	b.session = Session{
		ID:         uuid.New(),
		Monster:    m,
		HasMonster: true,
		CleanExit:  false,
		State:      InProgress,
	}
	b.itemMenuOpen = false

	b.logger.Info("battle started",
		zap.String("battle_id", b.session.ID.String()),
		zap.Uint8("floor", floor),
		zap.String("monster", m.Key()),
		zap.Int("health", m.Health),
		zap.Bool("forced", forced),
	)
	b.ui.PushMenu(MenuBattle)
	b.showMonster()
	return nil
}

// Attack strikes the monster with kind. Elemental kinds use magic against
// magic defense and are scaled by the monster's elemental percentage.
//
// Precondition: a battle has been started.
// Postcondition: a no-op returning the current state once the battle has ended.
func (b *Battle) Attack(kind combat.AttackKind) TurnResult {
	if !b.active() {
		return TurnResult{State: b.session.State}
	}
	var res TurnResult
	b.strike(&res, kind, 100)
	b.resolveTurn(&res)
	return res
}

// OpenItemMenu shows the item sub-menu. It costs no turn.
func (b *Battle) OpenItemMenu() {
	if !b.active() || b.itemMenuOpen {
		return
	}
	b.itemMenuOpen = true
	b.ui.PushMenu(MenuItems)
}

// CloseItemMenu returns to the battle menu without acting.
func (b *Battle) CloseItemMenu() {
	if !b.itemMenuOpen {
		return
	}
	b.itemMenuOpen = false
	b.ui.PopMenu()
	b.showMonster()
}

// UseItem consumes one k. Potions heal and then the monster acts; scrolls
// attack with their element and the monster acts once.
//
// Postcondition: ok is false and nothing changes when k is out of stock,
// unknown, or no battle is in progress. A successful use closes the item menu.
func (b *Battle) UseItem(k inventory.Kind) (TurnResult, bool) {
	if !b.active() {
		return TurnResult{State: b.session.State}, false
	}
	def, known := b.items.Item(k)
	if !known || !b.inv.TryConsume(k) {
		return TurnResult{State: b.session.State}, false
	}
	if b.itemMenuOpen {
		b.itemMenuOpen = false
		b.ui.PopMenu()
	}

	b.logger.Debug("item used",
		zap.String("battle_id", b.session.ID.String()),
		zap.String("item", string(k)),
	)

	var res TurnResult
	if kind, isScroll := k.AttackKind(); isScroll {
		b.strike(&res, kind, def.Bonus())
	} else {
		res.Healed = b.char.Heal(def.HealPercent)
	}
	b.resolveTurn(&res)
	return res, true
}

// Flee tries to escape. One draw in FleeOdds succeeds, except on boss floors
// where the attempt always fails. A failed attempt gives the monster its turn.
func (b *Battle) Flee() TurnResult {
	if !b.active() {
		return TurnResult{State: b.session.State}
	}
	escaped := b.roller.Chance("flee", b.cfg.FleeOdds)
	if escaped && b.floor.Current() < b.cfg.BossFloor {
		b.session.State = Fled
		b.tally.Escapes++
		b.logger.Info("player fled",
			zap.String("battle_id", b.session.ID.String()),
			zap.Uint8("floor", b.floor.Current()),
			zap.String("monster", b.session.Monster.Key()),
		)
		b.Close()
		return TurnResult{State: Fled}
	}
	var res TurnResult
	b.resolveTurn(&res)
	return res
}

// Kill sets the monster's health to zero and resolves the turn.
//
// Postcondition: ok is false and nothing happens unless InstantKill is enabled.
func (b *Battle) Kill() (TurnResult, bool) {
	if !b.cfg.Debug.InstantKill || !b.active() {
		return TurnResult{State: b.session.State}, false
	}
	b.session.Monster.Health = 0
	b.showMonster()
	var res TurnResult
	b.resolveTurn(&res)
	return res, true
}

// Close ends the battle cleanly and pops the battle screen. Closing a battle
// still in progress abandons it and records it as fled.
//
// Postcondition: WasClosedUncleanly() is false.
func (b *Battle) Close() {
	if !b.session.HasMonster || b.session.CleanExit {
		return
	}
	if b.session.State == NotStarted {
		// a restored interrupted battle being discarded; nothing is on screen
		b.session.CleanExit = true
		return
	}
	if b.session.State == InProgress {
		b.session.State = Fled
	}
	b.logger.Info("ending battle",
		zap.String("battle_id", b.session.ID.String()),
		zap.String("state", b.session.State.String()),
	)
	b.session.CleanExit = true
	if b.itemMenuOpen {
		b.itemMenuOpen = false
		b.ui.PopMenu()
	}
	b.ui.PopMenu()
}

// ResumeBattle forces the next Start to reuse the current monster, provided
// it is still alive.
func (b *Battle) ResumeBattle() {
	if b.session.HasMonster && b.session.Monster.Health > 0 {
		b.encounters.Pin(b.session.Monster)
	}
}

// IsBattleForced reports whether the next Start uses a pinned monster.
func (b *Battle) IsBattleForced() bool {
	return b.encounters.IsForced()
}

// WasClosedUncleanly reports whether a battle was started and never closed,
// for example because the host was suspended mid-fight.
func (b *Battle) WasClosedUncleanly() bool {
	return b.session.HasMonster && !b.session.CleanExit
}

// State returns the current battle state.
func (b *Battle) State() State {
	return b.session.State
}

// Session returns a copy of the current session.
func (b *Battle) Session() Session {
	return b.session
}

// CurrentMonster returns the monster of the current or last battle.
func (b *Battle) CurrentMonster() (monster.Monster, bool) {
	return b.session.Monster, b.session.HasMonster
}

// ItemMenuOpen reports whether the item sub-menu is showing.
func (b *Battle) ItemMenuOpen() bool {
	return b.itemMenuOpen
}

// Tally returns the outcome counts for the run so far.
func (b *Battle) Tally() Tally {
	return b.tally
}

// CurrentFloor returns the current floor.
func (b *Battle) CurrentFloor() uint8 {
	return b.floor.Current()
}

// SetCurrentFloor moves to floor n, clamped into [1, 255].
func (b *Battle) SetCurrentFloor(n int) {
	b.floor.Set(n)
}

// IncrementFloor descends one floor.
func (b *Battle) IncrementFloor() {
	b.floor.Increment()
}

// ResetFloor returns to floor 1 and clears the run tally for a new run.
func (b *Battle) ResetFloor() {
	b.floor.Reset()
	b.tally = Tally{}
}

func (b *Battle) active() bool {
	if !b.session.HasMonster {
		panic("battle: action with no current monster")
	}
	return b.session.State == InProgress
}

func (b *Battle) strike(res *TurnResult, kind combat.AttackKind, bonus uint16) {
	m := &b.session.Monster
	stats := b.char.Stats()
	stat := stats.Strength
	if kind.IsElemental() {
		stat = stats.Magic
	}
	s := combat.ResolveStrike(kind, stat, b.char.CurrentLevel(), m.DefenseAgainst(kind), m.ElementPercent(kind), bonus)
	m.Damage(s.Final)
	res.Player = &s

	b.logger.Debug("player attack",
		zap.String("battle_id", b.session.ID.String()),
		zap.String("kind", kind.String()),
		zap.Uint16("raw", s.Raw),
		zap.Uint16("damage", s.Final),
		zap.Int("monster_health", m.Health),
	)
	b.showMonster()
}

// resolveTurn ends the battle on a dead monster, otherwise lets the monster attack.
func (b *Battle) resolveTurn(res *TurnResult) {
	b.session.Turns++
	floor := b.floor.Current()
	m := &b.session.Monster

	if m.IsDefeated() {
		b.session.State = Won
		b.logger.Info("player wins",
			zap.String("battle_id", b.session.ID.String()),
			zap.Uint8("floor", floor),
			zap.String("monster", m.Key()),
			zap.Int("turns", b.session.Turns),
		)
		b.Close()

		gold := combat.SaturateUint16(int(floor) * int(m.GoldScale))
		b.char.GrantGold(gold)
		res.Gold = gold
		b.tally.Victories++
		b.tally.GoldEarned += uint32(gold)
		if b.char.GrantExperience(floor) {
			b.char.LevelUp()
			res.LeveledUp = true
		}
		b.floor.Increment()
		res.State = Won
		return
	}

	hit := b.monsterAttack(floor)
	res.Monster = &hit
	if b.char.DealDamage(hit.Damage) {
		b.session.State = Lost
		b.logger.Info("player dies",
			zap.String("battle_id", b.session.ID.String()),
			zap.Uint8("floor", floor),
			zap.String("monster", m.Key()),
		)
		b.Close()
		b.ui.PushMenu(MenuEnd)
	}
	res.State = b.session.State
}

// monsterAttack computes the monster's hit: the player health curve at the
// current floor divided by the monster's power, mitigated by the player's
// defense or magic defense.
func (b *Battle) monsterAttack(floor uint8) MonsterStrike {
	m := &b.session.Monster
	magic := m.AllowMagic
	if m.AllowMagic && m.AllowPhysical {
		magic = b.roller.Roll("monster attack type", 2) == 1
	}

	stats := b.char.Stats()
	defense := stats.Defense
	if magic {
		defense = stats.MagicDefense
	}
	raw := character.ComputeHealth(uint16(floor)) / m.PowerDivisor()
	damage := combat.ApplyDefense(raw, defense)

	b.logger.Debug("monster attack",
		zap.String("battle_id", b.session.ID.String()),
		zap.String("monster", m.Key()),
		zap.Bool("magic", magic),
		zap.Uint16("damage", damage),
	)
	return MonsterStrike{Magic: magic, Raw: raw, Defense: defense, Damage: damage}
}

func (b *Battle) showMonster() {
	b.ui.ShowRow(SlotMonster, b.session.Monster.Name, b.session.Monster.DisplayHealth())
}
