package battle_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/combat"
	"github.com/cory-johannsen/minidungeon/internal/game/dice"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
)

func TestStart(t *testing.T) {
	fx := newFixture(t, ogre(500))
	assert.Equal(t, battle.NotStarted, fx.battle.State())

	fx.start(t)

	assert.Equal(t, battle.InProgress, fx.battle.State())
	assert.Equal(t, []string{"push battle", "row 0 Ogre 500"}, fx.ui.events)
	m, ok := fx.battle.CurrentMonster()
	require.True(t, ok)
	assert.Equal(t, "giants/ogre", m.Key())
	assert.NotEqual(t, uuid.Nil, fx.battle.Session().ID)
}

func TestStart_NoMonsters(t *testing.T) {
	fx := newFixture(t)
	err := fx.battle.Start()
	assert.ErrorIs(t, err, monster.ErrNoMonsters)
	assert.Equal(t, battle.NotStarted, fx.battle.State())
}

func TestAttack_WithoutMonsterPanics(t *testing.T) {
	fx := newFixture(t, ogre(500))
	assert.PanicsWithValue(t, "battle: action with no current monster", func() {
		fx.battle.Attack(combat.Physical)
	})
}

func TestAttack_MonsterCounterAttackExample(t *testing.T) {
	// floor 1, mighty monster (divisor 4), player health curve 100:
	// raw 25; defense 3 passes 82% -> 20
	fx := newFixture(t, ogre(500))
	fx.char.Attributes.Defense = 3
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)

	require.NotNil(t, res.Player)
	assert.Equal(t, uint16(3), res.Player.Final)
	require.NotNil(t, res.Monster)
	assert.False(t, res.Monster.Magic)
	assert.Equal(t, uint16(25), res.Monster.Raw)
	assert.Equal(t, uint16(20), res.Monster.Damage)
	assert.Equal(t, 80, fx.char.Health)
	assert.Equal(t, battle.InProgress, res.State)

	m, _ := fx.battle.CurrentMonster()
	assert.Equal(t, 497, m.Health)
	assert.Contains(t, fx.ui.events, "row 0 Ogre 497")
}

func TestAttack_MonsterDamageFloorsAtOne(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.char.Attributes.Defense = 40
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)
	assert.Equal(t, uint16(1), res.Monster.Damage)
	assert.Equal(t, 99, fx.char.Health)
}

func TestVictory(t *testing.T) {
	fx := newFixture(t, ogre(1))
	fx.battle.SetCurrentFloor(4)
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)

	assert.Equal(t, battle.Won, res.State)
	assert.Equal(t, uint16(12), res.Gold)
	assert.Nil(t, res.Monster, "a defeated monster does not attack")
	assert.Equal(t, 1, fx.char.goldGrants)
	assert.Equal(t, uint16(12), fx.char.Gold)
	assert.Equal(t, 100, fx.char.Health)
	assert.Equal(t, uint8(5), fx.battle.CurrentFloor())
	assert.False(t, fx.battle.WasClosedUncleanly())
	assert.Equal(t, 1, fx.ui.count("pop"))
	assert.Contains(t, fx.ui.events, "row 0 Ogre 0", "health is clamped for display")

	again := fx.battle.Attack(combat.Physical)
	assert.Equal(t, battle.Won, again.State)
	assert.Equal(t, 1, fx.char.goldGrants, "gold is granted exactly once")
	assert.Equal(t, uint8(5), fx.battle.CurrentFloor())
	assert.Equal(t, battle.Tally{Victories: 1, GoldEarned: 12}, fx.battle.Tally())
}

func TestVictory_LevelUp(t *testing.T) {
	fx := newFixture(t, ogre(1))
	fx.char.Experience = 4
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, uint16(2), fx.char.Level)
	assert.Equal(t, uint16(character.ComputeHealth(2)), fx.char.MaxHealth)
}

func TestVictory_GoldSaturates(t *testing.T) {
	m := ogre(1)
	m.GoldScale = 1000
	fx := newFixture(t, m)
	fx.battle.SetCurrentFloor(200)
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)
	assert.Equal(t, uint16(65535), res.Gold)
}

func TestDefeat(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.char.Attributes.Defense = 3
	fx.char.Health = 20
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)

	assert.Equal(t, battle.Lost, res.State)
	assert.Equal(t, 0, fx.char.Health)
	assert.Equal(t, 1, fx.ui.count("push end"))
	assert.Equal(t, "push end", fx.ui.last())
	assert.False(t, fx.battle.WasClosedUncleanly())

	again := fx.battle.Attack(combat.Physical)
	assert.Equal(t, battle.Lost, again.State)
	fx.battle.Flee()
	fx.battle.Close()
	assert.Equal(t, 1, fx.ui.count("push end"), "end screen shown exactly once")
	assert.Equal(t, 1, fx.ui.count("pop"))
	assert.Equal(t, 0, fx.char.Health)
}

func TestDefeat_OnlyAfterMonsterAttack(t *testing.T) {
	// The player's health is already zero but the killing blow lands first.
	fx := newFixture(t, ogre(1))
	fx.char.Health = 0
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)
	assert.Equal(t, battle.Won, res.State)
	assert.Zero(t, fx.ui.count("push end"))
}

func TestMonsterAttack_TypeDrawWhenBothAllowed(t *testing.T) {
	m := ogre(500)
	m.AllowMagic = true

	src := &scriptedSource{vals: []int{1, 0}}
	fx := newFixtureWithSource(t, battle.DefaultConfig(), src, m)
	fx.char.Attributes.Defense = 1
	fx.char.Attributes.MagicDefense = 10
	fx.start(t)

	magic := fx.battle.Attack(combat.Physical)
	assert.True(t, magic.Monster.Magic)
	assert.Equal(t, uint16(12), magic.Monster.Damage, "25 at 50%")

	physical := fx.battle.Attack(combat.Physical)
	assert.False(t, physical.Monster.Magic)
	assert.Equal(t, uint16(23), physical.Monster.Damage, "25 at 94%")
	assert.Equal(t, []int{2, 2}, src.calls)
}

func TestMonsterAttack_MagicOnlyDrawsNothing(t *testing.T) {
	m := ogre(500)
	m.AllowPhysical = false
	m.AllowMagic = true
	fx := newFixture(t, m)
	fx.char.Attributes.MagicDefense = 5
	fx.start(t)

	res := fx.battle.Attack(combat.Physical)
	assert.True(t, res.Monster.Magic)
	assert.Equal(t, uint16(17), res.Monster.Damage)
	assert.Empty(t, fx.src.calls)
}

func TestAttack_Elemental(t *testing.T) {
	m := ogre(500)
	m.FirePercent = 200
	fx := newFixture(t, m)
	fx.start(t)

	res := fx.battle.Attack(combat.Fire)
	// magic 1, level 1, x3: 9; no magic defense; fire 200%
	assert.Equal(t, uint16(9), res.Player.Mitigated)
	assert.Equal(t, uint16(18), res.Player.Final)
	got, _ := fx.battle.CurrentMonster()
	assert.Equal(t, 482, got.Health)
}

func TestFlee_Success(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.start(t)

	res := fx.battle.Flee()

	assert.Equal(t, battle.Fled, res.State)
	assert.Nil(t, res.Monster)
	assert.Equal(t, 100, fx.char.Health)
	assert.Equal(t, []int{3}, fx.src.calls)
	assert.Equal(t, 1, fx.ui.count("pop"))
	assert.Equal(t, uint8(1), fx.battle.CurrentFloor(), "fleeing does not descend")
	assert.Equal(t, 1, fx.battle.Tally().Escapes)
}

func TestFlee_Failure(t *testing.T) {
	src := &scriptedSource{vals: []int{1}}
	fx := newFixtureWithSource(t, battle.DefaultConfig(), src, ogre(500))
	fx.start(t)

	res := fx.battle.Flee()

	assert.Equal(t, battle.InProgress, res.State)
	require.NotNil(t, res.Monster)
	assert.Equal(t, 77, fx.char.Health)
}

func TestFlee_BossFloorAlwaysFails(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.battle.SetCurrentFloor(20)
	fx.char.Health = 1000
	fx.start(t)

	res := fx.battle.Flee()

	assert.Equal(t, battle.InProgress, res.State)
	assert.Equal(t, []int{3}, fx.src.calls, "the draw still happens")
	require.NotNil(t, res.Monster)
	// ComputeHealth(20) = 470; / 4 = 117; defense 1 passes 94%
	assert.Equal(t, uint16(109), res.Monster.Damage)
}

func fleeRate(t *testing.T, floor int, trials int) float64 {
	t.Helper()
	fx := newFixtureWithSource(t, battle.DefaultConfig(), dice.NewSeededSource(7), ogre(500))
	fx.battle.SetCurrentFloor(floor)
	fled := 0
	for i := 0; i < trials; i++ {
		fx.char.Health = 50000
		fx.start(t)
		if fx.battle.Flee().State == battle.Fled {
			fled++
		}
	}
	return float64(fled) / float64(trials)
}

func TestFlee_RateConvergesToOneThird(t *testing.T) {
	rate := fleeRate(t, 1, 3000)
	assert.InDelta(t, 1.0/3.0, rate, 0.045)
}

func TestFlee_RateZeroOnBossFloors(t *testing.T) {
	assert.Equal(t, 0.0, fleeRate(t, 20, 500))
	assert.Equal(t, 0.0, fleeRate(t, 37, 500))
}

func TestFlee_ConfigurableRules(t *testing.T) {
	cfg := battle.Config{BossFloor: 5, FleeOdds: 1}
	fx := newFixtureWithSource(t, cfg, &scriptedSource{}, ogre(500))
	fx.battle.SetCurrentFloor(4)
	fx.start(t)
	assert.Equal(t, battle.Fled, fx.battle.Flee().State)

	fx.battle.SetCurrentFloor(5)
	fx.char.Health = 1000
	fx.start(t)
	assert.Equal(t, battle.InProgress, fx.battle.Flee().State)
}

func TestItemMenu_OpenClose(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.start(t)

	fx.battle.OpenItemMenu()
	fx.battle.OpenItemMenu()
	assert.True(t, fx.battle.ItemMenuOpen())
	assert.Equal(t, 1, fx.ui.count("push items"))

	fx.battle.CloseItemMenu()
	assert.False(t, fx.battle.ItemMenuOpen())
	assert.Equal(t, []string{"push battle", "row 0 Ogre 500", "push items", "pop", "row 0 Ogre 500"}, fx.ui.events)
	assert.Equal(t, 100, fx.char.Health, "browsing items costs no turn")
}

func TestUseItem_Potion(t *testing.T) {
	fx := newFixture(t, ogre(500))
	require.True(t, fx.bag.Add(inventory.Potion))
	fx.char.Health = 30
	fx.start(t)
	fx.battle.OpenItemMenu()

	res, ok := fx.battle.UseItem(inventory.Potion)

	require.True(t, ok)
	assert.Equal(t, 50, res.Healed)
	require.NotNil(t, res.Monster, "healing does not skip the monster's turn")
	assert.Equal(t, 57, fx.char.Health)
	assert.Nil(t, res.Player)
	assert.False(t, fx.battle.ItemMenuOpen())
	assert.Equal(t, 0, fx.bag.Count(inventory.Potion))
}

func TestUseItem_OutOfStockIsSilent(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.start(t)
	fx.battle.OpenItemMenu()
	before := len(fx.ui.events)

	res, ok := fx.battle.UseItem(inventory.FireScroll)

	assert.False(t, ok)
	assert.Equal(t, battle.InProgress, res.State)
	assert.True(t, fx.battle.ItemMenuOpen(), "menu stays open")
	assert.Len(t, fx.ui.events, before, "UI is not updated")
	assert.Equal(t, 100, fx.char.Health)
	m, _ := fx.battle.CurrentMonster()
	assert.Equal(t, 500, m.Health)
}

func TestUseItem_ScrollAttacksOnce(t *testing.T) {
	m := ogre(500)
	m.IcePercent = 200
	fx := newFixture(t, m)
	require.True(t, fx.bag.Add(inventory.IceScroll))
	fx.start(t)
	fx.battle.OpenItemMenu()

	res, ok := fx.battle.UseItem(inventory.IceScroll)

	require.True(t, ok)
	require.NotNil(t, res.Player)
	assert.Equal(t, combat.Ice, res.Player.Kind)
	// 9 mitigated, ice 200% -> 18, item bonus 150% -> 27
	assert.Equal(t, uint16(27), res.Player.Final)
	assert.Equal(t, 77, fx.char.Health, "monster acts exactly once")
	assert.Equal(t, 0, fx.bag.Count(inventory.IceScroll))
}

func TestUseItem_ImmuneMonster(t *testing.T) {
	m := ogre(500)
	m.FirePercent = 0
	fx := newFixture(t, m)
	require.True(t, fx.bag.Add(inventory.FireScroll))
	fx.start(t)

	res, ok := fx.battle.UseItem(inventory.FireScroll)
	require.True(t, ok)
	assert.Equal(t, uint16(0), res.Player.Final)
	got, _ := fx.battle.CurrentMonster()
	assert.Equal(t, 500, got.Health)
}

func TestUseItem_ScrollKills(t *testing.T) {
	fx := newFixture(t, ogre(5))
	require.True(t, fx.bag.Add(inventory.LightningScroll))
	fx.start(t)
	fx.battle.OpenItemMenu()

	res, ok := fx.battle.UseItem(inventory.LightningScroll)
	require.True(t, ok)
	assert.Equal(t, battle.Won, res.State)
	assert.Nil(t, res.Monster)
	assert.Equal(t, 2, fx.ui.count("pop"), "item menu then battle menu")
}

func TestKill(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.start(t)
	res, ok := fx.battle.Kill()
	assert.False(t, ok, "instant kill is off by default")
	assert.Equal(t, battle.InProgress, res.State)

	cfg := battle.DefaultConfig()
	cfg.Debug.InstantKill = true
	fx = newFixtureWithSource(t, cfg, &scriptedSource{}, ogre(500))
	fx.start(t)
	res, ok = fx.battle.Kill()
	assert.True(t, ok)
	assert.Equal(t, battle.Won, res.State)
	assert.Equal(t, uint16(3), res.Gold)
}

func TestClose_Abort(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.start(t)
	fx.battle.OpenItemMenu()

	fx.battle.Close()
	fx.battle.Close()

	assert.Equal(t, battle.Fled, fx.battle.State())
	assert.Equal(t, 2, fx.ui.count("pop"))
	assert.False(t, fx.battle.WasClosedUncleanly())
}

func TestWasClosedUncleanly(t *testing.T) {
	fx := newFixture(t, ogre(500))
	assert.False(t, fx.battle.WasClosedUncleanly(), "no battle yet")

	fx.start(t)
	assert.True(t, fx.battle.WasClosedUncleanly())

	fx.battle.Close()
	assert.False(t, fx.battle.WasClosedUncleanly())
}

func TestResumeBattle_ReusesMonsterOnce(t *testing.T) {
	goblin := ogre(50)
	goblin.ID = "goblin"
	goblin.Name = "Goblin"
	fx := newFixture(t, ogre(500), goblin)
	fx.start(t)
	fx.battle.Attack(combat.Physical)
	// host suspended here: no Close

	require.True(t, fx.battle.WasClosedUncleanly())
	fx.battle.ResumeBattle()
	assert.True(t, fx.battle.IsBattleForced())

	fx.start(t)
	m, _ := fx.battle.CurrentMonster()
	assert.Equal(t, "giants/ogre", m.Key())
	assert.Equal(t, 497, m.Health, "resumed monster keeps its damage")
	assert.False(t, fx.battle.IsBattleForced(), "forced flag is consumed")
	assert.Equal(t, 1, fx.enc.draws)

	fx.battle.Close()
	fx.start(t)
	next, _ := fx.battle.CurrentMonster()
	assert.Equal(t, "giants/goblin", next.Key(), "subsequent battle draws randomly")
	assert.Equal(t, 2, fx.enc.draws)
}

func TestResumeBattle_DeadMonsterNotForced(t *testing.T) {
	fx := newFixture(t, ogre(1))
	fx.start(t)
	fx.battle.Attack(combat.Physical)
	require.Equal(t, battle.Won, fx.battle.State())

	fx.battle.ResumeBattle()
	assert.False(t, fx.battle.IsBattleForced())
}

func TestResumeBattle_NoBattle(t *testing.T) {
	fx := newFixture(t, ogre(1))
	fx.battle.ResumeBattle()
	assert.False(t, fx.battle.IsBattleForced())
}

func TestResumeBattle_WithRegistry(t *testing.T) {
	tmpls := []*monster.Template{
		{Group: "g", ID: "a", Name: "A", AllowPhysical: true, MinFloor: 1, GoldScale: 1, HealthPercent: 100, FirePercent: 100, IcePercent: 100, LightningPercent: 100},
		{Group: "g", ID: "b", Name: "B", AllowPhysical: true, MinFloor: 1, GoldScale: 1, HealthPercent: 100, FirePercent: 100, IcePercent: 100, LightningPercent: 100},
	}
	src := &scriptedSource{vals: []int{1}}
	logger := zap.NewNop()
	roller := dice.NewLoggedRoller(src, logger)
	reg, err := monster.NewRegistry(tmpls, roller, monster.NewPercentScaler(tmpls), logger)
	require.NoError(t, err)

	c, err := character.New("hero")
	require.NoError(t, err)
	ui := &recordingUI{}
	b := battle.New(battle.DefaultConfig(), c, inventory.NewBag(9), itemCatalogue(t), reg, roller, ui, logger)

	require.NoError(t, b.Start())
	first, _ := b.CurrentMonster()
	assert.Equal(t, "g/b", first.Key())
	assert.Equal(t, 20, first.Health)
	b.Attack(combat.Physical)
	snap := b.Snapshot()

	// relaunch
	relaunched := battle.New(battle.DefaultConfig(), c, inventory.NewBag(9), itemCatalogue(t), reg, roller, ui, logger)
	relaunched.Restore(snap)
	require.True(t, relaunched.WasClosedUncleanly())
	relaunched.ResumeBattle()
	require.True(t, relaunched.IsBattleForced())

	require.NoError(t, relaunched.Start())
	resumed, _ := relaunched.CurrentMonster()
	assert.Equal(t, "g/b", resumed.Key())
	assert.Equal(t, 17, resumed.Health)
	assert.False(t, reg.IsForced())

	relaunched.Close()
	require.NoError(t, relaunched.Start())
	fresh, _ := relaunched.CurrentMonster()
	assert.Equal(t, "g/a", fresh.Key(), "random draw resumes")
	assert.Equal(t, 20, fresh.Health)
}

func TestSnapshotRestore(t *testing.T) {
	fx := newFixture(t, ogre(1))
	fx.battle.SetCurrentFloor(6)
	fx.start(t)
	fx.battle.Attack(combat.Physical)

	snap := fx.battle.Snapshot()
	assert.Equal(t, uint8(7), snap.Floor)
	assert.True(t, snap.CleanExit)
	require.NotNil(t, snap.Monster)

	other := newFixture(t, ogre(1))
	other.battle.Restore(snap)
	assert.Equal(t, uint8(7), other.battle.CurrentFloor())
	assert.Equal(t, snap.Tally, other.battle.Tally())
	assert.False(t, other.battle.WasClosedUncleanly())
	assert.Equal(t, battle.NotStarted, other.battle.State())
}

func TestRestore_DiscardInterruptedBattle(t *testing.T) {
	fx := newFixture(t, ogre(500))
	fx.start(t)
	snap := fx.battle.Snapshot()

	other := newFixture(t, ogre(500))
	other.battle.Restore(snap)
	require.True(t, other.battle.WasClosedUncleanly())

	other.battle.Close()
	assert.False(t, other.battle.WasClosedUncleanly())
	assert.Empty(t, other.ui.events, "nothing was on screen to pop")
	res := other.battle.Attack(combat.Physical)
	assert.Equal(t, battle.NotStarted, res.State, "a restored battle is not running")
}

func TestBattle_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	c, err := character.New("hero")
	require.NoError(t, err)
	enc := &fakeEncounters{pool: []monster.Monster{ogre(1)}}
	b := battle.New(battle.DefaultConfig(), c, inventory.NewBag(9), itemCatalogue(t), enc, dice.NewLoggedRoller(&scriptedSource{}, logger), &recordingUI{}, logger)

	require.NoError(t, b.Start())
	b.Attack(combat.Physical)

	wins := logs.FilterMessage("player wins").All()
	require.Len(t, wins, 1)
	fields := wins[0].ContextMap()
	assert.Equal(t, b.Session().ID.String(), fields["battle_id"])
	assert.Equal(t, "giants/ogre", fields["monster"])
	assert.Equal(t, 1, logs.FilterMessage("battle started").Len())
}
