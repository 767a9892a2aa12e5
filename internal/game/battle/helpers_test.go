package battle_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/dice"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
)

// recordingUI captures every call the battle makes on its UI.
type recordingUI struct {
	events []string
}

func (u *recordingUI) ShowRow(slot int, label string, value int) {
	u.events = append(u.events, fmt.Sprintf("row %d %s %d", slot, label, value))
}

func (u *recordingUI) PushMenu(m battle.Menu) {
	u.events = append(u.events, "push "+m.String())
}

func (u *recordingUI) PopMenu() {
	u.events = append(u.events, "pop")
}

func (u *recordingUI) count(event string) int {
	n := 0
	for _, e := range u.events {
		if e == event {
			n++
		}
	}
	return n
}

func (u *recordingUI) last() string {
	if len(u.events) == 0 {
		return ""
	}
	return u.events[len(u.events)-1]
}

func (u *recordingUI) String() string {
	return strings.Join(u.events, "\n")
}

// scriptedSource returns queued values, wrapping each into [0, n).
// Once the queue is empty every draw returns 0.
type scriptedSource struct {
	vals  []int
	calls []int
}

func (s *scriptedSource) Intn(n int) int {
	s.calls = append(s.calls, n)
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[0] % n
	s.vals = s.vals[1:]
	return v
}

// fakeEncounters cycles through pool and honours a pinned monster once.
type fakeEncounters struct {
	pool   []monster.Monster
	draws  int
	forced bool
	pinned monster.Monster
}

func (f *fakeEncounters) Select(uint8) (monster.Monster, error) {
	if f.forced {
		f.forced = false
		return f.pinned, nil
	}
	if len(f.pool) == 0 {
		return monster.Monster{}, monster.ErrNoMonsters
	}
	m := f.pool[f.draws%len(f.pool)]
	f.draws++
	return m, nil
}

func (f *fakeEncounters) Pin(m monster.Monster) {
	f.pinned = m
	f.forced = true
}

func (f *fakeEncounters) IsForced() bool {
	return f.forced
}

// countingCharacter counts gold grants on top of the real character.
type countingCharacter struct {
	*character.Character
	goldGrants int
}

func (c *countingCharacter) GrantGold(amount uint16) {
	c.goldGrants++
	c.Character.GrantGold(amount)
}

func ogre(health int) monster.Monster {
	return monster.Monster{
		Group:            "giants",
		ID:               "ogre",
		Name:             "Ogre",
		PowerLevel:       monster.PowerMighty,
		DefenseLevel:     monster.DefenseNone,
		AllowPhysical:    true,
		GoldScale:        3,
		FirePercent:      100,
		IcePercent:       100,
		LightningPercent: 100,
		Health:           health,
		MaxHealth:        uint16(health),
	}
}

func itemCatalogue(t testing.TB) *inventory.Registry {
	t.Helper()
	reg, err := inventory.NewRegistryFrom([]*inventory.ItemDef{
		{Kind: inventory.Potion, Name: "Potion", Cost: 10, HealPercent: 50},
		{Kind: inventory.FullPotion, Name: "Elixir", Cost: 100, HealPercent: 100},
		{Kind: inventory.FireScroll, Name: "Bomb", Cost: 20},
		{Kind: inventory.IceScroll, Name: "Icicle", Cost: 20, BonusPercent: 150},
		{Kind: inventory.LightningScroll, Name: "Spark", Cost: 20},
	})
	require.NoError(t, err)
	return reg
}

type fixture struct {
	battle *battle.Battle
	ui     *recordingUI
	char   *countingCharacter
	bag    *inventory.Bag
	enc    *fakeEncounters
	src    *scriptedSource
}

func newFixtureWithSource(t testing.TB, cfg battle.Config, src dice.Source, pool ...monster.Monster) *fixture {
	t.Helper()
	c, err := character.New("hero")
	require.NoError(t, err)
	f := &fixture{
		ui:   &recordingUI{},
		char: &countingCharacter{Character: c},
		bag:  inventory.NewBag(9),
		enc:  &fakeEncounters{pool: pool},
	}
	if s, ok := src.(*scriptedSource); ok {
		f.src = s
	}
	logger := zap.NewNop()
	f.battle = battle.New(cfg, f.char, f.bag, itemCatalogue(t), f.enc, dice.NewLoggedRoller(src, logger), f.ui, logger)
	return f
}

func newFixture(t testing.TB, pool ...monster.Monster) *fixture {
	t.Helper()
	return newFixtureWithSource(t, battle.DefaultConfig(), &scriptedSource{}, pool...)
}

func (f *fixture) start(t testing.TB) {
	t.Helper()
	require.NoError(t, f.battle.Start())
}
