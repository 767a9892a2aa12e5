package console_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/minidungeon/internal/console"
	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/dice"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
	"github.com/cory-johannsen/minidungeon/internal/report"
	"github.com/cory-johannsen/minidungeon/internal/storage/postgres"
)

// memoryStore is an in-memory RunStore.
type memoryStore struct {
	mu    sync.Mutex
	runs  map[string]postgres.Run
	saves int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: make(map[string]postgres.Run)}
}

func (s *memoryStore) Save(_ context.Context, r *postgres.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	if r.Battle.Monster != nil {
		m := *r.Battle.Monster
		cp.Battle.Monster = &m
	}
	s.runs[r.Player] = cp
	s.saves++
	return nil
}

func (s *memoryStore) Load(_ context.Context, player string) (*postgres.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[player]
	if !ok {
		return nil, postgres.ErrRunNotFound
	}
	return &r, nil
}

func (s *memoryStore) get(player string) (postgres.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[player]
	return r, ok
}

type fakeReports struct {
	written []report.Summary
}

func (f *fakeReports) Write(s report.Summary) (string, error) {
	f.written = append(f.written, s)
	return "/tmp/report.pdf", nil
}

type fixture struct {
	console  *console.Console
	out      *bytes.Buffer
	store    *memoryStore
	reports  *fakeReports
	monsters *monster.Registry
}

func loadContent(t *testing.T) (*inventory.Registry, []*monster.Template) {
	t.Helper()
	defs, err := inventory.LoadItems("../../content/items")
	require.NoError(t, err)
	items, err := inventory.NewRegistryFrom(defs)
	require.NoError(t, err)
	tmpls, err := monster.LoadTemplates("../../content/monsters")
	require.NoError(t, err)
	return items, tmpls
}

func newFixture(t *testing.T, store *memoryStore, debug bool) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	items, tmpls := loadContent(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(42), logger)
	monsters, err := monster.NewRegistry(tmpls, roller, monster.NewPercentScaler(tmpls), logger)
	require.NoError(t, err)

	cfg := battle.DefaultConfig()
	cfg.Debug.InstantKill = debug
	var out bytes.Buffer
	reports := &fakeReports{}
	c, err := console.New(console.Options{
		Player:       "ayla",
		Battle:       cfg,
		MaxItemStock: 9,
		SalePercent:  20,
	}, items, monsters, roller, store, reports, &bytes.Buffer{}, &out, logger)
	require.NoError(t, err)
	return &fixture{console: c, out: &out, store: store, reports: reports, monsters: monsters}
}

// do runs each line and returns the output they produced.
func (f *fixture) do(t *testing.T, lines ...string) string {
	t.Helper()
	f.out.Reset()
	for _, l := range lines {
		f.console.Execute(context.Background(), l)
	}
	return f.out.String()
}
