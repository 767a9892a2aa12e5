package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/combat"
	"github.com/cory-johannsen/minidungeon/internal/game/command"
	"github.com/cory-johannsen/minidungeon/internal/game/dice"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
	"github.com/cory-johannsen/minidungeon/internal/game/monster"
	"github.com/cory-johannsen/minidungeon/internal/game/shop"
	"github.com/cory-johannsen/minidungeon/internal/observability"
	"github.com/cory-johannsen/minidungeon/internal/report"
	"github.com/cory-johannsen/minidungeon/internal/storage/postgres"
)

// RunStore persists runs between sessions. *postgres.RunRepository implements it.
type RunStore interface {
	Save(ctx context.Context, r *postgres.Run) error
	Load(ctx context.Context, player string) (*postgres.Run, error)
}

// ReportWriter stores the end-of-run summary. *report.Writer implements it.
type ReportWriter interface {
	Write(s report.Summary) (string, error)
}

// Options configures a Console.
type Options struct {
	// Player names the character and keys the saved run.
	Player       string
	Battle       battle.Config
	MaxItemStock int
	SalePercent  int
	// Color enables ANSI colors in output.
	Color bool
}

// Console runs one player's game over a line-oriented reader and writer.
//
// Commands are serialized by an internal mutex so Stop may be called from
// a signal handler while a command is running.
type Console struct {
	opts     Options
	items    *inventory.Registry
	monsters *monster.Registry
	commands *command.Registry
	store    RunStore
	reports  ReportWriter
	in       io.Reader
	screen   *Screen
	logger   *zap.Logger

	mu     sync.Mutex
	runID  uuid.UUID
	char   *character.Character
	bag    *inventory.Bag
	shop   *shop.Shop
	battle *battle.Battle
	done   bool
}

// New assembles a console game with a fresh level 1 character.
//
// Precondition: items, monsters, roller, in, out, and logger must be non-nil;
// store and reports may be nil to disable persistence and reports.
// Postcondition: Returns a ready Console or an error for an invalid player name.
func New(opts Options, items *inventory.Registry, monsters *monster.Registry, roller *dice.Roller,
	store RunStore, reports ReportWriter, in io.Reader, out io.Writer, logger *zap.Logger) (*Console, error) {
	char, err := character.New(opts.Player)
	if err != nil {
		return nil, fmt.Errorf("creating character: %w", err)
	}
	c := &Console{
		opts:     opts,
		items:    items,
		monsters: monsters,
		commands: command.DefaultRegistry(),
		store:    store,
		reports:  reports,
		in:       in,
		screen:   NewScreen(out, opts.Color),
		logger:   logger,
		runID:    uuid.New(),
		char:     char,
		bag:      inventory.NewBag(opts.MaxItemStock),
		shop:     shop.New(items, opts.SalePercent, logger),
	}
	c.battle = battle.New(opts.Battle, c.char, c.bag, items, monsters, roller, c.screen, logger)
	return c, nil
}

// Load restores the player's saved run, if any. A run saved mid-battle is
// resumed against the same monster.
//
// Postcondition: Returns nil when there is no store or no saved run.
func (c *Console) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	run, err := c.store.Load(ctx, c.opts.Player)
	if errors.Is(err, postgres.ErrRunNotFound) {
		c.logger.Info("starting new run", zap.String("player", c.opts.Player))
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading run: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.restore(run)
	return nil
}

func (c *Console) restore(run *postgres.Run) {
	c.runID = run.RunID
	*c.char = run.Character
	c.bag.Restore(run.Bag)
	c.shop.SetStatPointsPurchased(uint8(min(max(run.StatPointsPurchased, 0), 255)))
	c.battle.Restore(run.Battle)
	c.screen.Reset()

	c.runLogger().Info("run restored",
		zap.Uint8("floor", run.Battle.Floor),
		zap.Bool("unclean", c.battle.WasClosedUncleanly()),
	)

	if c.char.IsDead() {
		c.screen.PushMenu(battle.MenuEnd)
		return
	}
	if !c.battle.WasClosedUncleanly() {
		return
	}
	c.battle.ResumeBattle()
	if !c.battle.IsBattleForced() {
		c.battle.Close()
		return
	}
	m, _ := c.battle.CurrentMonster()
	c.screen.Println(Colorf(Yellow, "You wake mid-fight. The %s is still here.", m.Name))
	if err := c.battle.Start(); err != nil {
		c.logger.Warn("resuming battle", zap.Error(err))
	}
}

// Save stores the current run. A battle in progress is saved as interrupted.
func (c *Console) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx)
}

func (c *Console) save(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	run := &postgres.Run{
		Player:              c.opts.Player,
		RunID:               c.runID,
		Character:           *c.char,
		Bag:                 c.bag.Counts(),
		Battle:              c.battle.Snapshot(),
		StatPointsPurchased: int(c.shop.StatPointsPurchased()),
	}
	if err := c.store.Save(ctx, run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	c.runLogger().Debug("run saved",
		zap.Bool("unclean", run.Unclean()),
	)
	return nil
}

// Run reads commands until quit or end of input, then saves the run.
//
// Postcondition: the run is saved unless Stop already did so.
func (c *Console) Run(ctx context.Context) error {
	c.mu.Lock()
	c.screen.Println(Colorf(BrightYellow, "Welcome, %s. Type 'help' for commands.", c.char.Name))
	c.screen.Prompt()
	c.mu.Unlock()

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if c.Execute(ctx, scanner.Text()) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return c.finish(ctx)
}

func (c *Console) finish(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return nil
	}
	c.done = true
	return c.save(ctx)
}

// Start runs the console as a lifecycle service.
func (c *Console) Start() error {
	return c.Run(context.Background())
}

// Stop suspends the game, saving it as-is. A battle in progress is left
// open so it resumes on the next launch.
func (c *Console) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.finish(ctx); err != nil {
		c.logger.Error("suspending run", zap.Error(err))
		return
	}
	c.logger.Info("run suspended", zap.String("player", c.opts.Player))
}

// Execute runs one command line.
//
// Postcondition: Returns true when the player asked to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return true
	}

	p := command.Parse(line)
	if p.Command == "" {
		c.screen.Prompt()
		return false
	}
	cmd, ok := c.commands.Resolve(p.Command)
	if !ok || (cmd.Category == command.CategoryDebug && !c.opts.Battle.Debug.InstantKill) {
		c.screen.Println(fmt.Sprintf("Unknown command %q. Type 'help'.", p.Command))
		c.screen.Prompt()
		return false
	}
	if !cmd.AllowedIn(c.screen.Mode()) {
		c.screen.Println("You can't do that now.")
		c.screen.Prompt()
		return false
	}

	c.logger.Debug("command",
		zap.String("handler", cmd.Handler),
		zap.Strings("args", p.Args),
		zap.String("mode", c.screen.Mode().String()),
	)
	quit := c.dispatch(ctx, cmd, p)
	if !quit {
		c.screen.Prompt()
	}
	return quit
}

func (c *Console) dispatch(ctx context.Context, cmd *command.Command, p command.ParseResult) bool {
	switch cmd.Handler {
	case command.HandlerFight:
		c.fight()
	case command.HandlerAttack:
		c.afterTurn(ctx, c.battle.Attack(combat.Physical))
	case command.HandlerCast:
		c.cast(ctx, p.Arg(0))
	case command.HandlerItems:
		c.battle.OpenItemMenu()
		c.screen.Println(RenderItems(c.items.All(), c.bag))
	case command.HandlerUse:
		c.use(ctx, p.Arg(0))
	case command.HandlerBack:
		c.battle.CloseItemMenu()
	case command.HandlerFlee:
		res := c.battle.Flee()
		if res.State == battle.InProgress {
			c.screen.Println(Colorize(Yellow, "You couldn't get away!"))
		}
		c.afterTurn(ctx, res)
	case command.HandlerKill:
		if res, ok := c.battle.Kill(); ok {
			c.afterTurn(ctx, res)
		}
	case command.HandlerStatus:
		c.screen.Println(RenderStatus(c.char, c.battle.CurrentFloor()))
	case command.HandlerShop:
		c.screen.Println(RenderShop(c.items.All(), c.shop, c.char.Gold))
	case command.HandlerBuy:
		c.buy(p.Arg(0))
	case command.HandlerSell:
		c.sell(p.Arg(0))
	case command.HandlerAllocate:
		if err := c.char.Allocate(p.Arg(0)); err != nil {
			c.screen.Println(err.Error())
		} else {
			c.screen.Println(RenderStatus(c.char, c.battle.CurrentFloor()))
		}
	case command.HandlerSummon:
		c.summon(p)
	case command.HandlerNewRun:
		c.newRun(ctx)
	case command.HandlerHelp:
		c.screen.Println(RenderHelp(c.commands.Available(c.screen.Mode(), c.opts.Battle.Debug.InstantKill)))
	case command.HandlerQuit:
		c.screen.Println("Farewell.")
		return true
	}
	return false
}

func (c *Console) fight() {
	forced := c.battle.IsBattleForced()
	if err := c.battle.Start(); err != nil {
		c.logger.Warn("starting battle", zap.Error(err))
		c.screen.Println("Nothing stirs on this floor.")
		return
	}
	if forced {
		c.screen.Println(Colorize(Magenta, "You were expected."))
	}
}

func (c *Console) cast(ctx context.Context, element string) {
	var scroll inventory.Kind
	switch element {
	case "fire":
		scroll = inventory.FireScroll
	case "ice":
		scroll = inventory.IceScroll
	case "lightning":
		scroll = inventory.LightningScroll
	default:
		c.screen.Println("Cast what? fire, ice or lightning.")
		return
	}
	res, used := c.battle.UseItem(scroll)
	if !used {
		c.screen.Println(fmt.Sprintf("You have no %s scroll.", element))
		return
	}
	c.afterTurn(ctx, res)
}

func (c *Console) use(ctx context.Context, name string) {
	k, ok := c.lookupItem(name)
	if !ok {
		c.screen.Println(fmt.Sprintf("No such item %q.", name))
		return
	}
	res, used := c.battle.UseItem(k)
	if !used {
		c.screen.Println("You rummage through your bag but find none.")
		return
	}
	c.afterTurn(ctx, res)
}

func (c *Console) buy(name string) {
	if name == "stat" {
		cost := c.shop.StatPointCost()
		if c.shop.BuyStatPoint(c.char) {
			c.screen.Println(Colorf(BrightCyan, "You gain a stat point for %d gold.", cost))
		} else {
			c.screen.Println("You can't afford that.")
		}
		return
	}
	k, ok := c.lookupItem(name)
	if !ok {
		c.screen.Println(fmt.Sprintf("No such item %q.", name))
		return
	}
	if c.shop.BuyItem(c.char, c.bag, k) {
		c.screen.Println(fmt.Sprintf("Bought. You now carry %d.", c.bag.Count(k)))
	} else {
		c.screen.Println("You can't buy that now.")
	}
}

func (c *Console) sell(name string) {
	k, ok := c.lookupItem(name)
	if !ok {
		c.screen.Println(fmt.Sprintf("No such item %q.", name))
		return
	}
	if c.shop.SellItem(c.char, c.bag, k) {
		c.screen.Println(fmt.Sprintf("Sold for %d gold.", c.shop.SellPrice(k)))
	} else {
		c.screen.Println("You have none to sell.")
	}
}

// summon pins a specific monster for the next fight, optionally with a
// set health.
func (c *Console) summon(p command.ParseResult) {
	m, err := c.monsters.Spawn(p.Arg(0), p.Arg(1), c.battle.CurrentFloor())
	if err != nil {
		c.screen.Println(err.Error())
		return
	}
	if h := p.Arg(2); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil || n < 1 {
			c.screen.Println("Health must be a positive number.")
			return
		}
		m.Health = n
	}
	c.monsters.Pin(m)
	c.screen.Println(Colorf(Magenta, "A %s waits on the stairs below.", m.Name))
}

func (c *Console) newRun(ctx context.Context) {
	fresh, _ := character.New(c.opts.Player)
	*c.char = *fresh
	c.bag.Restore(nil)
	c.shop.ResetStatPointsPurchased()
	c.battle.ResetFloor()
	c.screen.Reset()
	c.runID = uuid.New()
	c.runLogger().Info("new run")
	c.screen.Println(Colorize(BrightYellow, "You descend once more."))
	if err := c.save(ctx); err != nil {
		c.logger.Error("saving run", zap.Error(err))
	}
}

// afterTurn prints the outcome and, when the battle ended, saves and
// writes the report for a lost run.
func (c *Console) afterTurn(ctx context.Context, res battle.TurnResult) {
	m, _ := c.battle.CurrentMonster()
	for _, line := range RenderTurn(res, m.Name) {
		c.screen.Println(line)
	}
	if !res.State.IsTerminal() {
		return
	}
	if res.State == battle.Won {
		c.screen.Println(fmt.Sprintf("You descend to floor %d.", c.battle.CurrentFloor()))
	}
	if res.State == battle.Lost {
		c.writeReport(m.Name)
	}
	if err := c.save(ctx); err != nil {
		c.logger.Error("saving run", zap.Error(err))
	}
}

func (c *Console) writeReport(slayer string) {
	if c.reports == nil {
		return
	}
	path, err := c.reports.Write(report.Summary{
		Character: *c.char,
		Floor:     c.battle.CurrentFloor(),
		Slayer:    slayer,
		Tally:     c.battle.Tally(),
		EndedAt:   time.Now(),
	})
	if err != nil {
		c.logger.Error("writing run report", zap.Error(err))
		return
	}
	c.screen.Println("Your tale is recorded in " + path)
}

func (c *Console) runLogger() *zap.Logger {
	return observability.ForRun(c.logger, c.opts.Player, c.runID)
}

// lookupItem matches an item by kind ("fire_scroll") or display name ("bomb").
func (c *Console) lookupItem(name string) (inventory.Kind, bool) {
	for _, d := range c.items.All() {
		if string(d.Kind) == name || strings.EqualFold(d.Name, name) {
			return d.Kind, true
		}
	}
	return "", false
}

// Character returns the player's character.
func (c *Console) Character() *character.Character {
	return c.char
}

// Bag returns the player's bag.
func (c *Console) Bag() *inventory.Bag {
	return c.bag
}

// Battle returns the battle state machine.
func (c *Console) Battle() *battle.Battle {
	return c.battle
}

// Screen returns the screen the console draws on.
func (c *Console) Screen() *Screen {
	return c.screen
}
