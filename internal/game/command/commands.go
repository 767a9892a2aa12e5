// Package command provides the command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryBattle = "battle"
	CategoryItems  = "items"
	CategoryCamp   = "camp"
	CategorySystem = "system"
	CategoryDebug  = "debug"
)

// Handler identifiers mapping commands to console actions.
const (
	HandlerFight    = "fight"
	HandlerAttack   = "attack"
	HandlerCast     = "cast"
	HandlerItems    = "items"
	HandlerUse      = "use"
	HandlerBack     = "back"
	HandlerFlee     = "flee"
	HandlerStatus   = "status"
	HandlerShop     = "shop"
	HandlerBuy      = "buy"
	HandlerSell     = "sell"
	HandlerAllocate = "allocate"
	HandlerNewRun   = "newrun"
	HandlerQuit     = "quit"
	HandlerHelp     = "help"
	HandlerKill     = "kill"
	HandlerSummon   = "summon"
)

// Mode is the screen a command may be used from. Modes combine as a bit set.
type Mode uint8

const (
	// ModeCamp is between battles.
	ModeCamp Mode = 1 << iota
	// ModeBattle is the main battle menu.
	ModeBattle
	// ModeItems is the battle's item sub-menu.
	ModeItems
	// ModeEnd is the end-of-run screen after a defeat.
	ModeEnd

	ModeAny = ModeCamp | ModeBattle | ModeItems | ModeEnd
)

// String returns the mode name used in prompts.
func (m Mode) String() string {
	switch m {
	case ModeCamp:
		return "camp"
	case ModeBattle:
		return "battle"
	case ModeItems:
		return "items"
	case ModeEnd:
		return "end"
	default:
		return "any"
	}
}

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler maps to the console action.
	Handler string
	// Modes are the screens the command is accepted on.
	Modes Mode
}

// AllowedIn reports whether the command may be used in mode m.
func (c *Command) AllowedIn(m Mode) bool {
	return c.Modes&m != 0
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Camp commands
		{Name: "fight", Aliases: []string{"f", "descend"}, Help: "Start a battle on the current floor", Category: CategoryCamp, Handler: HandlerFight, Modes: ModeCamp},
		{Name: "shop", Aliases: []string{"store"}, Help: "List items and prices", Category: CategoryCamp, Handler: HandlerShop, Modes: ModeCamp},
		{Name: "buy", Aliases: nil, Help: "Buy an item or a stat point (buy <item>|stat)", Category: CategoryCamp, Handler: HandlerBuy, Modes: ModeCamp},
		{Name: "sell", Aliases: nil, Help: "Sell an item (sell <item>)", Category: CategoryCamp, Handler: HandlerSell, Modes: ModeCamp},
		{Name: "allocate", Aliases: []string{"al"}, Help: "Spend a stat point (allocate strength|magic|defense|magic_defense)", Category: CategoryCamp, Handler: HandlerAllocate, Modes: ModeCamp},

		// Battle commands
		{Name: "attack", Aliases: []string{"a", "att"}, Help: "Strike the monster", Category: CategoryBattle, Handler: HandlerAttack, Modes: ModeBattle},
		{Name: "cast", Aliases: []string{"c"}, Help: "Read a scroll at the monster (cast fire|ice|lightning)", Category: CategoryBattle, Handler: HandlerCast, Modes: ModeBattle},
		{Name: "items", Aliases: []string{"i", "inv"}, Help: "Open the item menu", Category: CategoryBattle, Handler: HandlerItems, Modes: ModeBattle},
		{Name: "flee", Aliases: []string{"run"}, Help: "Attempt to escape", Category: CategoryBattle, Handler: HandlerFlee, Modes: ModeBattle},

		// Item menu commands
		{Name: "use", Aliases: []string{"u"}, Help: "Use an item (use <item>)", Category: CategoryItems, Handler: HandlerUse, Modes: ModeItems},
		{Name: "back", Aliases: []string{"b"}, Help: "Return to the battle menu", Category: CategoryItems, Handler: HandlerBack, Modes: ModeItems},

		// System commands
		{Name: "status", Aliases: []string{"st", "stats"}, Help: "Show your character", Category: CategorySystem, Handler: HandlerStatus, Modes: ModeAny},
		{Name: "newrun", Aliases: []string{"restart"}, Help: "Start a new run", Category: CategorySystem, Handler: HandlerNewRun, Modes: ModeEnd},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Save and leave the game", Category: CategorySystem, Handler: HandlerQuit, Modes: ModeAny},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp, Modes: ModeAny},

		// Debug commands
		{Name: "kill", Aliases: nil, Help: "Slay the monster instantly", Category: CategoryDebug, Handler: HandlerKill, Modes: ModeBattle},
		{Name: "summon", Aliases: nil, Help: "Force the next encounter (summon <group> <id> [health])", Category: CategoryDebug, Handler: HandlerSummon, Modes: ModeCamp},
	}
}
