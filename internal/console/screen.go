package console

import (
	"fmt"
	"io"

	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/command"
)

// Screen renders battle output as text and tracks the menu stack the
// battle pushes and pops. It implements battle.UI.
type Screen struct {
	out   io.Writer
	color bool
	menus []battle.Menu
}

// NewScreen creates a Screen writing to out. With color off, ANSI codes
// are stripped before writing.
func NewScreen(out io.Writer, color bool) *Screen {
	return &Screen{out: out, color: color}
}

// ShowRow prints a labelled health row. Only the monster row is used today.
func (s *Screen) ShowRow(slot int, label string, value int) {
	if slot != battle.SlotMonster {
		s.Println(fmt.Sprintf("%s: %d", label, value))
		return
	}
	s.Println(Colorize(Bold, label) + "  " + Colorf(BrightRed, "HP %d", value))
}

// PushMenu shows a new screen.
func (s *Screen) PushMenu(m battle.Menu) {
	s.menus = append(s.menus, m)
	switch m {
	case battle.MenuBattle:
		s.Println(Colorize(BrightRed, "=== BATTLE ==="))
	case battle.MenuItems:
		s.Println(Colorize(Cyan, "--- Items ---"))
	case battle.MenuEnd:
		s.Println(Colorize(Red, "=== YOU HAVE FALLEN ==="))
	}
}

// PopMenu returns to the previous screen. Popping an empty stack is a no-op.
func (s *Screen) PopMenu() {
	if len(s.menus) == 0 {
		return
	}
	s.menus = s.menus[:len(s.menus)-1]
}

// Menus returns a copy of the menu stack, bottom first.
func (s *Screen) Menus() []battle.Menu {
	return append([]battle.Menu(nil), s.menus...)
}

// Reset clears every menu, returning to camp.
func (s *Screen) Reset() {
	s.menus = nil
}

// Mode maps the top of the menu stack to the commands it accepts.
func (s *Screen) Mode() command.Mode {
	if len(s.menus) == 0 {
		return command.ModeCamp
	}
	switch s.menus[len(s.menus)-1] {
	case battle.MenuItems:
		return command.ModeItems
	case battle.MenuEnd:
		return command.ModeEnd
	default:
		return command.ModeBattle
	}
}

// Println writes one line.
func (s *Screen) Println(line string) {
	if !s.color {
		line = StripANSI(line)
	}
	fmt.Fprintln(s.out, line)
}

// Prompt writes the mode prompt without a newline.
func (s *Screen) Prompt() {
	p := Colorf(BrightWhite, "[%s] > ", s.Mode())
	if !s.color {
		p = StripANSI(p)
	}
	fmt.Fprint(s.out, p)
}

var _ battle.UI = (*Screen)(nil)
