package battle

// Menu identifies a screen the battle asks the UI to show.
type Menu int

const (
	MenuBattle Menu = iota
	MenuItems
	MenuEnd
)

// String returns the menu name.
func (m Menu) String() string {
	switch m {
	case MenuBattle:
		return "battle"
	case MenuItems:
		return "items"
	case MenuEnd:
		return "end"
	default:
		return "unknown"
	}
}

// SlotMonster is the display row holding the monster's name and health.
const SlotMonster = 0

// UI is the rendering layer the battle drives. The battle exposes numbers
// only; formatting belongs to the implementation.
type UI interface {
	ShowRow(slot int, label string, value int)
	PushMenu(m Menu)
	PopMenu()
}
