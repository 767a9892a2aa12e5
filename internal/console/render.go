package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/command"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
	"github.com/cory-johannsen/minidungeon/internal/game/shop"
)

// RenderTurn describes one action's outcome, one line per event.
func RenderTurn(res battle.TurnResult, monsterName string) []string {
	var lines []string
	if res.Player != nil {
		verb := "hit"
		if res.Player.Kind.IsElemental() {
			verb = "blast"
		}
		if res.Player.Final == 0 {
			lines = append(lines, Colorf(Dim, "The %s is unharmed by %s.", monsterName, res.Player.Kind))
		} else {
			lines = append(lines, Colorf(BrightWhite, "You %s the %s for %d.", verb, monsterName, res.Player.Final))
		}
	}
	if res.Healed > 0 {
		lines = append(lines, Colorf(BrightGreen, "You recover %d health.", res.Healed))
	}
	if res.Monster != nil {
		how := "strikes"
		if res.Monster.Magic {
			how = "casts at"
		}
		lines = append(lines, Colorf(Red, "The %s %s you for %d.", monsterName, how, res.Monster.Damage))
	}
	switch res.State {
	case battle.Won:
		lines = append(lines, Colorf(BrightYellow, "The %s is defeated! You find %d gold.", monsterName, res.Gold))
		if res.LeveledUp {
			lines = append(lines, Colorize(BrightCyan, "You feel stronger. Level up!"))
		}
	case battle.Fled:
		lines = append(lines, Colorize(Yellow, "You escape into the dark."))
	case battle.Lost:
		lines = append(lines, Colorf(Red, "The %s has slain you.", monsterName))
	}
	return lines
}

// RenderStatus formats the character sheet.
func RenderStatus(c *character.Character, floor uint8) string {
	var b strings.Builder
	b.WriteString(Colorize(BrightYellow, c.Name))
	b.WriteString(fmt.Sprintf("  Level %d  Floor %d\n", c.Level, floor))
	b.WriteString(Colorf(healthColor(c.DisplayHealth(), int(c.MaxHealth)), "HP %d/%d", c.DisplayHealth(), c.MaxHealth))
	b.WriteString(fmt.Sprintf("  XP %d/%d  Gold %d\n", c.Experience, character.ExperienceToLevel(c.Level), c.Gold))
	a := c.Attributes
	b.WriteString(fmt.Sprintf("STR %d  MAG %d  DEF %d  MDEF %d", a.Strength, a.Magic, a.Defense, a.MagicDefense))
	if c.StatPoints > 0 {
		b.WriteString(Colorf(BrightCyan, "  (%d unspent)", c.StatPoints))
	}
	return b.String()
}

// RenderItems lists the bag in menu order.
func RenderItems(items []*inventory.ItemDef, bag *inventory.Bag) string {
	var b strings.Builder
	for i, d := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprintf("  %-8s x%-3d %s", d.Name, bag.Count(d.Kind), Colorize(Dim, d.Description)))
	}
	return b.String()
}

// RenderShop lists prices and the next stat point cost.
func RenderShop(items []*inventory.ItemDef, s *shop.Shop, gold uint16) string {
	var b strings.Builder
	b.WriteString(Colorf(BrightYellow, "Shop (you have %d gold)", gold))
	for _, d := range items {
		price, _ := s.Price(d.Kind)
		b.WriteString(fmt.Sprintf("\n  %-8s buy %-5d sell %d", d.Name, price, s.SellPrice(d.Kind)))
	}
	b.WriteString(fmt.Sprintf("\n  %-8s buy %d", "stat", s.StatPointCost()))
	return b.String()
}

// RenderHelp lists commands with their help text.
func RenderHelp(cmds []*command.Command) string {
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprintf("  %s%-9s%s %s", BrightCyan, c.Name, Reset, c.Help))
	}
	return b.String()
}
