// Package shop implements the between-battle store: buying and selling items
// and buying stat points at a doubling price.
//
// Every transaction the player cannot afford, or that the bag cannot hold, is
// a silent no-op reported only through the boolean result.
package shop

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/combat"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
)

// maxStatPurchases keeps 1 << purchased inside uint16.
const maxStatPurchases = 15

// Shop trades with one character for the length of a run.
type Shop struct {
	items       *inventory.Registry
	salePercent uint16
	logger      *zap.Logger

	purchased uint8
}

// New creates a Shop over the item catalogue.
//
// Precondition: items and logger must be non-nil; salePercent in [0, 100].
func New(items *inventory.Registry, salePercent int, logger *zap.Logger) *Shop {
	return &Shop{
		items:       items,
		salePercent: uint16(salePercent),
		logger:      logger,
	}
}

// Price returns the purchase price of k.
//
// Postcondition: ok is false for kinds absent from the catalogue.
func (s *Shop) Price(k inventory.Kind) (uint16, bool) {
	d, ok := s.items.Item(k)
	if !ok {
		return 0, false
	}
	return d.Cost, true
}

// SellPrice returns the refund for selling one k.
func (s *Shop) SellPrice(k inventory.Kind) uint16 {
	cost, ok := s.Price(k)
	if !ok {
		return 0
	}
	return combat.ApplyPercent(cost, s.salePercent)
}

// BuyItem trades the item's cost for one k.
//
// Postcondition: Returns false and changes nothing when gold is short, the
// kind is unknown, or the stack is full.
func (s *Shop) BuyItem(c *character.Character, bag *inventory.Bag, k inventory.Kind) bool {
	cost, ok := s.Price(k)
	if !ok || c.Gold < cost {
		return false
	}
	if !bag.Add(k) {
		return false
	}
	c.Gold -= cost
	s.logger.Debug("item bought", zap.String("item", string(k)), zap.Uint16("cost", cost), zap.Uint16("gold", c.Gold))
	return true
}

// SellItem trades one k for its sell price.
//
// Postcondition: Returns false and changes nothing when none are held.
func (s *Shop) SellItem(c *character.Character, bag *inventory.Bag, k inventory.Kind) bool {
	if !bag.Remove(k) {
		return false
	}
	price := s.SellPrice(k)
	c.GrantGold(price)
	s.logger.Debug("item sold", zap.String("item", string(k)), zap.Uint16("price", price), zap.Uint16("gold", c.Gold))
	return true
}

// StatPointCost is the price of the next stat point: 1 << purchased.
func (s *Shop) StatPointCost() uint16 {
	return 1 << s.purchased
}

// BuyStatPoint trades StatPointCost gold for one unspent stat point.
//
// Postcondition: Returns false and changes nothing when gold is short or the
// purchase cap is reached; otherwise the next cost doubles.
func (s *Shop) BuyStatPoint(c *character.Character) bool {
	if s.purchased >= maxStatPurchases {
		return false
	}
	cost := s.StatPointCost()
	if !c.SpendGold(cost) {
		return false
	}
	s.purchased++
	c.AddStatPoint()
	s.logger.Debug("stat point bought", zap.Uint16("cost", cost), zap.Uint8("purchased", s.purchased))
	return true
}

// StatPointsPurchased returns how many stat points were bought this run.
func (s *Shop) StatPointsPurchased() uint8 {
	return s.purchased
}

// SetStatPointsPurchased restores the purchase counter from a saved run.
func (s *Shop) SetStatPointsPurchased(n uint8) {
	if n > maxStatPurchases {
		n = maxStatPurchases
	}
	s.purchased = n
}

// ResetStatPointsPurchased starts the price ladder over for a new run.
func (s *Shop) ResetStatPointsPurchased() {
	s.purchased = 0
}
