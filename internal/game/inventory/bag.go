package inventory

// Bag counts the items the player carries, one stack per kind.
//
// Bag is not safe for concurrent use.
type Bag struct {
	// MaxStock caps the count of any single kind.
	MaxStock int
	counts   map[Kind]int
}

// NewBag creates an empty Bag.
//
// Precondition: maxStock >= 1.
// Postcondition: every Count is zero.
func NewBag(maxStock int) *Bag {
	return &Bag{
		MaxStock: maxStock,
		counts:   make(map[Kind]int),
	}
}

// Count returns how many of k the bag holds.
func (b *Bag) Count(k Kind) int {
	return b.counts[k]
}

// Counts returns a copy of every non-zero stack.
func (b *Bag) Counts() map[Kind]int {
	out := make(map[Kind]int, len(b.counts))
	for k, n := range b.counts {
		if n > 0 {
			out[k] = n
		}
	}
	return out
}

// Add puts one k into the bag.
//
// Postcondition: Returns false and leaves the bag unchanged when k is unknown
// or its stack is already at MaxStock.
func (b *Bag) Add(k Kind) bool {
	if !k.IsValid() || b.counts[k] >= b.MaxStock {
		return false
	}
	b.counts[k]++
	return true
}

// Remove takes one k out of the bag.
//
// Postcondition: Returns false and leaves the bag unchanged when none are held.
func (b *Bag) Remove(k Kind) bool {
	if b.counts[k] <= 0 {
		return false
	}
	b.counts[k]--
	return true
}

// TryConsume uses up one k.
//
// Postcondition: Returns true iff at least one was in stock.
func (b *Bag) TryConsume(k Kind) bool {
	return b.Remove(k)
}

// Restore replaces the bag's contents with counts, clamped to [0, MaxStock].
// Unknown kinds are dropped.
func (b *Bag) Restore(counts map[Kind]int) {
	b.counts = make(map[Kind]int, len(counts))
	for k, n := range counts {
		if !k.IsValid() || n <= 0 {
			continue
		}
		if n > b.MaxStock {
			n = b.MaxStock
		}
		b.counts[k] = n
	}
}
