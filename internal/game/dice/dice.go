// Package dice provides the randomness capability used by battle resolution:
// encounter draws, monster attack-type choice, and flee checks.
package dice

// Source is the randomness provider for all game draws.
//
// Implementations used by a single battle need not be safe for concurrent use;
// the battle engine is single-threaded.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
