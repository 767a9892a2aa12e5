package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every draw is recorded with its purpose.
// All draws are logged at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll draws a value in [0, n) for the named purpose and logs it.
//
// Precondition: n > 0.
// Postcondition: 0 <= result < n.
func (r *Roller) Roll(purpose string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("random draw",
		zap.String("purpose", purpose),
		zap.Int("range", n),
		zap.Int("result", v),
	)
	return v
}

// Chance reports whether a 1-in-n draw succeeds.
//
// Precondition: n > 0.
func (r *Roller) Chance(purpose string, n int) bool {
	return r.Roll(purpose, n) == 0
}

// Intn satisfies Source so a Roller can be handed to code that only needs draws.
func (r *Roller) Intn(n int) int {
	return r.Roll("draw", n)
}
