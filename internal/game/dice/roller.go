package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every roll leaves a debug-level audit trail.
// Roller itself satisfies Source, so it can be handed to anything that rolls.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn forwards to the underlying Source.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Range rolls uniformly in [lo, hi] and logs the result.
//
// Postcondition: Value is in [min(lo,hi), max(lo,hi)].
func (r *Roller) Range(label string, lo, hi int) RangeResult {
	if hi < lo {
		lo, hi = hi, lo
	}
	res := RangeResult{Label: label, Min: lo, Max: hi, Value: Range(r.src, lo, hi)}
	r.logger.Debug("dice roll",
		zap.String("label", label),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("value", res.Value),
	)
	return res
}

// Chance rolls a percent check and logs the result.
func (r *Roller) Chance(label string, percent int) bool {
	ok := Chance(r.src, percent)
	r.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Int("percent", percent),
		zap.Bool("success", ok),
	)
	return ok
}
