// Package dice provides the randomness sources that feed block rolls in the
// critter battle engine.
package dice

// Source is the randomness provider for battle resolution.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// Draw records one value produced by a Source, for audit logs and replays.
type Draw struct {
	Seq   int     // 1-based index of the draw on its source
	Value float64 // value returned to the caller
}
