package mcts

import "time"

// SeedGeneratorFnType produces a seed for a new random number generator.
type SeedGeneratorFnType func() int64

// SeedGeneratorFn is a seed source for callers that construct their own
// *math/rand.Rand, such as this package's tests. Nothing in the package
// itself calls it; Search always takes an explicit Rng. Default uses the
// current time in nanoseconds.
var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// SetSeedGeneratorFn overrides SeedGeneratorFn, e.g. to get deterministic
// seeds in a test.
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}
