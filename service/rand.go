package service

import "math/rand"

// Rand is the source of randomness for game outcomes, captcha codes and
// rewards. Tests substitute a scripted implementation to force rolls.
type Rand interface {
	// Intn returns a uniform int in [0, n)
	Intn(n int) int
}

// SystemRand returns a Rand backed by the global math/rand source, which
// is safe for concurrent use.
func SystemRand() Rand {
	return systemRand{}
}

type systemRand struct{}

func (systemRand) Intn(n int) int { return rand.Intn(n) }
