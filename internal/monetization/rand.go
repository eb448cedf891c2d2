package monetization

import (
	"math/rand/v2"
	"sync"
)

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Uint64()
}

// Synchronized returns a Rand that draws from rnd under a lock, so a Picker
// and an Affiliates can share one seeded source. The sequence is the same as
// drawing from rnd directly. Nil stays nil.
func Synchronized(rnd *rand.Rand) *rand.Rand {
	if rnd == nil {
		return nil
	}
	return rand.New(&lockedSource{rnd: rnd})
}
