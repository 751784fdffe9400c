package usecase

import (
	"math/rand/v2"
	"sync"
)

// picker selects canned responses uniformly. rand.Rand is not safe for
// concurrent use so access is serialized.
type picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newPicker(src rand.Source) *picker {
	return &picker{rnd: rand.New(src)}
}

func (p *picker) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rnd.IntN(len(pool))]
}
