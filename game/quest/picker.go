package quest

import (
	"math/rand"
	"sync"
	"time"

	"github.com/kasuganosora/questservice/model"
)

// Picker selects one definition out of a non-empty candidate list.
type Picker interface {
	Pick(candidates []*model.QuestDefinition) *model.QuestDefinition
}

// RandomPicker picks uniformly at random. Safe for concurrent use.
type RandomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomPicker seeds the source with seed, or with the clock when seed is 0.
func NewRandomPicker(seed int64) *RandomPicker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPicker{rnd: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Pick(candidates []*model.QuestDefinition) *model.QuestDefinition {
	if len(candidates) == 0 {
		return nil
	}
	p.mu.Lock()
	i := p.rnd.Intn(len(candidates))
	p.mu.Unlock()
	return candidates[i]
}
