package simple

import (
	"fmt"
	"sync"
)

// Generator hands out sequential ids with a fixed prefix. Useful where stable,
// readable ids matter more than uniqueness across processes.
type Generator struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

func New(prefix string) *Generator {
	//nolint:exhaustruct
	return &Generator{prefix: prefix}
}

func (g *Generator) GetID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
