package random

import "github.com/google/uuid"

// Generator issues random UUIDv4 ids.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) GetID() string {
	return uuid.NewString()
}
