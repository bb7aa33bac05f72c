package aiparse

import (
	"context"

	"recipebox/internal/domain/entity"
)

// NoOp is a parser that never finds a recipe. Useful for development and for
// environments without AI credentials: the pipeline behaves exactly as if the
// AI stage were disabled.
type NoOp struct{}

// NewNoOp creates a new NoOp parser.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Parse always reports no recipe.
func (n *NoOp) Parse(_ context.Context, _ string, _ string) (*entity.Recipe, error) {
	return nil, nil
}
