package stage

import (
	"context"

	"notehub/internal/notes"
)

// Handler describes the contract the workflow manager needs from each stage.
// Execute receives a claimed note and returns the fields its stage writes;
// it must not touch the store. Any returned error fails the note.
type Handler interface {
	Execute(context.Context, *notes.Note) (notes.Changes, error)
	HealthCheck(context.Context) Health
}

// HandlerFunc adapts a function to Handler for tests and simple stages.
type HandlerFunc func(context.Context, *notes.Note) (notes.Changes, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, note *notes.Note) (notes.Changes, error) {
	return f(ctx, note)
}

// HealthCheck reports a function handler as always ready.
func (f HandlerFunc) HealthCheck(context.Context) Health {
	return Healthy("func")
}
