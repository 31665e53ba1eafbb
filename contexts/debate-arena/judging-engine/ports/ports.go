package ports

import "context"

// TextGenerator produces free text for insight generation. Failures degrade
// to a nil insight and never block winner determination.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// RandomSource isolates every random draw the engine makes (top-K selection
// and the final tie-break) so tests can drive both branches deterministically.
type RandomSource interface {
	Intn(n int) int
}
